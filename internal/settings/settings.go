// Package settings stores the global macro targets that per-day targets fall
// back to.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Settings holds the workspace-wide daily macro targets.
type Settings struct {
	CalorieTarget float64 `json:"calorie_target"`
	ProteinTarget float64 `json:"protein_target"`
	CarbsTarget   float64 `json:"carbs_target"`
	FatTarget     float64 `json:"fat_target"`
	FiberTarget   float64 `json:"fiber_target"`
}

// Defaults are used until settings are explicitly saved.
func Defaults() Settings {
	return Settings{
		CalorieTarget: 2000,
		ProteinTarget: 150,
		CarbsTarget:   200,
		FatTarget:     60,
		FiberTarget:   30,
	}
}

const settingsID = "global"

// Repository persists the single global settings row.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settings Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored settings, or Defaults when none were saved yet.
func (r *Repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.db.QueryRowContext(ctx, `
        SELECT calorie_target, protein_target, carbs_target, fat_target, fiber_target
        FROM settings WHERE id = ?`, settingsID).
		Scan(&s.CalorieTarget, &s.ProteinTarget, &s.CarbsTarget, &s.FatTarget, &s.FiberTarget)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// Update upserts the global settings row.
func (r *Repository) Update(ctx context.Context, s Settings) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO settings (id, calorie_target, protein_target, carbs_target, fat_target, fiber_target)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            calorie_target = excluded.calorie_target,
            protein_target = excluded.protein_target,
            carbs_target = excluded.carbs_target,
            fat_target = excluded.fat_target,
            fiber_target = excluded.fiber_target`,
		settingsID, s.CalorieTarget, s.ProteinTarget, s.CarbsTarget, s.FatTarget, s.FiberTarget)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
