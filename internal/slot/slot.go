// Package slot manages the user-configurable taxonomy of meal categories
// (Breakfast, Lunch, ...). Meals reference slots by name, not id, so a slot
// can disappear while meals still carry its name; those meals are surfaced
// as unassigned, never dropped.
package slot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Slot is one meal category.
type Slot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Time      string `json:"time"`
	SortOrder int    `json:"sort_order"`
}

// Repository is the database-backed store for slots.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new slot Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns all slots in sort order. An empty table is seeded with the
// default Breakfast/Lunch/Dinner taxonomy first.
func (r *Repository) List(ctx context.Context) ([]Slot, error) {
	slots, err := r.list(ctx)
	if err != nil {
		return nil, err
	}
	if len(slots) > 0 {
		return slots, nil
	}

	defaults := []Slot{
		{Name: "Breakfast", Time: "08:00", SortOrder: 0},
		{Name: "Lunch", Time: "13:00", SortOrder: 1},
		{Name: "Dinner", Time: "19:00", SortOrder: 2},
	}
	for i := range defaults {
		defaults[i].ID = uuid.NewString()
		if _, err := r.db.ExecContext(ctx, `
            INSERT INTO slots (id, name, time, sort_order) VALUES (?, ?, ?, ?)`,
			defaults[i].ID, defaults[i].Name, defaults[i].Time, defaults[i].SortOrder); err != nil {
			return nil, fmt.Errorf("failed to seed default slot: %w", err)
		}
	}
	return defaults, nil
}

// Create inserts a new slot and returns it with its id set.
func (r *Repository) Create(ctx context.Context, name, time string, sortOrder int) (Slot, error) {
	s := Slot{ID: uuid.NewString(), Name: name, Time: time, SortOrder: sortOrder}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO slots (id, name, time, sort_order) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.Time, s.SortOrder)
	if err != nil {
		return Slot{}, fmt.Errorf("failed to insert slot: %w", err)
	}
	return s, nil
}

// UpdateAll rewrites every given slot in one transaction, so a bulk reorder
// is never observed half-applied.
func (r *Repository) UpdateAll(ctx context.Context, slots []Slot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range slots {
		if _, err := tx.ExecContext(ctx, `
            UPDATE slots SET name = ?, time = ?, sort_order = ? WHERE id = ?`,
			s.Name, s.Time, s.SortOrder, s.ID); err != nil {
			return fmt.Errorf("failed to update slot %s: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes a slot. Meals carrying its name become unassigned.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context) ([]Slot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, time, sort_order FROM slots ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.Name, &s.Time, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
