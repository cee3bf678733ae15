// Package schedule instantiates plan templates onto concrete calendar days.
package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meal-prep-planner/internal/template"
)

// ErrNotFound is returned when a scheduled day or meal does not exist.
var ErrNotFound = errors.New("scheduled entity not found")

// Meal is a scheduled copy of a template meal on a concrete day. The copy
// carries the template meal's ingredient overrides, so macro computation on
// the calendar matches the template it came from.
type Meal struct {
	ID            string                  `json:"id"`
	PlanID        string                  `json:"plan_id"`
	SlotName      string                  `json:"slot_name"`
	SortOrder     int                     `json:"sort_order"`
	Servings      float64                 `json:"servings"`
	Content       template.MealContent    `json:"content"`
	Modifications *template.Modifications `json:"modifications,omitempty"`
}

// DayPlan is one calendar day of scheduled meals, keyed by ISO date.
type DayPlan struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Meals []Meal `json:"meals"`
}

// Repository persists day plans and their meals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new schedule Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ApplyTemplate copies a loaded template's days onto consecutive calendar
// dates starting at start. Day i of the template lands on start+i days.
// Dates that already hold meals keep them; the template's meals are appended
// after. The whole instantiation is one transaction.
func (r *Repository) ApplyTemplate(ctx context.Context, tpl template.PlanTemplate, start time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	for i, day := range tpl.Days {
		date := start.AddDate(0, 0, i).Format("2006-01-02")

		planID, err := upsertDay(ctx, tx, date)
		if err != nil {
			return err
		}

		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM meals WHERE plan_id = ?`, planID).Scan(&existing); err != nil {
			return fmt.Errorf("failed to count existing meals: %w", err)
		}

		sortOrder := existing
		for _, meal := range day.Meals {
			modsJSON, err := marshalModifications(meal.Modifications)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO meals (id, plan_id, recipe_id, ingredient_id, ingredient_amount, slot_name, sort_order, servings, modifications)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), planID,
				nullString(meal.Content.RecipeID), nullString(meal.Content.IngredientID),
				nullAmount(meal.Content), meal.SlotName, sortOrder, meal.Servings, modsJSON); err != nil {
				return fmt.Errorf("failed to insert scheduled meal: %w", err)
			}
			sortOrder++
		}
	}

	return tx.Commit()
}

// List returns every day plan with its meals in sort order.
func (r *Repository) List(ctx context.Context) ([]DayPlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, date FROM day_plans ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list day plans: %w", err)
	}
	defer rows.Close()

	var plans []DayPlan
	for rows.Next() {
		var p DayPlan
		if err := rows.Scan(&p.ID, &p.Date); err != nil {
			return nil, fmt.Errorf("failed to scan day plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range plans {
		if plans[i].Meals, err = r.loadMeals(ctx, plans[i].ID); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// RemoveDay deletes one calendar day; its meals cascade.
func (r *Repository) RemoveDay(ctx context.Context, date string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM day_plans WHERE date = ?`, date)
	if err != nil {
		return fmt.Errorf("failed to delete day plan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("day plan %s: %w", date, ErrNotFound)
	}
	return nil
}

// Reset clears the whole schedule.
func (r *Repository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meals`); err != nil {
		return fmt.Errorf("failed to clear meals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM day_plans`); err != nil {
		return fmt.Errorf("failed to clear day plans: %w", err)
	}
	return tx.Commit()
}

func (r *Repository) loadMeals(ctx context.Context, planID string) ([]Meal, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, plan_id, recipe_id, ingredient_id, ingredient_amount, slot_name, sort_order, servings, modifications
        FROM meals WHERE plan_id = ? ORDER BY sort_order ASC`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled meals: %w", err)
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var meal Meal
		var recipeID, ingredientID, modsJSON sql.NullString
		var ingredientAmount sql.NullFloat64
		if err := rows.Scan(&meal.ID, &meal.PlanID, &recipeID, &ingredientID, &ingredientAmount,
			&meal.SlotName, &meal.SortOrder, &meal.Servings, &modsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled meal: %w", err)
		}
		meal.Content = template.MealContent{
			RecipeID:         recipeID.String,
			IngredientID:     ingredientID.String,
			IngredientAmount: ingredientAmount.Float64,
		}
		if modsJSON.Valid && modsJSON.String != "" {
			var mods template.Modifications
			if err := json.Unmarshal([]byte(modsJSON.String), &mods); err == nil {
				meal.Modifications = &mods
			}
			// Malformed override JSON is tolerated as "no overrides".
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

func marshalModifications(mods *template.Modifications) (any, error) {
	if mods == nil {
		return nil, nil
	}
	data, err := json.Marshal(mods)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal modifications: %w", err)
	}
	return string(data), nil
}

func upsertDay(ctx context.Context, tx *sql.Tx, date string) (string, error) {
	var planID string
	err := tx.QueryRowContext(ctx, `SELECT id FROM day_plans WHERE date = ?`, date).Scan(&planID)
	if errors.Is(err, sql.ErrNoRows) {
		planID = uuid.NewString()
		if _, err := tx.ExecContext(ctx, `INSERT INTO day_plans (id, date) VALUES (?, ?)`, planID, date); err != nil {
			return "", fmt.Errorf("failed to create day plan: %w", err)
		}
		return planID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up day plan: %w", err)
	}
	return planID, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullAmount(c template.MealContent) any {
	if c.IngredientID == "" {
		return nil
	}
	return c.IngredientAmount
}
