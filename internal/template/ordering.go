package template

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// The ordering engine. Every mutation that touches more than one row's
// sort order runs inside a single transaction, so concurrent movers
// serialize instead of interleaving partial shifts. A busy/locked conflict
// is retried once before surfacing ErrConflict.

const txAttempts = 2

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isBusy(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

func (r *Repository) runOnce(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// AddDay appends a day to the end of a template's day sequence.
func (r *Repository) AddDay(ctx context.Context, templateID, name string) (TemplateDay, error) {
	day := TemplateDay{ID: uuid.NewString(), TemplateID: templateID, Name: name}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM plan_templates WHERE id = ?`, templateID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check template: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("template %s: %w", templateID, ErrNotFound)
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM template_days WHERE plan_template_id = ?`, templateID).Scan(&day.SortOrder); err != nil {
			return fmt.Errorf("failed to count days: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO template_days (id, plan_template_id, name, sort_order)
            VALUES (?, ?, ?, ?)`,
			day.ID, day.TemplateID, day.Name, day.SortOrder); err != nil {
			return fmt.Errorf("failed to insert day: %w", err)
		}
		return checkDayScope(ctx, tx, templateID)
	})
	if err != nil {
		return TemplateDay{}, err
	}
	return day, nil
}

// AddMeal appends a meal to the end of the (day, slot) scope.
func (r *Repository) AddMeal(ctx context.Context, dayID string, content MealContent, slotName string, servings float64) (TemplateMeal, error) {
	if err := content.Validate(); err != nil {
		return TemplateMeal{}, err
	}
	if servings < 0 {
		return TemplateMeal{}, fmt.Errorf("negative servings: %w", ErrInvalidState)
	}

	meal := TemplateMeal{
		ID:       uuid.NewString(),
		DayID:    dayID,
		SlotName: slotName,
		Servings: servings,
		Content:  content,
	}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM template_days WHERE id = ?`, dayID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check day: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("day %s: %w", dayID, ErrNotFound)
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM template_meals WHERE template_day_id = ? AND slot_name = ?`,
			dayID, slotName).Scan(&meal.SortOrder); err != nil {
			return fmt.Errorf("failed to count meals: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO template_meals (id, template_day_id, recipe_id, ingredient_id, ingredient_amount, slot_name, sort_order, servings)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			meal.ID, meal.DayID,
			nullString(meal.Content.RecipeID), nullString(meal.Content.IngredientID),
			nullAmount(meal.Content), meal.SlotName, meal.SortOrder, meal.Servings); err != nil {
			return fmt.Errorf("failed to insert meal: %w", err)
		}
		return checkMealScope(ctx, tx, dayID, slotName)
	})
	if err != nil {
		return TemplateMeal{}, err
	}
	return meal, nil
}

// RemoveMeal deletes a meal and compacts its (day, slot) scope in the same
// transaction. No reader ever observes the gap.
func (r *Repository) RemoveMeal(ctx context.Context, mealID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var dayID, slotName string
		var sortOrder int
		err := tx.QueryRowContext(ctx, `
            SELECT template_day_id, slot_name, sort_order FROM template_meals WHERE id = ?`, mealID).
			Scan(&dayID, &slotName, &sortOrder)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("meal %s: %w", mealID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to locate meal: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM template_meals WHERE id = ?`, mealID); err != nil {
			return fmt.Errorf("failed to delete meal: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
            UPDATE template_meals SET sort_order = sort_order - 1
            WHERE template_day_id = ? AND slot_name = ? AND sort_order > ?`,
			dayID, slotName, sortOrder); err != nil {
			return fmt.Errorf("failed to compact scope: %w", err)
		}
		return checkMealScope(ctx, tx, dayID, slotName)
	})
}

// RemoveDay deletes a day (its meals cascade) and compacts the template's
// day sequence.
func (r *Repository) RemoveDay(ctx context.Context, dayID string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var templateID string
		var sortOrder int
		err := tx.QueryRowContext(ctx, `
            SELECT plan_template_id, sort_order FROM template_days WHERE id = ?`, dayID).
			Scan(&templateID, &sortOrder)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("day %s: %w", dayID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to locate day: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM template_days WHERE id = ?`, dayID); err != nil {
			return fmt.Errorf("failed to delete day: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
            UPDATE template_days SET sort_order = sort_order - 1
            WHERE plan_template_id = ? AND sort_order > ?`,
			templateID, sortOrder); err != nil {
			return fmt.Errorf("failed to compact days: %w", err)
		}
		return checkDayScope(ctx, tx, templateID)
	})
}

// MoveMeal moves a meal to targetIndex inside the (targetDayID, slotName)
// scope. A cross-scope move shifts the target scope up, re-homes the meal,
// and compacts the source scope, all in one transaction. A same-scope move
// is the standard shift-and-place. Out-of-range indices are clamped, never
// errors. Returns the updated meal.
func (r *Repository) MoveMeal(ctx context.Context, mealID, targetDayID, slotName string, targetIndex int) (TemplateMeal, error) {
	var moved TemplateMeal
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
            SELECT id, template_day_id, recipe_id, ingredient_id, ingredient_amount,
                   slot_name, sort_order, servings, modifications
            FROM template_meals WHERE id = ?`, mealID)
		meal, err := scanMeal(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("meal %s: %w", mealID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to locate meal: %w", err)
		}

		var dayExists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM template_days WHERE id = ?`, targetDayID).Scan(&dayExists); err != nil {
			return fmt.Errorf("failed to check target day: %w", err)
		}
		if dayExists == 0 {
			return fmt.Errorf("day %s: %w", targetDayID, ErrNotFound)
		}

		var targetCount int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM template_meals WHERE template_day_id = ? AND slot_name = ?`,
			targetDayID, slotName).Scan(&targetCount); err != nil {
			return fmt.Errorf("failed to count target scope: %w", err)
		}

		sameScope := meal.DayID == targetDayID && meal.SlotName == slotName

		// Clamp silently. In the same scope the meal already occupies a
		// position, so the last valid index is count-1; in a foreign scope
		// the meal can append at count.
		maxIndex := targetCount
		if sameScope {
			maxIndex = targetCount - 1
		}
		if targetIndex > maxIndex {
			targetIndex = maxIndex
		}
		if targetIndex < 0 {
			targetIndex = 0
		}

		switch {
		case sameScope && targetIndex == meal.SortOrder:
			// No-op move.

		case !sameScope:
			// Make room in the target scope.
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET sort_order = sort_order + 1
                WHERE template_day_id = ? AND slot_name = ? AND sort_order >= ?`,
				targetDayID, slotName, targetIndex); err != nil {
				return fmt.Errorf("failed to shift target scope: %w", err)
			}
			// Re-home the meal.
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET template_day_id = ?, slot_name = ?, sort_order = ?
                WHERE id = ?`,
				targetDayID, slotName, targetIndex, mealID); err != nil {
				return fmt.Errorf("failed to move meal: %w", err)
			}
			// Close the gap in the source scope.
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET sort_order = sort_order - 1
                WHERE template_day_id = ? AND slot_name = ? AND sort_order > ?`,
				meal.DayID, meal.SlotName, meal.SortOrder); err != nil {
				return fmt.Errorf("failed to compact source scope: %w", err)
			}
			if err := checkMealScope(ctx, tx, meal.DayID, meal.SlotName); err != nil {
				return err
			}

		case meal.SortOrder < targetIndex:
			// Forward: everything in (source, target] slides down one.
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET sort_order = sort_order - 1
                WHERE template_day_id = ? AND slot_name = ? AND sort_order > ? AND sort_order <= ? AND id != ?`,
				targetDayID, slotName, meal.SortOrder, targetIndex, mealID); err != nil {
				return fmt.Errorf("failed to shift scope: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET sort_order = ? WHERE id = ?`,
				targetIndex, mealID); err != nil {
				return fmt.Errorf("failed to place meal: %w", err)
			}

		default:
			// Backward: everything in [target, source) slides up one.
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET sort_order = sort_order + 1
                WHERE template_day_id = ? AND slot_name = ? AND sort_order >= ? AND sort_order < ? AND id != ?`,
				targetDayID, slotName, targetIndex, meal.SortOrder, mealID); err != nil {
				return fmt.Errorf("failed to shift scope: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
                UPDATE template_meals SET sort_order = ? WHERE id = ?`,
				targetIndex, mealID); err != nil {
				return fmt.Errorf("failed to place meal: %w", err)
			}
		}

		if err := checkMealScope(ctx, tx, targetDayID, slotName); err != nil {
			return err
		}

		meal.DayID = targetDayID
		meal.SlotName = slotName
		meal.SortOrder = targetIndex
		moved = meal
		return nil
	})
	if err != nil {
		return TemplateMeal{}, err
	}
	return moved, nil
}

// checkMealScope verifies the contiguous-ordering invariant for one
// (day, slot) scope inside the running transaction; a violation aborts it.
func checkMealScope(ctx context.Context, tx *sql.Tx, dayID, slotName string) error {
	return checkScope(ctx, tx, fmt.Sprintf("day %s slot %q", dayID, slotName), `
        SELECT COUNT(*), COUNT(DISTINCT sort_order), COALESCE(MIN(sort_order), 0), COALESCE(MAX(sort_order), -1)
        FROM template_meals WHERE template_day_id = ? AND slot_name = ?`, dayID, slotName)
}

// checkDayScope does the same for a template's day sequence.
func checkDayScope(ctx context.Context, tx *sql.Tx, templateID string) error {
	return checkScope(ctx, tx, fmt.Sprintf("template %s days", templateID), `
        SELECT COUNT(*), COUNT(DISTINCT sort_order), COALESCE(MIN(sort_order), 0), COALESCE(MAX(sort_order), -1)
        FROM template_days WHERE plan_template_id = ?`, templateID)
}

func checkScope(ctx context.Context, tx *sql.Tx, scope, query string, args ...any) error {
	var count, distinct, minOrder, maxOrder int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count, &distinct, &minOrder, &maxOrder); err != nil {
		return fmt.Errorf("failed to verify scope %s: %w", scope, err)
	}
	if count == 0 {
		return nil
	}
	if distinct != count || minOrder != 0 || maxOrder != count-1 {
		return fmt.Errorf("ordering invariant broken in %s (count=%d distinct=%d min=%d max=%d)",
			scope, count, distinct, minOrder, maxOrder)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullAmount(c MealContent) any {
	if c.IngredientID == "" {
		return nil
	}
	return c.IngredientAmount
}
