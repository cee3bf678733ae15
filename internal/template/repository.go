package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the database-backed store for plan templates. All multi-row
// sort-order mutations live in ordering.go.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new template Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTemplate inserts an empty, inactive template.
func (r *Repository) CreateTemplate(ctx context.Context, name string) (PlanTemplate, error) {
	now := time.Now().UTC()
	t := PlanTemplate{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO plan_templates (id, name, is_active, created_at, updated_at)
        VALUES (?, ?, 0, ?, ?)`,
		t.ID, t.Name, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return PlanTemplate{}, fmt.Errorf("failed to insert template: %w", err)
	}
	return t, nil
}

// RenameTemplate updates a template's name.
func (r *Repository) RenameTemplate(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE plan_templates SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to rename template: %w", err)
	}
	return requireAffected(res, id)
}

// SetActive toggles the active flag. Several templates may be active at the
// same time; callers aggregate over all of them.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE plan_templates SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to toggle template: %w", err)
	}
	return requireAffected(res, id)
}

// DeleteTemplate removes a template; days and meals cascade.
func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM plan_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// UpdateDay updates a day's name and targets (not its sort order).
func (r *Repository) UpdateDay(ctx context.Context, day TemplateDay) (TemplateDay, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE template_days
        SET name = ?, target_calories = ?, target_protein = ?, target_carbs = ?, target_fat = ?, target_fiber = ?
        WHERE id = ?`,
		day.Name,
		nullable(day.Targets.Calories), nullable(day.Targets.Protein), nullable(day.Targets.Carbs),
		nullable(day.Targets.Fat), nullable(day.Targets.Fiber),
		day.ID)
	if err != nil {
		return TemplateDay{}, fmt.Errorf("failed to update day: %w", err)
	}
	if err := requireAffected(res, day.ID); err != nil {
		return TemplateDay{}, err
	}
	return day, nil
}

// UpdateMealServings changes a meal's servings multiplier.
func (r *Repository) UpdateMealServings(ctx context.Context, mealID string, servings float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE template_meals SET servings = ? WHERE id = ?`, servings, mealID)
	if err != nil {
		return fmt.Errorf("failed to update servings: %w", err)
	}
	return requireAffected(res, mealID)
}

// UpdateMealModifications replaces a meal's ingredient override map.
func (r *Repository) UpdateMealModifications(ctx context.Context, mealID string, mods *Modifications) error {
	var modsJSON any
	if mods != nil {
		data, err := json.Marshal(mods)
		if err != nil {
			return fmt.Errorf("failed to marshal modifications: %w", err)
		}
		modsJSON = string(data)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE template_meals SET modifications = ? WHERE id = ?`, modsJSON, mealID)
	if err != nil {
		return fmt.Errorf("failed to update modifications: %w", err)
	}
	return requireAffected(res, mealID)
}

// GetTemplate loads one template with its full day/meal hierarchy in sort
// order. Recipe and ingredient views are attached separately via
// ResolveReferences.
func (r *Repository) GetTemplate(ctx context.Context, id string) (PlanTemplate, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, is_active, created_at, updated_at FROM plan_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PlanTemplate{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		return PlanTemplate{}, fmt.Errorf("failed to get template: %w", err)
	}
	if t.Days, err = r.loadDays(ctx, t.ID); err != nil {
		return PlanTemplate{}, err
	}
	return t, nil
}

// ListTemplates loads every template with its hierarchy, newest first.
func (r *Repository) ListTemplates(ctx context.Context) ([]PlanTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, is_active, created_at, updated_at
        FROM plan_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []PlanTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		if templates[i].Days, err = r.loadDays(ctx, templates[i].ID); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// GetDay loads one day with its meals in sort order.
func (r *Repository) GetDay(ctx context.Context, dayID string) (TemplateDay, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, plan_template_id, name, sort_order,
               target_calories, target_protein, target_carbs, target_fat, target_fiber
        FROM template_days WHERE id = ?`, dayID)
	day, err := scanDay(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TemplateDay{}, fmt.Errorf("day %s: %w", dayID, ErrNotFound)
		}
		return TemplateDay{}, fmt.Errorf("failed to get day: %w", err)
	}
	if day.Meals, err = r.loadMeals(ctx, day.ID); err != nil {
		return TemplateDay{}, err
	}
	return day, nil
}

func (r *Repository) loadDays(ctx context.Context, templateID string) ([]TemplateDay, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, plan_template_id, name, sort_order,
               target_calories, target_protein, target_carbs, target_fat, target_fiber
        FROM template_days WHERE plan_template_id = ? ORDER BY sort_order ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load days: %w", err)
	}
	defer rows.Close()

	var days []TemplateDay
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		if days[i].Meals, err = r.loadMeals(ctx, days[i].ID); err != nil {
			return nil, err
		}
	}
	return days, nil
}

func (r *Repository) loadMeals(ctx context.Context, dayID string) ([]TemplateMeal, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, template_day_id, recipe_id, ingredient_id, ingredient_amount,
               slot_name, sort_order, servings, modifications
        FROM template_meals WHERE template_day_id = ? ORDER BY slot_name ASC, sort_order ASC`, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}
	defer rows.Close()

	var meals []TemplateMeal
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (PlanTemplate, error) {
	var t PlanTemplate
	err := row.Scan(&t.ID, &t.Name, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanDay(row rowScanner) (TemplateDay, error) {
	var day TemplateDay
	var calories, protein, carbs, fat, fiber sql.NullFloat64
	if err := row.Scan(&day.ID, &day.TemplateID, &day.Name, &day.SortOrder,
		&calories, &protein, &carbs, &fat, &fiber); err != nil {
		return TemplateDay{}, err
	}
	day.Targets = DayTargets{
		Calories: floatPtr(calories),
		Protein:  floatPtr(protein),
		Carbs:    floatPtr(carbs),
		Fat:      floatPtr(fat),
		Fiber:    floatPtr(fiber),
	}
	return day, nil
}

func scanMeal(row rowScanner) (TemplateMeal, error) {
	var meal TemplateMeal
	var recipeID, ingredientID, modsJSON sql.NullString
	var ingredientAmount sql.NullFloat64
	if err := row.Scan(&meal.ID, &meal.DayID, &recipeID, &ingredientID, &ingredientAmount,
		&meal.SlotName, &meal.SortOrder, &meal.Servings, &modsJSON); err != nil {
		return TemplateMeal{}, err
	}
	meal.Content = MealContent{
		RecipeID:         recipeID.String,
		IngredientID:     ingredientID.String,
		IngredientAmount: ingredientAmount.Float64,
	}
	if modsJSON.Valid && modsJSON.String != "" {
		var mods Modifications
		if err := json.Unmarshal([]byte(modsJSON.String), &mods); err == nil {
			meal.Modifications = &mods
		}
		// Malformed override JSON is tolerated as "no overrides".
	}
	return meal, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func requireAffected(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
