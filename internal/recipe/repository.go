package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a recipe id does not exist.
var ErrNotFound = errors.New("recipe not found")

// Repository is a database-backed repository for recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a recipe together with its steps. Steps are renumbered
// 0..n-1 in the order given, regardless of incoming sort orders.
func (r *Repository) Create(ctx context.Context, name string, method []string, steps []Step) (Recipe, error) {
	rec := Recipe{ID: uuid.NewString(), Name: name, Method: method}

	methodJSON, err := json.Marshal(methodOrEmpty(method))
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to marshal method tags: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO recipes (id, name, method) VALUES (?, ?, ?)`,
		rec.ID, rec.Name, string(methodJSON)); err != nil {
		return Recipe{}, fmt.Errorf("failed to insert recipe: %w", err)
	}

	rec.Steps, err = insertSteps(ctx, tx, rec.ID, steps)
	if err != nil {
		return Recipe{}, err
	}

	if err := tx.Commit(); err != nil {
		return Recipe{}, fmt.Errorf("failed to commit recipe: %w", err)
	}
	return rec, nil
}

// Update replaces a recipe's name, method tags and steps. Steps are deleted
// and recreated in one transaction; this avoids diffing nested step lists
// and guarantees the contiguous step numbering.
func (r *Repository) Update(ctx context.Context, rec Recipe) (Recipe, error) {
	methodJSON, err := json.Marshal(methodOrEmpty(rec.Method))
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to marshal method tags: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE recipes SET name = ?, method = ? WHERE id = ?`,
		rec.Name, string(methodJSON), rec.ID)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return Recipe{}, fmt.Errorf("recipe %s: %w", rec.ID, ErrNotFound)
	}

	// Cascades to step_ingredients and step_tools.
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_steps WHERE recipe_id = ?`, rec.ID); err != nil {
		return Recipe{}, fmt.Errorf("failed to delete old steps: %w", err)
	}

	rec.Steps, err = insertSteps(ctx, tx, rec.ID, rec.Steps)
	if err != nil {
		return Recipe{}, err
	}

	if err := tx.Commit(); err != nil {
		return Recipe{}, fmt.Errorf("failed to commit recipe update: %w", err)
	}
	return rec, nil
}

// Delete removes a recipe; steps cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// Get retrieves a single recipe with its steps in sort order.
func (r *Repository) Get(ctx context.Context, id string) (Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, method FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recipe{}, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return Recipe{}, fmt.Errorf("failed to get recipe: %w", err)
	}
	if err := r.loadSteps(ctx, &rec); err != nil {
		return Recipe{}, err
	}
	return rec, nil
}

// List retrieves all recipes with their steps in sort order.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, method FROM recipes ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range recipes {
		if err := r.loadSteps(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

// MapByID is a convenience for callers resolving meal references.
func MapByID(recipes []Recipe) map[string]Recipe {
	m := make(map[string]Recipe, len(recipes))
	for _, rec := range recipes {
		m[rec.ID] = rec
	}
	return m
}

func (r *Repository) loadSteps(ctx context.Context, rec *Recipe) error {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, description, sort_order FROM recipe_steps
        WHERE recipe_id = ? ORDER BY sort_order ASC`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	rec.Steps = nil
	for rows.Next() {
		var step Step
		if err := rows.Scan(&step.ID, &step.Description, &step.SortOrder); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		rec.Steps = append(rec.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range rec.Steps {
		step := &rec.Steps[i]

		ingRows, err := r.db.QueryContext(ctx, `
            SELECT ingredient_id, amount FROM step_ingredients WHERE step_id = ? ORDER BY rowid`, step.ID)
		if err != nil {
			return fmt.Errorf("failed to load step ingredients: %w", err)
		}
		for ingRows.Next() {
			var line StepIngredient
			if err := ingRows.Scan(&line.IngredientID, &line.Amount); err != nil {
				ingRows.Close()
				return fmt.Errorf("failed to scan step ingredient: %w", err)
			}
			step.Ingredients = append(step.Ingredients, line)
		}
		if err := ingRows.Err(); err != nil {
			ingRows.Close()
			return err
		}
		ingRows.Close()

		toolRows, err := r.db.QueryContext(ctx, `
            SELECT tool_id FROM step_tools WHERE step_id = ? ORDER BY rowid`, step.ID)
		if err != nil {
			return fmt.Errorf("failed to load step tools: %w", err)
		}
		for toolRows.Next() {
			var toolID string
			if err := toolRows.Scan(&toolID); err != nil {
				toolRows.Close()
				return fmt.Errorf("failed to scan step tool: %w", err)
			}
			step.ToolIDs = append(step.ToolIDs, toolID)
		}
		if err := toolRows.Err(); err != nil {
			toolRows.Close()
			return err
		}
		toolRows.Close()
	}
	return nil
}

func insertSteps(ctx context.Context, tx *sql.Tx, recipeID string, steps []Step) ([]Step, error) {
	out := make([]Step, 0, len(steps))
	for i, step := range steps {
		step.ID = uuid.NewString()
		step.SortOrder = i
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO recipe_steps (id, recipe_id, description, sort_order) VALUES (?, ?, ?, ?)`,
			step.ID, recipeID, step.Description, step.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to insert step: %w", err)
		}
		for _, line := range step.Ingredients {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO step_ingredients (step_id, ingredient_id, amount) VALUES (?, ?, ?)`,
				step.ID, line.IngredientID, line.Amount); err != nil {
				return nil, fmt.Errorf("failed to insert step ingredient: %w", err)
			}
		}
		for _, toolID := range step.ToolIDs {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO step_tools (step_id, tool_id) VALUES (?, ?)`,
				step.ID, toolID); err != nil {
				return nil, fmt.Errorf("failed to insert step tool: %w", err)
			}
		}
		out = append(out, step)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (Recipe, error) {
	var rec Recipe
	var methodJSON string
	if err := row.Scan(&rec.ID, &rec.Name, &methodJSON); err != nil {
		return Recipe{}, err
	}
	if err := json.Unmarshal([]byte(methodJSON), &rec.Method); err != nil {
		// Tolerate malformed method tags rather than failing the whole load.
		rec.Method = nil
	}
	return rec, nil
}

func methodOrEmpty(method []string) []string {
	if method == nil {
		return []string{}
	}
	return method
}
