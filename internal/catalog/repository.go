package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an ingredient or tool id does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Repository is the database-backed store for the reference catalog.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new catalog Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateIngredient inserts a new ingredient and returns it with its id set.
func (r *Repository) CreateIngredient(ctx context.Context, ing Ingredient) (Ingredient, error) {
	ing.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO ingredients (id, name, unit, protein, carbs, fat, calories, fiber, purchase_unit_name, purchase_unit_amount)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ing.ID, ing.Name, ing.Unit,
		ing.Macros.Protein, ing.Macros.Carbs, ing.Macros.Fat, ing.Macros.Calories, ing.Macros.Fiber,
		ing.PurchaseUnit.Name, ing.PurchaseUnit.Amount)
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to insert ingredient: %w", err)
	}
	return ing, nil
}

// UpdateIngredient replaces an existing ingredient's fields.
func (r *Repository) UpdateIngredient(ctx context.Context, ing Ingredient) (Ingredient, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE ingredients
        SET name = ?, unit = ?, protein = ?, carbs = ?, fat = ?, calories = ?, fiber = ?, purchase_unit_name = ?, purchase_unit_amount = ?
        WHERE id = ?`,
		ing.Name, ing.Unit,
		ing.Macros.Protein, ing.Macros.Carbs, ing.Macros.Fat, ing.Macros.Calories, ing.Macros.Fiber,
		ing.PurchaseUnit.Name, ing.PurchaseUnit.Amount, ing.ID)
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to update ingredient: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Ingredient{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return Ingredient{}, fmt.Errorf("ingredient %s: %w", ing.ID, ErrNotFound)
	}
	return ing, nil
}

// GetIngredient retrieves an ingredient by id.
func (r *Repository) GetIngredient(ctx context.Context, id string) (Ingredient, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, unit, protein, carbs, fat, calories, fiber, purchase_unit_name, purchase_unit_amount
        FROM ingredients WHERE id = ?`, id)
	ing, err := scanIngredient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ingredient{}, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
		return Ingredient{}, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return ing, nil
}

// ListIngredients returns all ingredients ordered by name.
func (r *Repository) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, unit, protein, carbs, fat, calories, fiber, purchase_unit_name, purchase_unit_amount
        FROM ingredients ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

// DeleteIngredient removes an ingredient from the catalog. References to it
// from recipes or meals are soft and simply stop resolving.
func (r *Repository) DeleteIngredient(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	return nil
}

// CreateTool inserts a new tool and returns it with its id set.
func (r *Repository) CreateTool(ctx context.Context, name string) (Tool, error) {
	tool := Tool{ID: uuid.NewString(), Name: name}
	_, err := r.db.ExecContext(ctx, `INSERT INTO tools (id, name) VALUES (?, ?)`, tool.ID, tool.Name)
	if err != nil {
		return Tool{}, fmt.Errorf("failed to insert tool: %w", err)
	}
	return tool, nil
}

// ListTools returns all tools ordered by name.
func (r *Repository) ListTools(ctx context.Context) ([]Tool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tools ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	defer rows.Close()

	var tools []Tool
	for rows.Next() {
		var tool Tool
		if err := rows.Scan(&tool.ID, &tool.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tool: %w", err)
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}

// DeleteTool removes a tool from the catalog.
func (r *Repository) DeleteTool(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tool: %w", err)
	}
	return nil
}

// Snapshot loads the full catalog into an immutable in-memory view for the
// analysis components.
func (r *Repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	ingredients, err := r.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	tools, err := r.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(ingredients, tools), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngredient(row rowScanner) (Ingredient, error) {
	var ing Ingredient
	err := row.Scan(&ing.ID, &ing.Name, &ing.Unit,
		&ing.Macros.Protein, &ing.Macros.Carbs, &ing.Macros.Fat, &ing.Macros.Calories, &ing.Macros.Fiber,
		&ing.PurchaseUnit.Name, &ing.PurchaseUnit.Amount)
	return ing, err
}
