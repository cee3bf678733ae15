// Package recipe holds the recipe hierarchy (recipe -> ordered steps ->
// ingredient lines and tool usages) and its database repository.
package recipe

// StepIngredient is one (ingredient, amount) line of a step. The ingredient
// id is a soft reference into the catalog.
type StepIngredient struct {
	IngredientID string  `json:"ingredient_id"`
	Amount       float64 `json:"amount"`
}

// Step is a single instruction of a recipe. Step sort orders within one
// recipe always form a contiguous zero-based sequence.
type Step struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	SortOrder   int              `json:"sort_order"`
	Ingredients []StepIngredient `json:"ingredients"`
	ToolIDs     []string         `json:"tool_ids"`
}

// Recipe is a named, ordered list of steps plus free-form method tags
// ("oven", "one pot", ...).
type Recipe struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Method []string `json:"method"`
	Steps  []Step   `json:"steps"`
}

// UniqueToolIDs returns the distinct tool ids used across all steps, in
// first-use order.
func (r Recipe) UniqueToolIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, step := range r.Steps {
		for _, id := range step.ToolIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// TotalIngredientAmount sums the raw amounts of every ingredient line.
func (r Recipe) TotalIngredientAmount() float64 {
	var total float64
	for _, step := range r.Steps {
		for _, line := range step.Ingredients {
			total += line.Amount
		}
	}
	return total
}
