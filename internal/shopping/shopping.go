// Package shopping rolls the ingredient needs of every active plan template
// up into purchase-unit counts.
package shopping

import (
	"math"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/template"
)

// Item is one line of the shopping list: how much of an ingredient the
// active plans need, and how many purchase units that translates to.
type Item struct {
	IngredientID        string  `json:"ingredient_id"`
	Name                string  `json:"name"`
	Unit                string  `json:"unit"`
	Needed              float64 `json:"needed"`
	PurchaseUnitName    string  `json:"purchase_unit_name"`
	PurchaseUnitsNeeded int     `json:"purchase_units_needed"`
	TotalPurchased      float64 `json:"total_purchased"`
}

// Aggregate walks every meal of every active template and accumulates
// ingredient amounts scaled by servings. Recipe-backed meals contribute each
// step's ingredient lines; ingredient-backed meals contribute their own
// amount. Ingredients missing from the catalog are dropped: without a
// purchase unit there is nothing to buy. When no template is active the
// result is empty, and the caller distinguishes "no active plan" by checking
// the templates itself.
func Aggregate(templates []template.PlanTemplate, cat catalog.Catalog) []Item {
	needed := make(map[string]float64)
	var order []string

	accumulate := func(ingredientID string, amount float64) {
		if _, seen := needed[ingredientID]; !seen {
			order = append(order, ingredientID)
		}
		needed[ingredientID] += amount
	}

	for _, t := range templates {
		if !t.IsActive {
			continue
		}
		for _, day := range t.Days {
			for _, meal := range day.Meals {
				servings := meal.Servings
				if servings == 0 {
					servings = 1
				}

				if meal.Content.IsRecipe() {
					if meal.Recipe == nil {
						continue
					}
					for _, step := range meal.Recipe.Steps {
						for _, line := range step.Ingredients {
							accumulate(line.IngredientID, line.Amount*servings)
						}
					}
					continue
				}
				accumulate(meal.Content.IngredientID, meal.Content.IngredientAmount*servings)
			}
		}
	}

	var items []Item
	for _, id := range order {
		ing, ok := cat.Ingredient(id)
		if !ok {
			continue
		}
		unitAmount := ing.PurchaseUnit.Amount
		if unitAmount <= 0 {
			unitAmount = 1
		}
		units := int(math.Ceil(needed[id] / unitAmount))
		items = append(items, Item{
			IngredientID:        id,
			Name:                ing.Name,
			Unit:                ing.Unit,
			Needed:              needed[id],
			PurchaseUnitName:    ing.PurchaseUnit.Name,
			PurchaseUnitsNeeded: units,
			TotalPurchased:      float64(units) * unitAmount,
		})
	}
	return items
}
