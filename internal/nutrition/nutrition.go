// Package nutrition computes macro totals for recipes and scheduled meals.
// All functions are pure and tolerant: an ingredient id the catalog cannot
// resolve contributes zero instead of failing the computation, since recipe
// edits may outpace catalog data. No rounding happens here; formatting is a
// presentation concern.
package nutrition

import (
	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/template"
)

// RecipeMacros sums the macros of every ingredient line of every step.
// Ingredient macros are per 100 units, so each line contributes
// macros * amount/100.
func RecipeMacros(rec recipe.Recipe, cat catalog.Catalog) catalog.Macros {
	return recipeMacros(rec, cat, nil)
}

// MealMacros computes the macro total of one scheduled meal, scaled by its
// servings multiplier.
//
// For recipe-backed meals, entries in the meal's modification map override
// the recipe-default amount of the matching ingredient. The map is keyed by
// ingredient id only: if a recipe uses the same ingredient in several steps,
// the one override amount is applied to each occurrence. That mirrors the
// stored data (overrides carry no step key) and is intentional.
//
// For ingredient-backed meals the result is
// ingredient.macros * amount/100 * servings.
func MealMacros(meal template.TemplateMeal, cat catalog.Catalog) catalog.Macros {
	if meal.Content.IsRecipe() {
		if meal.Recipe == nil {
			return catalog.Macros{}
		}
		return recipeMacros(*meal.Recipe, cat, meal.Modifications).Scale(meal.Servings)
	}

	ing, ok := cat.Ingredient(meal.Content.IngredientID)
	if !ok {
		return catalog.Macros{}
	}
	return ing.Macros.Scale(meal.Content.IngredientAmount / 100 * meal.Servings)
}

func recipeMacros(rec recipe.Recipe, cat catalog.Catalog, mods *template.Modifications) catalog.Macros {
	var total catalog.Macros
	for _, step := range rec.Steps {
		for _, line := range step.Ingredients {
			ing, ok := cat.Ingredient(line.IngredientID)
			if !ok {
				continue
			}
			amount := line.Amount
			if override, ok := mods.OverrideFor(line.IngredientID); ok {
				amount = override
			}
			total = total.Add(ing.Macros.Scale(amount / 100))
		}
	}
	return total
}
