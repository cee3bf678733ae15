package nutrition

import (
	"testing"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/template"
)

func testCatalog() catalog.Catalog {
	return catalog.NewSnapshot([]catalog.Ingredient{
		{ID: "chicken", Name: "Chicken Breast", Unit: "g",
			Macros: catalog.Macros{Protein: 31, Carbs: 0, Fat: 3.6, Calories: 165, Fiber: 0}},
		{ID: "rice", Name: "White Rice", Unit: "g",
			Macros: catalog.Macros{Protein: 2.7, Carbs: 28, Fat: 0.3, Calories: 130, Fiber: 0.4}},
	}, nil)
}

func almostEqual(a, b float64) bool {
	diff := a - b
	return diff > -1e-9 && diff < 1e-9
}

func TestRecipeMacros(t *testing.T) {
	cat := testCatalog()

	t.Run("sums ingredient lines across steps", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{
			{Ingredients: []recipe.StepIngredient{{IngredientID: "chicken", Amount: 200}}},
			{Ingredients: []recipe.StepIngredient{{IngredientID: "rice", Amount: 100}}},
		}}
		got := RecipeMacros(rec, cat)
		if !almostEqual(got.Protein, 31*2+2.7) {
			t.Errorf("Expected protein %.1f, got %.1f", 31*2+2.7, got.Protein)
		}
		if !almostEqual(got.Calories, 165*2+130) {
			t.Errorf("Expected calories %.0f, got %.0f", 165.0*2+130, got.Calories)
		}
	})

	t.Run("missing catalog entries contribute zero", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{
			{Ingredients: []recipe.StepIngredient{
				{IngredientID: "chicken", Amount: 100},
				{IngredientID: "unicorn", Amount: 500},
			}},
		}}
		got := RecipeMacros(rec, cat)
		if !almostEqual(got.Protein, 31) {
			t.Errorf("Expected only chicken's protein (31), got %.1f", got.Protein)
		}
	})

	t.Run("empty recipe yields zero", func(t *testing.T) {
		if got := RecipeMacros(recipe.Recipe{}, cat); got != (catalog.Macros{}) {
			t.Errorf("Expected zero macros, got %+v", got)
		}
	})
}

func TestMealMacros(t *testing.T) {
	cat := testCatalog()
	rec := recipe.Recipe{ID: "bowl", Steps: []recipe.Step{
		{Ingredients: []recipe.StepIngredient{{IngredientID: "chicken", Amount: 100}}},
		{Ingredients: []recipe.StepIngredient{{IngredientID: "rice", Amount: 100}}},
	}}

	t.Run("scales a recipe meal by servings", func(t *testing.T) {
		meal := template.TemplateMeal{
			Content:  template.MealContent{RecipeID: "bowl"},
			Servings: 2,
			Recipe:   &rec,
		}
		got := MealMacros(meal, cat)
		if !almostEqual(got.Protein, (31+2.7)*2) {
			t.Errorf("Expected protein %.1f, got %.1f", (31+2.7)*2, got.Protein)
		}
	})

	t.Run("unresolved recipe yields zero", func(t *testing.T) {
		meal := template.TemplateMeal{
			Content:  template.MealContent{RecipeID: "ghost"},
			Servings: 3,
		}
		if got := MealMacros(meal, cat); got != (catalog.Macros{}) {
			t.Errorf("Expected zero macros, got %+v", got)
		}
	})

	t.Run("override replaces the amount of every occurrence", func(t *testing.T) {
		twice := recipe.Recipe{ID: "double", Steps: []recipe.Step{
			{Ingredients: []recipe.StepIngredient{{IngredientID: "chicken", Amount: 100}}},
			{Ingredients: []recipe.StepIngredient{{IngredientID: "chicken", Amount: 200}}},
		}}
		meal := template.TemplateMeal{
			Content:  template.MealContent{RecipeID: "double"},
			Servings: 1,
			Recipe:   &twice,
			Modifications: &template.Modifications{Ingredients: map[string]template.IngredientOverride{
				"chicken": {Amount: 50},
			}},
		}
		got := MealMacros(meal, cat)
		// Both lines collapse to 50g: 2 * 31 * 0.5.
		if !almostEqual(got.Protein, 31) {
			t.Errorf("Expected protein 31, got %.1f", got.Protein)
		}
	})

	t.Run("ingredient meal scales by amount and servings", func(t *testing.T) {
		meal := template.TemplateMeal{
			Content:  template.MealContent{IngredientID: "rice", IngredientAmount: 50},
			Servings: 2,
		}
		got := MealMacros(meal, cat)
		if !almostEqual(got.Carbs, 28*0.5*2) {
			t.Errorf("Expected carbs 28, got %.1f", got.Carbs)
		}
	})

	t.Run("ingredient meal with missing ingredient yields zero", func(t *testing.T) {
		meal := template.TemplateMeal{
			Content:  template.MealContent{IngredientID: "unicorn", IngredientAmount: 100},
			Servings: 1,
		}
		if got := MealMacros(meal, cat); got != (catalog.Macros{}) {
			t.Errorf("Expected zero macros, got %+v", got)
		}
	})
}
