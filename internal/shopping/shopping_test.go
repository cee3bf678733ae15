package shopping

import (
	"testing"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/template"
)

func testCatalog() catalog.Catalog {
	return catalog.NewSnapshot([]catalog.Ingredient{
		{ID: "chicken", Name: "Chicken Breast", Unit: "g",
			PurchaseUnit: catalog.PurchaseUnit{Name: "500g pack", Amount: 500}},
		{ID: "rice", Name: "White Rice", Unit: "g",
			PurchaseUnit: catalog.PurchaseUnit{Name: "1kg bag", Amount: 1000}},
		{ID: "egg", Name: "Eggs", Unit: "pcs",
			PurchaseUnit: catalog.PurchaseUnit{Name: "dozen", Amount: 12}},
	}, nil)
}

func activeTemplate(meals ...template.TemplateMeal) template.PlanTemplate {
	return template.PlanTemplate{
		ID: "tpl", IsActive: true,
		Days: []template.TemplateDay{{ID: "day", Meals: meals}},
	}
}

func TestAggregate(t *testing.T) {
	cat := testCatalog()
	bowl := &recipe.Recipe{ID: "bowl", Name: "Chicken Bowl", Steps: []recipe.Step{
		{Ingredients: []recipe.StepIngredient{
			{IngredientID: "chicken", Amount: 150},
			{IngredientID: "rice", Amount: 100},
		}},
		{Ingredients: []recipe.StepIngredient{{IngredientID: "chicken", Amount: 50}}},
	}}

	t.Run("rounds needs up to whole purchase units", func(t *testing.T) {
		// 2 servings + 4.5 servings of 200g chicken each: 1300g needed.
		meals := []template.TemplateMeal{
			{Content: template.MealContent{RecipeID: "bowl"}, Servings: 2, Recipe: bowl},
			{Content: template.MealContent{RecipeID: "bowl"}, Servings: 4.5, Recipe: bowl},
		}
		items := Aggregate([]template.PlanTemplate{activeTemplate(meals...)}, cat)
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}

		chicken := items[0]
		if chicken.IngredientID != "chicken" {
			t.Fatalf("Expected chicken first (encounter order), got %s", chicken.IngredientID)
		}
		if chicken.Needed != 1300 {
			t.Errorf("Expected 1300g needed, got %v", chicken.Needed)
		}
		if chicken.PurchaseUnitsNeeded != 3 || chicken.TotalPurchased != 1500 {
			t.Errorf("Expected 3 x 500g pack (1500g), got %d x (%vg)", chicken.PurchaseUnitsNeeded, chicken.TotalPurchased)
		}

		rice := items[1]
		if rice.Needed != 650 || rice.PurchaseUnitsNeeded != 1 {
			t.Errorf("Expected 650g rice in 1 bag, got %v in %d", rice.Needed, rice.PurchaseUnitsNeeded)
		}
	})

	t.Run("includes standalone ingredient meals", func(t *testing.T) {
		meals := []template.TemplateMeal{
			{Content: template.MealContent{IngredientID: "egg", IngredientAmount: 3}, Servings: 2},
		}
		items := Aggregate([]template.PlanTemplate{activeTemplate(meals...)}, cat)
		if len(items) != 1 || items[0].Needed != 6 || items[0].PurchaseUnitsNeeded != 1 {
			t.Errorf("Expected 6 eggs in one dozen, got %+v", items)
		}
	})

	t.Run("zero servings count as one", func(t *testing.T) {
		meals := []template.TemplateMeal{
			{Content: template.MealContent{IngredientID: "egg", IngredientAmount: 2}},
		}
		items := Aggregate([]template.PlanTemplate{activeTemplate(meals...)}, cat)
		if len(items) != 1 || items[0].Needed != 2 {
			t.Errorf("Expected 2 eggs needed, got %+v", items)
		}
	})

	t.Run("skips inactive templates", func(t *testing.T) {
		tpl := activeTemplate(template.TemplateMeal{
			Content: template.MealContent{IngredientID: "egg", IngredientAmount: 2}, Servings: 1,
		})
		tpl.IsActive = false
		if items := Aggregate([]template.PlanTemplate{tpl}, cat); len(items) != 0 {
			t.Errorf("Expected empty list for inactive template, got %+v", items)
		}
	})

	t.Run("combines several active templates", func(t *testing.T) {
		a := activeTemplate(template.TemplateMeal{
			Content: template.MealContent{IngredientID: "egg", IngredientAmount: 4}, Servings: 1,
		})
		b := activeTemplate(template.TemplateMeal{
			Content: template.MealContent{IngredientID: "egg", IngredientAmount: 10}, Servings: 1,
		})
		items := Aggregate([]template.PlanTemplate{a, b}, cat)
		if len(items) != 1 || items[0].Needed != 14 || items[0].PurchaseUnitsNeeded != 2 {
			t.Errorf("Expected 14 eggs in 2 dozens, got %+v", items)
		}
	})

	t.Run("drops ingredients the catalog cannot resolve", func(t *testing.T) {
		meals := []template.TemplateMeal{
			{Content: template.MealContent{IngredientID: "unicorn", IngredientAmount: 100}, Servings: 1},
			{Content: template.MealContent{IngredientID: "egg", IngredientAmount: 1}, Servings: 1},
		}
		items := Aggregate([]template.PlanTemplate{activeTemplate(meals...)}, cat)
		if len(items) != 1 || items[0].IngredientID != "egg" {
			t.Errorf("Expected only the resolvable egg line, got %+v", items)
		}
	})

	t.Run("skips unresolved recipes", func(t *testing.T) {
		meals := []template.TemplateMeal{
			{Content: template.MealContent{RecipeID: "ghost"}, Servings: 2},
		}
		if items := Aggregate([]template.PlanTemplate{activeTemplate(meals...)}, cat); len(items) != 0 {
			t.Errorf("Expected empty list, got %+v", items)
		}
	})
}
