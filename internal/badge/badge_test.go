package badge

import (
	"testing"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/recipe"
)

func labels(badges []Badge) map[string]bool {
	out := make(map[string]bool, len(badges))
	for _, b := range badges {
		out[b.Label] = true
	}
	return out
}

func stepWithTools(toolIDs ...string) recipe.Step {
	return recipe.Step{ToolIDs: toolIDs}
}

func TestEvaluate(t *testing.T) {
	t.Run("high protein and fiber one pot meal", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{stepWithTools("pan"), stepWithTools("pan")}}
		macros := catalog.Macros{Protein: 40, Fat: 10, Calories: 500, Fiber: 12}

		got := labels(Evaluate(rec, macros))
		for _, want := range []string{"High Protein", "High Fiber", "One Pot", "Minimal Cleanup"} {
			if !got[want] {
				t.Errorf("Expected badge %q, got %v", want, got)
			}
		}
		for _, unwanted := range []string{"High Calorie", "High Fat", "Dishwasher Nightmare", "Dead Time"} {
			if got[unwanted] {
				t.Errorf("Did not expect badge %q", unwanted)
			}
		}
	})

	t.Run("thresholds are strict", func(t *testing.T) {
		got := labels(Evaluate(recipe.Recipe{}, catalog.Macros{Protein: 30, Fiber: 10, Calories: 800, Fat: 30}))
		if len(got) != 0 {
			t.Errorf("Expected no badges at exact thresholds, got %v", got)
		}
	})

	t.Run("flags heavy recipes", func(t *testing.T) {
		got := labels(Evaluate(recipe.Recipe{}, catalog.Macros{Calories: 900, Fat: 35}))
		if !got["High Calorie"] || !got["High Fat"] {
			t.Errorf("Expected High Calorie and High Fat, got %v", got)
		}
	})

	t.Run("high volume needs weight and low density", func(t *testing.T) {
		bulky := recipe.Recipe{Steps: []recipe.Step{
			{Ingredients: []recipe.StepIngredient{{IngredientID: "veg", Amount: 400}}},
		}}
		got := labels(Evaluate(bulky, catalog.Macros{Calories: 300}))
		if !got["High Volume"] {
			t.Errorf("Expected High Volume for 400g at 75kcal/100g, got %v", got)
		}

		dense := labels(Evaluate(bulky, catalog.Macros{Calories: 600}))
		if dense["High Volume"] {
			t.Errorf("Did not expect High Volume at 150kcal/100g, got %v", dense)
		}
	})

	t.Run("minimal cleanup covers two tools without one pot", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{stepWithTools("pan", "pot")}}
		got := labels(Evaluate(rec, catalog.Macros{}))
		if !got["Minimal Cleanup"] || got["One Pot"] {
			t.Errorf("Expected Minimal Cleanup without One Pot, got %v", got)
		}
	})

	t.Run("dishwasher nightmare beyond three tools", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{stepWithTools("pan", "pot", "blender", "oven")}}
		got := labels(Evaluate(rec, catalog.Macros{}))
		if !got["Dishwasher Nightmare"] {
			t.Errorf("Expected Dishwasher Nightmare for 4 tools, got %v", got)
		}
		if got["Minimal Cleanup"] {
			t.Errorf("Did not expect Minimal Cleanup for 4 tools, got %v", got)
		}
	})

	t.Run("no tool badges without tools", func(t *testing.T) {
		got := labels(Evaluate(recipe.Recipe{Steps: []recipe.Step{{}}}, catalog.Macros{}))
		if got["One Pot"] || got["Minimal Cleanup"] {
			t.Errorf("Expected no tool badges, got %v", got)
		}
	})
}

func TestDeadTime(t *testing.T) {
	t.Run("detects a gap between tool usages", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{
			stepWithTools("pan"),
			stepWithTools("board"),
			stepWithTools("pan"),
		}}
		if !labels(Evaluate(rec, catalog.Macros{}))["Dead Time"] {
			t.Error("Expected Dead Time when the pan sits idle mid-recipe")
		}
	})

	t.Run("consecutive usage is fine", func(t *testing.T) {
		rec := recipe.Recipe{Steps: []recipe.Step{
			stepWithTools("pan"),
			stepWithTools("pan"),
			stepWithTools("board"),
		}}
		if labels(Evaluate(rec, catalog.Macros{}))["Dead Time"] {
			t.Error("Did not expect Dead Time for back-to-back usage")
		}
	})
}
