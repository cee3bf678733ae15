// Package insight is a small rule engine over a set of scheduled meals. It
// produces structured observations (batch efficiency, tool contention,
// protein diversity, macro averages) and a phased preparation strategy.
// Everything here is pure and degrades to empty results on empty input.
package insight

import (
	"fmt"
	"strings"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/nutrition"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/template"
)

// Severity classifies an insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Insight is one structured observation about a meal set.
type Insight struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

var proteinKeywords = []string{
	"chicken", "beef", "pork", "lamb", "steak",
	"salmon", "fish", "tuna", "turkey", "shrimp",
}

// PlanInsights analyzes one scope's worth of meals (a day, or all meals of a
// plan). Meals must carry resolved recipe/ingredient views; unresolved
// references contribute nothing.
func PlanInsights(meals []template.TemplateMeal, cat catalog.Catalog) []Insight {
	var insights []Insight
	if len(meals) == 0 {
		return insights
	}

	cooked, simple := splitMeals(meals)
	distinct := distinctRecipes(cooked)

	// Batch efficiency: how many servings of food each cooking session
	// produces. The ratio counts distinct recipe ids whether or not they
	// resolve, so an unresolved recipe still counts as a cooking session.
	if len(cooked) > 0 {
		ratio := float64(len(cooked)) / float64(distinctRecipeIDs(cooked))
		if ratio >= 2 {
			insights = append(insights, Insight{
				Severity: SeveritySuccess,
				Title:    "Batch Cooking Master",
				Message:  fmt.Sprintf("You are averaging %.1f meals per cooking session. This minimizes cleanup and active time.", ratio),
			})
		} else if len(cooked) > 4 && ratio < 1.2 {
			insights = append(insights, Insight{
				Severity: SeverityInfo,
				Title:    "High Kitchen Time",
				Message:  "You are cooking almost every meal from scratch. Try making double portions of 1-2 recipes to save time.",
			})
		}
	} else if len(simple) > 5 {
		insights = append(insights, Insight{
			Severity: SeverityInfo,
			Title:    "Assembly Only",
			Message:  fmt.Sprintf("All %d meals are assembled from raw ingredients. A couple of cooked recipes could add variety.", len(simple)),
		})
	}

	insights = append(insights, toolContention(distinct, cat)...)
	insights = append(insights, proteinDiversity(distinct, meals, cat)...)
	insights = append(insights, macroAverages(meals, cat)...)

	return insights
}

func splitMeals(meals []template.TemplateMeal) (cooked, simple []template.TemplateMeal) {
	for _, meal := range meals {
		if meal.Content.IsRecipe() {
			cooked = append(cooked, meal)
		} else {
			simple = append(simple, meal)
		}
	}
	return cooked, simple
}

// distinctRecipeIDs counts the distinct recipe ids among cooked meals.
func distinctRecipeIDs(cooked []template.TemplateMeal) int {
	seen := make(map[string]bool)
	for _, meal := range cooked {
		seen[meal.Content.RecipeID] = true
	}
	return len(seen)
}

// distinctRecipes returns the resolved recipe of each distinct recipe id, in
// first-use order.
func distinctRecipes(cooked []template.TemplateMeal) []recipe.Recipe {
	seen := make(map[string]bool)
	var recipes []recipe.Recipe
	for _, meal := range cooked {
		if seen[meal.Content.RecipeID] {
			continue
		}
		seen[meal.Content.RecipeID] = true
		if meal.Recipe != nil {
			recipes = append(recipes, *meal.Recipe)
		}
	}
	return recipes
}

// toolContention warns about tools required by more than 2 distinct recipes:
// each extra recipe means another wash cycle for the same tool.
func toolContention(recipes []recipe.Recipe, cat catalog.Catalog) []Insight {
	counts := make(map[string]int)
	var order []string
	for _, rec := range recipes {
		for _, toolID := range rec.UniqueToolIDs() {
			if counts[toolID] == 0 {
				order = append(order, toolID)
			}
			counts[toolID]++
		}
	}

	var insights []Insight
	for _, toolID := range order {
		if counts[toolID] <= 2 {
			continue
		}
		name := toolID
		if tool, ok := cat.Tool(toolID); ok {
			name = tool.Name
		}
		insights = append(insights, Insight{
			Severity: SeverityWarning,
			Title:    "Cookware Bottleneck",
			Message:  fmt.Sprintf("You need %s for %d different recipes. This means multiple wash cycles. Can you swap one recipe?", name, counts[toolID]),
		})
	}
	return insights
}

// proteinDiversity flags plans buying more than 3 different protein types;
// fewer types means cheaper bulk buying.
func proteinDiversity(recipes []recipe.Recipe, meals []template.TemplateMeal, cat catalog.Catalog) []Insight {
	matched := make(map[string]bool)
	var order []string

	scan := func(name string) {
		lower := strings.ToLower(name)
		for _, keyword := range proteinKeywords {
			if strings.Contains(lower, keyword) && !matched[keyword] {
				matched[keyword] = true
				order = append(order, keyword)
			}
		}
	}

	for _, rec := range recipes {
		for _, step := range rec.Steps {
			for _, line := range step.Ingredients {
				if ing, ok := cat.Ingredient(line.IngredientID); ok {
					scan(ing.Name)
				}
			}
		}
	}
	for _, meal := range meals {
		if meal.Content.IsRecipe() {
			continue
		}
		if ing, ok := cat.Ingredient(meal.Content.IngredientID); ok {
			scan(ing.Name)
		}
	}

	if len(order) <= 3 {
		return nil
	}
	return []Insight{{
		Severity: SeverityWarning,
		Title:    "High Protein Variety",
		Message: fmt.Sprintf("You're buying %d different protein types (%s, ...). Buying in bulk is cheaper; try reusing the same protein across meals.",
			len(order), strings.Join(order[:3], ", ")),
	}}
}

// macroAverages checks protein and fiber per serving across the whole scope.
func macroAverages(meals []template.TemplateMeal, cat catalog.Catalog) []Insight {
	var totalProtein, totalFiber, totalServings float64
	for _, meal := range meals {
		macros := nutrition.MealMacros(meal, cat)
		totalProtein += macros.Protein
		totalFiber += macros.Fiber
		totalServings += meal.Servings
	}
	if totalServings == 0 {
		return nil
	}

	var insights []Insight
	if avg := totalProtein / totalServings; avg < 15 {
		insights = append(insights, Insight{
			Severity: SeverityInfo,
			Title:    "Low Protein",
			Message:  fmt.Sprintf("Your meals average only %.0fg protein per serving. Consider adding a high-protein side.", avg),
		})
	}
	if avg := totalFiber / totalServings; avg < 4 {
		insights = append(insights, Insight{
			Severity: SeverityInfo,
			Title:    "Low Fiber",
			Message:  fmt.Sprintf("Your meals average only %.0fg fiber per serving. Add some veggies or legumes.", avg),
		})
	}
	return insights
}
