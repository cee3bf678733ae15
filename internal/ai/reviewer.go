// Package ai asks a language model for qualitative feedback on a meal set.
// It is strictly best-effort: a model failure degrades to a single warning
// insight and never propagates to the caller, so planning operations are
// never blocked by the model being down.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/insight"
	"meal-prep-planner/internal/llm"
	"meal-prep-planner/internal/template"
)

// Reviewer generates natural-language insights for a set of meals.
type Reviewer struct {
	textGen llm.TextGenerator
}

// NewReviewer creates a Reviewer on top of a text generator.
func NewReviewer(textGen llm.TextGenerator) *Reviewer {
	return &Reviewer{textGen: textGen}
}

type mealContext struct {
	Slot        string   `json:"slot"`
	Name        string   `json:"name"`
	Method      []string `json:"method,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

type reviewResponse struct {
	Insights []struct {
		Type    string `json:"type"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"insights"`
}

// Review builds a compact description of the meals and asks the model for
// structured insights. On any failure it returns a single warning insight.
func (r *Reviewer) Review(ctx context.Context, meals []template.TemplateMeal, cat catalog.Catalog) []insight.Insight {
	contexts := buildContext(meals, cat)
	if len(contexts) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(contexts, "", "  ")
	if err != nil {
		return unavailable(err)
	}

	prompt := fmt.Sprintf(`
You are an expert meal prep chef. Analyze the following meal plan.

Data:
%s

Task:
Identify critical issues (conflicting tools, high complexity, nutritional gaps).
Return the result strictly as a JSON object with this structure:
{
  "insights": [
    {"type": "success|warning|info", "title": "Short Title", "message": "One sentence message."}
  ]
}

Do not include any other text in your response.
`, string(data))

	raw, err := r.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return unavailable(err)
	}

	var resp reviewResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return unavailable(fmt.Errorf("failed to parse model response: %w", err))
	}

	var insights []insight.Insight
	for _, item := range resp.Insights {
		insights = append(insights, insight.Insight{
			Severity: parseSeverity(item.Type),
			Title:    item.Title,
			Message:  item.Message,
		})
	}
	return insights
}

func buildContext(meals []template.TemplateMeal, cat catalog.Catalog) []mealContext {
	var contexts []mealContext
	for _, meal := range meals {
		if meal.Content.IsRecipe() {
			if meal.Recipe == nil {
				continue
			}
			mc := mealContext{Slot: meal.SlotName, Name: meal.Recipe.Name, Method: meal.Recipe.Method}
			for _, toolID := range meal.Recipe.UniqueToolIDs() {
				if tool, ok := cat.Tool(toolID); ok {
					mc.Tools = append(mc.Tools, tool.Name)
				}
			}
			for _, step := range meal.Recipe.Steps {
				for _, line := range step.Ingredients {
					if ing, ok := cat.Ingredient(line.IngredientID); ok {
						mc.Ingredients = append(mc.Ingredients, fmt.Sprintf("%.0f%s %s", line.Amount, ing.Unit, ing.Name))
					}
				}
			}
			contexts = append(contexts, mc)
			continue
		}

		if ing, ok := cat.Ingredient(meal.Content.IngredientID); ok {
			contexts = append(contexts, mealContext{
				Slot:        meal.SlotName,
				Name:        ing.Name,
				Ingredients: []string{fmt.Sprintf("%.0f%s %s", meal.Content.IngredientAmount, ing.Unit, ing.Name)},
			})
		}
	}
	return contexts
}

func parseSeverity(s string) insight.Severity {
	switch strings.ToLower(s) {
	case "success":
		return insight.SeveritySuccess
	case "warning":
		return insight.SeverityWarning
	case "error":
		return insight.SeverityError
	default:
		return insight.SeverityInfo
	}
}

func unavailable(err error) []insight.Insight {
	log.Printf("AI review unavailable: %v", err)
	return []insight.Insight{{
		Severity: insight.SeverityWarning,
		Title:    "AI Unavailable",
		Message:  "Could not generate model insights. The rule-based analysis above is unaffected.",
	}}
}
