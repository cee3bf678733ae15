// Package importer turns a recipe web page into a stored recipe: fetch the
// page, strip boilerplate, have the model extract a structured recipe, then
// resolve its ingredient and tool names against the catalog.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/llm"
	"meal-prep-planner/internal/recipe"
)

// Importer fetches and extracts recipes from URLs.
type Importer struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
	recipes    *recipe.Repository
}

// extractedRecipe is the shape the model is asked to produce.
type extractedRecipe struct {
	Name   string   `json:"name"`
	Method []string `json:"method"`
	Steps  []struct {
		Description string `json:"description"`
		Ingredients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		} `json:"ingredients"`
		Tools []string `json:"tools"`
	} `json:"steps"`
}

// NewImporter creates a new Importer.
func NewImporter(textGen llm.TextGenerator, recipes *recipe.Repository) *Importer {
	return &Importer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
		recipes:    recipes,
	}
}

// ImportURL fetches the URL, extracts the recipe, resolves references
// against the catalog, and saves it. Ingredient lines that match nothing in
// the catalog are skipped with a log line; tool names with no catalog match
// are skipped the same way.
func (imp *Importer) ImportURL(ctx context.Context, pageURL string, cat catalog.Catalog) (recipe.Recipe, error) {
	content, err := imp.fetchAndCleanHTML(ctx, pageURL)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe from the following page text.
Amounts are in grams (estimate when the page uses other units).
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe Name",
  "method": ["oven", "one pot"],
  "steps": [
    {
      "description": "Step description",
      "ingredients": [{"name": "ingredient name", "amount": 100}],
      "tools": ["tool name"]
    }
  ]
}

Do not include any other text in your response.

Page text:
%s
`, content)

	raw, err := imp.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if extracted.Name == "" || len(extracted.Steps) == 0 {
		return recipe.Recipe{}, fmt.Errorf("extraction produced no usable recipe")
	}

	steps := imp.resolveSteps(extracted, cat)
	return imp.recipes.Create(ctx, extracted.Name, extracted.Method, steps)
}

func (imp *Importer) resolveSteps(extracted extractedRecipe, cat catalog.Catalog) []recipe.Step {
	toolsByName := make(map[string]catalog.Tool)
	for _, tool := range cat.Tools() {
		toolsByName[strings.ToLower(tool.Name)] = tool
	}

	var steps []recipe.Step
	for _, raw := range extracted.Steps {
		step := recipe.Step{Description: raw.Description}
		for _, line := range raw.Ingredients {
			ing, ok := matchIngredient(line.Name, cat)
			if !ok {
				log.Printf("Skipping unmatched ingredient %q", line.Name)
				continue
			}
			step.Ingredients = append(step.Ingredients, recipe.StepIngredient{
				IngredientID: ing.ID,
				Amount:       line.Amount,
			})
		}
		for _, name := range raw.Tools {
			tool, ok := toolsByName[strings.ToLower(name)]
			if !ok {
				log.Printf("Skipping unmatched tool %q", name)
				continue
			}
			step.ToolIDs = append(step.ToolIDs, tool.ID)
		}
		steps = append(steps, step)
	}
	return steps
}

// matchIngredient finds a catalog ingredient whose name contains, or is
// contained in, the extracted name (case-insensitive). First match wins.
func matchIngredient(name string, cat catalog.Catalog) (catalog.Ingredient, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return catalog.Ingredient{}, false
	}
	for _, ing := range cat.Ingredients() {
		ingName := strings.ToLower(ing.Name)
		if strings.Contains(ingName, lower) || strings.Contains(lower, ingName) {
			return ing, true
		}
	}
	return catalog.Ingredient{}, false
}

func (imp *Importer) fetchAndCleanHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := imp.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
