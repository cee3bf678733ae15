package insight

import (
	"fmt"
	"sort"
	"strings"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/template"
)

// Slow equipment is scheduled first so it works unattended while the faster
// stations run.
var slowToolKeywords = []string{"oven", "slow cooker", "roaster", "crockpot"}

const prepStation = "Mise en Place"

type prepTask struct {
	ingredient string
	unit       string
	amount     float64
	recipes    []string
}

type station struct {
	tool  string
	tasks []*prepTask
	index map[string]*prepTask
}

func (s *station) add(ingredient, unit string, amount float64, recipeName string) {
	task, ok := s.index[ingredient]
	if !ok {
		task = &prepTask{ingredient: ingredient, unit: unit}
		s.index[ingredient] = task
		s.tasks = append(s.tasks, task)
	}
	task.amount += amount
	for _, existing := range task.recipes {
		if existing == recipeName {
			return
		}
	}
	task.recipes = append(task.recipes, recipeName)
}

// PrepStrategy builds a phased, tool-grouped task list for cooking every
// distinct recipe of the scope in one session. Each recipe is scaled by the
// total servings it must produce across the scope. Tasks on the same station
// that reference the same ingredient are merged; a merged task spanning more
// than one recipe is a batch-cook opportunity.
func PrepStrategy(meals []template.TemplateMeal, cat catalog.Catalog) []string {
	cooked, _ := splitMeals(meals)
	recipes := distinctRecipes(cooked)
	if len(recipes) == 0 {
		return []string{"Add meals to generate a strategy."}
	}

	// Total servings each distinct recipe must produce.
	servingsByRecipe := make(map[string]float64)
	for _, meal := range cooked {
		servingsByRecipe[meal.Content.RecipeID] += meal.Servings
	}

	prep := &station{tool: prepStation, index: make(map[string]*prepTask)}
	var stations []*station
	stationByTool := make(map[string]*station)

	for _, rec := range recipes {
		scale := servingsByRecipe[rec.ID]
		if scale == 0 {
			scale = 1
		}
		for _, step := range rec.Steps {
			for _, line := range step.Ingredients {
				ing, ok := cat.Ingredient(line.IngredientID)
				if !ok {
					continue
				}
				amount := line.Amount * scale

				if len(step.ToolIDs) == 0 {
					prep.add(ing.Name, ing.Unit, amount, rec.Name)
					continue
				}
				for _, toolID := range step.ToolIDs {
					toolName := toolID
					if tool, ok := cat.Tool(toolID); ok {
						toolName = tool.Name
					}
					st, ok := stationByTool[toolName]
					if !ok {
						st = &station{tool: toolName, index: make(map[string]*prepTask)}
						stationByTool[toolName] = st
						stations = append(stations, st)
					}
					st.add(ing.Name, ing.Unit, amount, rec.Name)
				}
			}
		}
	}

	// Slow stations first; otherwise keep encounter order.
	sort.SliceStable(stations, func(i, j int) bool {
		return isSlowTool(stations[i].tool) && !isSlowTool(stations[j].tool)
	})

	var out []string

	out = append(out, "Phase 1: Mise en Place")
	if len(prep.tasks) == 0 {
		out = append(out, "- Nothing to prep ahead; head straight to the stations.")
	}
	for _, task := range prep.tasks {
		out = append(out, fmt.Sprintf("- Prep %s (%s)", describeTask(task), strings.Join(task.recipes, ", ")))
	}

	out = append(out, "Phase 2: Hot Stations")
	if len(stations) == 0 {
		out = append(out, "- No cooking stations needed.")
	}
	for _, st := range stations {
		out = append(out, fmt.Sprintf("%s:", st.tool))
		for _, task := range st.tasks {
			line := fmt.Sprintf("- Cook %s", describeTask(task))
			if len(task.recipes) > 1 {
				line += fmt.Sprintf(" [BATCH COOK: %s]", strings.Join(task.recipes, " + "))
			} else {
				line += fmt.Sprintf(" (%s)", task.recipes[0])
			}
			out = append(out, line)
		}
	}

	out = append(out, "Phase 3: Assembly")
	out = append(out, fmt.Sprintf("- Lay out %d containers and portion out meals.", len(meals)))
	out = append(out, "- Let food cool to room temperature before sealing lids.")

	return out
}

func describeTask(task *prepTask) string {
	return fmt.Sprintf("%.0f%s %s", task.amount, task.unit, task.ingredient)
}

func isSlowTool(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range slowToolKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
