// Package badge classifies a recipe into qualitative labels from fixed
// thresholds over its macros and tool usage.
package badge

import (
	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/recipe"
)

// Type is the qualitative class of a badge.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// Badge is one qualitative label attached to a recipe.
type Badge struct {
	Type        Type   `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

var (
	highProtein    = Badge{TypeSuccess, "High Protein", ">30g Protein"}
	highFiber      = Badge{TypeSuccess, "High Fiber", ">10g Fiber"}
	highVolume     = Badge{TypeSuccess, "High Volume", "Low Calorie Density"}
	onePot         = Badge{TypeSuccess, "One Pot", "Only 1 Tool Used"}
	minimalCleanup = Badge{TypeSuccess, "Minimal Cleanup", "≤2 Tools Used"}

	highCalorie     = Badge{TypeError, "High Calorie", ">800 Calories"}
	highFat         = Badge{TypeError, "High Fat", ">30g Fat"}
	dishwasherNight = Badge{TypeError, "Dishwasher Nightmare", ">3 Tools Used"}
	deadTime        = Badge{TypeError, "Dead Time", "Inefficient Tool Reuse"}
)

// Evaluate returns the full badge set for a recipe given its aggregated
// macros. Badges may co-occur; the result carries no ordering guarantee.
func Evaluate(rec recipe.Recipe, macros catalog.Macros) []Badge {
	var badges []Badge

	if macros.Protein > 30 {
		badges = append(badges, highProtein)
	}
	if macros.Fiber > 10 {
		badges = append(badges, highFiber)
	}

	// High volume: plenty of food at low calorie density.
	totalWeight := rec.TotalIngredientAmount()
	if totalWeight > 300 && (macros.Calories/totalWeight)*100 < 100 {
		badges = append(badges, highVolume)
	}

	if macros.Calories > 800 {
		badges = append(badges, highCalorie)
	}
	if macros.Fat > 30 {
		badges = append(badges, highFat)
	}

	uniqueTools := len(rec.UniqueToolIDs())
	if uniqueTools == 1 {
		badges = append(badges, onePot)
	}
	if uniqueTools >= 1 && uniqueTools <= 2 {
		badges = append(badges, minimalCleanup)
	}
	if uniqueTools > 3 {
		badges = append(badges, dishwasherNight)
	}

	if hasDeadTime(rec) {
		badges = append(badges, deadTime)
	}

	return badges
}

// hasDeadTime reports whether any tool sits idle between two of its usages:
// used in step i, unused in step i+1, used again later. That implies washing
// and re-dirtying the same tool mid-cook.
func hasDeadTime(rec recipe.Recipe) bool {
	usage := make(map[string][]int)
	for i, step := range rec.Steps {
		for _, toolID := range step.ToolIDs {
			usage[toolID] = append(usage[toolID], i)
		}
	}
	for _, indices := range usage {
		for i := 0; i < len(indices)-1; i++ {
			if indices[i+1]-indices[i] > 1 {
				return true
			}
		}
	}
	return false
}
