// Package template holds the plan hierarchy (plan template -> day -> slot ->
// meal) and the ordering engine that keeps every ordering scope contiguous.
//
// Ordering scopes: days are ordered within their template, meals within a
// (day, slot name) pair. Sort orders in a scope are always a gap-free,
// zero-based sequence; only this package's mutators change them.
package template

import (
	"errors"
	"sort"
	"time"

	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/settings"
	"meal-prep-planner/internal/slot"
)

var (
	// ErrNotFound is returned when a template, day, or meal id does not
	// exist. The failing operation leaves no partial mutation behind.
	ErrNotFound = errors.New("template entity not found")

	// ErrInvalidState is returned when meal content would violate the
	// exactly-one-of recipe/ingredient rule.
	ErrInvalidState = errors.New("invalid meal content")

	// ErrConflict is returned when concurrent writers keep colliding after
	// the engine's automatic retry.
	ErrConflict = errors.New("transaction conflict")
)

// MealContent is the tagged variant behind a meal: either a recipe reference
// or a raw ingredient with an amount. The constructors are the only way to
// build a valid value.
type MealContent struct {
	RecipeID         string  `json:"recipe_id,omitempty"`
	IngredientID     string  `json:"ingredient_id,omitempty"`
	IngredientAmount float64 `json:"ingredient_amount,omitempty"`
}

// RecipeContent builds meal content backed by a recipe.
func RecipeContent(recipeID string) (MealContent, error) {
	if recipeID == "" {
		return MealContent{}, ErrInvalidState
	}
	return MealContent{RecipeID: recipeID}, nil
}

// IngredientContent builds meal content backed by a standalone ingredient.
func IngredientContent(ingredientID string, amount float64) (MealContent, error) {
	if ingredientID == "" || amount < 0 {
		return MealContent{}, ErrInvalidState
	}
	return MealContent{IngredientID: ingredientID, IngredientAmount: amount}, nil
}

// IsRecipe reports whether the content references a recipe.
func (c MealContent) IsRecipe() bool { return c.RecipeID != "" }

// Validate enforces the exactly-one-of rule. It holds for every value built
// through the constructors; storage loads are re-checked through it too.
func (c MealContent) Validate() error {
	hasRecipe := c.RecipeID != ""
	hasIngredient := c.IngredientID != ""
	if hasRecipe == hasIngredient {
		return ErrInvalidState
	}
	return nil
}

// IngredientOverride replaces the recipe-default amount of one ingredient in
// macro computation only; the underlying recipe is untouched.
type IngredientOverride struct {
	Amount float64 `json:"amount"`
}

// Modifications is the per-meal override map, keyed by ingredient id.
//
// The key carries no step information, so when a recipe uses the same
// ingredient in more than one step the override amount applies to every
// occurrence. That ambiguity is inherited product behavior and is preserved
// deliberately.
type Modifications struct {
	Ingredients map[string]IngredientOverride `json:"ingredients"`
}

// OverrideFor returns the override amount for an ingredient, if any.
func (m *Modifications) OverrideFor(ingredientID string) (float64, bool) {
	if m == nil || m.Ingredients == nil {
		return 0, false
	}
	o, ok := m.Ingredients[ingredientID]
	return o.Amount, ok
}

// TemplateMeal is one scheduled meal inside a (day, slot) scope.
//
// Recipe and Ingredient are resolved views attached by ResolveReferences;
// they are nil when the referenced catalog entry is missing.
type TemplateMeal struct {
	ID            string         `json:"id"`
	DayID         string         `json:"day_id"`
	SlotName      string         `json:"slot_name"`
	SortOrder     int            `json:"sort_order"`
	Servings      float64        `json:"servings"`
	Content       MealContent    `json:"content"`
	Modifications *Modifications `json:"modifications,omitempty"`

	Recipe     *recipe.Recipe      `json:"recipe,omitempty"`
	Ingredient *catalog.Ingredient `json:"ingredient,omitempty"`
}

// DayTargets are optional per-day macro targets; nil fields fall back to the
// global settings.
type DayTargets struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
	Fiber    *float64 `json:"fiber,omitempty"`
}

// Targets are fully resolved daily macro targets.
type Targets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// TemplateDay is one day of a plan template.
type TemplateDay struct {
	ID         string         `json:"id"`
	TemplateID string         `json:"template_id"`
	Name       string         `json:"name"`
	SortOrder  int            `json:"sort_order"`
	Targets    DayTargets     `json:"targets"`
	Meals      []TemplateMeal `json:"meals"`
}

// EffectiveTargets resolves the day's targets against the global settings.
func (d TemplateDay) EffectiveTargets(global settings.Settings) Targets {
	pick := func(override *float64, fallback float64) float64 {
		if override != nil {
			return *override
		}
		return fallback
	}
	return Targets{
		Calories: pick(d.Targets.Calories, global.CalorieTarget),
		Protein:  pick(d.Targets.Protein, global.ProteinTarget),
		Carbs:    pick(d.Targets.Carbs, global.CarbsTarget),
		Fat:      pick(d.Targets.Fat, global.FatTarget),
		Fiber:    pick(d.Targets.Fiber, global.FiberTarget),
	}
}

// PlanTemplate is a reusable meal plan. Several templates may be active at
// once; aggregation covers all of them.
type PlanTemplate struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	IsActive  bool          `json:"is_active"`
	Days      []TemplateDay `json:"days"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Meals flattens every meal of every day.
func (t PlanTemplate) Meals() []TemplateMeal {
	var meals []TemplateMeal
	for _, day := range t.Days {
		meals = append(meals, day.Meals...)
	}
	return meals
}

// ResolveReferences attaches recipe and ingredient views to each meal of the
// given templates. Missing references stay nil; downstream aggregation treats
// them as zero contributions.
func ResolveReferences(templates []PlanTemplate, recipesByID map[string]recipe.Recipe, cat catalog.Catalog) {
	for ti := range templates {
		for di := range templates[ti].Days {
			day := &templates[ti].Days[di]
			for mi := range day.Meals {
				meal := &day.Meals[mi]
				if meal.Content.IsRecipe() {
					if rec, ok := recipesByID[meal.Content.RecipeID]; ok {
						recCopy := rec
						meal.Recipe = &recCopy
					}
					continue
				}
				if ing, ok := cat.Ingredient(meal.Content.IngredientID); ok {
					ingCopy := ing
					meal.Ingredient = &ingCopy
				}
			}
		}
	}
}

// UnassignedSlot is the name under which meals whose slot no longer exists
// are surfaced.
const UnassignedSlot = "Unassigned"

// SlotGroup is one slot's worth of meals for a day, in meal sort order.
type SlotGroup struct {
	SlotName string         `json:"slot_name"`
	Time     string         `json:"time,omitempty"`
	Meals    []TemplateMeal `json:"meals"`
}

// GroupMealsBySlot arranges a day's meals under the slot taxonomy. Slots
// appear in their own sort order; meals whose slot name matches no slot are
// collected into a trailing Unassigned group rather than dropped.
func GroupMealsBySlot(day TemplateDay, slots []slot.Slot) []SlotGroup {
	known := make(map[string]slot.Slot, len(slots))
	for _, s := range slots {
		known[s.Name] = s
	}

	byName := make(map[string][]TemplateMeal)
	for _, meal := range day.Meals {
		name := meal.SlotName
		if _, ok := known[name]; !ok {
			name = UnassignedSlot
		}
		byName[name] = append(byName[name], meal)
	}

	var groups []SlotGroup
	for _, s := range slots {
		meals := byName[s.Name]
		sort.SliceStable(meals, func(i, j int) bool { return meals[i].SortOrder < meals[j].SortOrder })
		groups = append(groups, SlotGroup{SlotName: s.Name, Time: s.Time, Meals: meals})
	}
	if unassigned := byName[UnassignedSlot]; len(unassigned) > 0 {
		sort.SliceStable(unassigned, func(i, j int) bool {
			if unassigned[i].SlotName != unassigned[j].SlotName {
				return unassigned[i].SlotName < unassigned[j].SlotName
			}
			return unassigned[i].SortOrder < unassigned[j].SortOrder
		})
		groups = append(groups, SlotGroup{SlotName: UnassignedSlot, Meals: unassigned})
	}
	return groups
}
