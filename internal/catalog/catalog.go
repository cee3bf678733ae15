// Package catalog holds the reference data the planning engine computes
// against: ingredients with their macro profiles and purchase units, and the
// kitchen tools recipes use. The data is treated as immutable during an
// engine run; analysis code reads it through the Catalog interface.
package catalog

// Macros is the five-field nutrient vector used everywhere in the engine.
// Ingredient macros are stored per 100 units of the ingredient's unit.
type Macros struct {
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Calories float64 `json:"calories"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the element-wise sum of two macro vectors.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Calories: m.Calories + o.Calories,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Scale returns the macro vector multiplied by factor.
func (m Macros) Scale(factor float64) Macros {
	return Macros{
		Protein:  m.Protein * factor,
		Carbs:    m.Carbs * factor,
		Fat:      m.Fat * factor,
		Calories: m.Calories * factor,
		Fiber:    m.Fiber * factor,
	}
}

// PurchaseUnit is the real-world package size used for shopping rollups,
// e.g. a 500g pack.
type PurchaseUnit struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Ingredient is a reference catalog entry. Macros are per 100 units of Unit.
type Ingredient struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Unit         string       `json:"unit"`
	Macros       Macros       `json:"macros"`
	PurchaseUnit PurchaseUnit `json:"purchase_unit"`
}

// Tool is a piece of kitchen equipment referenced by recipe steps.
type Tool struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the read-only lookup the analysis components consume. Lookups
// report absence instead of failing; callers treat missing entries as zero
// contributions.
type Catalog interface {
	Ingredient(id string) (Ingredient, bool)
	Tool(id string) (Tool, bool)
	Ingredients() []Ingredient
	Tools() []Tool
}

// Snapshot is an immutable in-memory Catalog taken at a point in time.
type Snapshot struct {
	ingredients map[string]Ingredient
	tools       map[string]Tool
	ingOrder    []string
	toolOrder   []string
}

// NewSnapshot builds a Snapshot from ingredient and tool lists, preserving
// their order for the List accessors.
func NewSnapshot(ingredients []Ingredient, tools []Tool) *Snapshot {
	s := &Snapshot{
		ingredients: make(map[string]Ingredient, len(ingredients)),
		tools:       make(map[string]Tool, len(tools)),
	}
	for _, ing := range ingredients {
		if _, seen := s.ingredients[ing.ID]; !seen {
			s.ingOrder = append(s.ingOrder, ing.ID)
		}
		s.ingredients[ing.ID] = ing
	}
	for _, tool := range tools {
		if _, seen := s.tools[tool.ID]; !seen {
			s.toolOrder = append(s.toolOrder, tool.ID)
		}
		s.tools[tool.ID] = tool
	}
	return s
}

func (s *Snapshot) Ingredient(id string) (Ingredient, bool) {
	ing, ok := s.ingredients[id]
	return ing, ok
}

func (s *Snapshot) Tool(id string) (Tool, bool) {
	tool, ok := s.tools[id]
	return tool, ok
}

func (s *Snapshot) Ingredients() []Ingredient {
	out := make([]Ingredient, 0, len(s.ingOrder))
	for _, id := range s.ingOrder {
		out = append(out, s.ingredients[id])
	}
	return out
}

func (s *Snapshot) Tools() []Tool {
	out := make([]Tool, 0, len(s.toolOrder))
	for _, id := range s.toolOrder {
		out = append(out, s.tools[id])
	}
	return out
}
