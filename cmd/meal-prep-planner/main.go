package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"meal-prep-planner/internal/ai"
	"meal-prep-planner/internal/badge"
	"meal-prep-planner/internal/catalog"
	"meal-prep-planner/internal/config"
	"meal-prep-planner/internal/database"
	"meal-prep-planner/internal/importer"
	"meal-prep-planner/internal/insight"
	"meal-prep-planner/internal/llm"
	"meal-prep-planner/internal/nutrition"
	"meal-prep-planner/internal/offlookup"
	"meal-prep-planner/internal/recipe"
	"meal-prep-planner/internal/schedule"
	"meal-prep-planner/internal/shopping"
	"meal-prep-planner/internal/template"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	catalogRepo := catalog.NewRepository(db.SQL)
	recipeRepo := recipe.NewRepository(db.SQL)
	templateRepo := template.NewRepository(db.SQL)
	scheduleRepo := schedule.NewRepository(db.SQL)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "shopping-list":
		templates, cat, err := loadPlans(ctx, templateRepo, recipeRepo, catalogRepo)
		if err != nil {
			log.Fatalf("Failed to load plans: %v", err)
		}
		active := 0
		for _, t := range templates {
			if t.IsActive {
				active++
			}
		}
		if active == 0 {
			fmt.Println("No active plans. Mark a plan as active to generate a list.")
			return
		}
		if active > 1 {
			fmt.Printf("Combining %d active plans.\n", active)
		}
		for _, item := range shopping.Aggregate(templates, cat) {
			fmt.Printf("%-40s need %.0f%s -> %d x %s (%.0f%s)\n",
				item.Name, item.Needed, item.Unit,
				item.PurchaseUnitsNeeded, item.PurchaseUnitName, item.TotalPurchased, item.Unit)
		}

	case "insights":
		meals, cat, err := loadActiveMeals(ctx, templateRepo, recipeRepo, catalogRepo)
		if err != nil {
			log.Fatalf("Failed to load plans: %v", err)
		}
		for _, ins := range insight.PlanInsights(meals, cat) {
			fmt.Printf("[%s] %s: %s\n", ins.Severity, ins.Title, ins.Message)
		}

	case "strategy":
		meals, cat, err := loadActiveMeals(ctx, templateRepo, recipeRepo, catalogRepo)
		if err != nil {
			log.Fatalf("Failed to load plans: %v", err)
		}
		for _, line := range insight.PrepStrategy(meals, cat) {
			fmt.Println(line)
		}

	case "badges":
		cat, err := catalogRepo.Snapshot(ctx)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		recipes, err := recipeRepo.List(ctx)
		if err != nil {
			log.Fatalf("Failed to load recipes: %v", err)
		}
		for _, rec := range recipes {
			macros := nutrition.RecipeMacros(rec, cat)
			fmt.Printf("%s (%.0f kcal, %.0fg protein)\n", rec.Name, macros.Calories, macros.Protein)
			for _, b := range badge.Evaluate(rec, macros) {
				fmt.Printf("  [%s] %s: %s\n", b.Type, b.Label, b.Description)
			}
		}

	case "review":
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer gemini.Close()

		meals, cat, err := loadActiveMeals(ctx, templateRepo, recipeRepo, catalogRepo)
		if err != nil {
			log.Fatalf("Failed to load plans: %v", err)
		}
		reviewer := ai.NewReviewer(gemini)
		for _, ins := range reviewer.Review(ctx, meals, cat) {
			fmt.Printf("[%s] %s: %s\n", ins.Severity, ins.Title, ins.Message)
		}

	case "import":
		if len(os.Args) < 3 {
			log.Fatal("Usage: meal-prep-planner import <url>")
		}
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer gemini.Close()

		cat, err := catalogRepo.Snapshot(ctx)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		imp := importer.NewImporter(gemini, recipeRepo)
		rec, err := imp.ImportURL(ctx, os.Args[2], cat)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %q with %d steps.\n", rec.Name, len(rec.Steps))

	case "apply":
		if len(os.Args) < 4 {
			log.Fatal("Usage: meal-prep-planner apply <template-id> <YYYY-MM-DD>")
		}
		start, err := time.Parse("2006-01-02", os.Args[3])
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		tpl, err := templateRepo.GetTemplate(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to load template: %v", err)
		}
		if err := scheduleRepo.ApplyTemplate(ctx, tpl, start); err != nil {
			log.Fatalf("Failed to apply template: %v", err)
		}
		fmt.Printf("Applied %q starting %s.\n", tpl.Name, start.Format("2006-01-02"))

	case "lookup":
		if len(os.Args) < 3 {
			log.Fatal("Usage: meal-prep-planner lookup <query>")
		}
		client := offlookup.NewClient(cfg.OpenFoodFactsURL)
		products, err := client.Search(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Lookup failed: %v", err)
		}
		for _, p := range products {
			draft := p.IngredientDraft()
			fmt.Printf("%-50s %.0f kcal, %.1fg protein per 100g\n",
				draft.Name, draft.Macros.Calories, draft.Macros.Protein)
		}

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func loadPlans(ctx context.Context, templates *template.Repository, recipes *recipe.Repository, cats *catalog.Repository) ([]template.PlanTemplate, catalog.Catalog, error) {
	cat, err := cats.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	recs, err := recipes.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	plans, err := templates.ListTemplates(ctx)
	if err != nil {
		return nil, nil, err
	}
	template.ResolveReferences(plans, recipe.MapByID(recs), cat)
	return plans, cat, nil
}

func loadActiveMeals(ctx context.Context, templates *template.Repository, recipes *recipe.Repository, cats *catalog.Repository) ([]template.TemplateMeal, catalog.Catalog, error) {
	plans, cat, err := loadPlans(ctx, templates, recipes, cats)
	if err != nil {
		return nil, nil, err
	}
	var meals []template.TemplateMeal
	for _, t := range plans {
		if !t.IsActive {
			continue
		}
		meals = append(meals, t.Meals()...)
	}
	return meals, cat, nil
}

func printUsage() {
	fmt.Println("Usage: meal-prep-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  shopping-list       Aggregate the active plans into a purchase list")
	fmt.Println("  insights            Rule-based analysis of the active plans")
	fmt.Println("  strategy            Phased prep strategy for the active plans")
	fmt.Println("  badges              Macros and badges for every recipe")
	fmt.Println("  review              Model-generated feedback on the active plans")
	fmt.Println("  import <url>        Import a recipe from a web page")
	fmt.Println("  apply <id> <date>   Instantiate a template onto the calendar")
	fmt.Println("  lookup <query>      Search Open Food Facts for nutrition data")
}
