package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string

	// Optional integrations
	GeminiAPIKey     string
	OpenFoodFactsURL string
}

const defaultOpenFoodFactsURL = "https://world.openfoodfacts.org"

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("MEAL_PREP_DB_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("MEAL_PREP_DB_PATH environment variable not set")
	}

	// Gemini is optional: commands that need it fail at invocation time,
	// never at startup.
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")

	offURL := os.Getenv("OPENFOODFACTS_URL")
	if offURL == "" {
		offURL = defaultOpenFoodFactsURL
	}

	return &Config{
		DatabasePath:     dbPath,
		GeminiAPIKey:     geminiAPIKey,
		OpenFoodFactsURL: offURL,
	}, nil
}
