package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("MEAL_PREP_DB_PATH", "/tmp/mealprep.db")
		t.Setenv("GEMINI_API_KEY", "gemini_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "/tmp/mealprep.db" {
			t.Errorf("Expected DatabasePath to be '/tmp/mealprep.db', got '%s'", cfg.DatabasePath)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.OpenFoodFactsURL != defaultOpenFoodFactsURL {
			t.Errorf("Expected default OpenFoodFactsURL, got '%s'", cfg.OpenFoodFactsURL)
		}
	})

	t.Run("MissingDatabasePath", func(t *testing.T) {
		os.Unsetenv("MEAL_PREP_DB_PATH")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing MEAL_PREP_DB_PATH, got nil")
		}
		expectedError := "MEAL_PREP_DB_PATH environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("GeminiOptional", func(t *testing.T) {
		t.Setenv("MEAL_PREP_DB_PATH", "/tmp/mealprep.db")
		os.Unsetenv("GEMINI_API_KEY")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "" {
			t.Errorf("Expected empty GeminiAPIKey, got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("OpenFoodFactsOverride", func(t *testing.T) {
		t.Setenv("MEAL_PREP_DB_PATH", "/tmp/mealprep.db")
		t.Setenv("OPENFOODFACTS_URL", "http://off.test")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.OpenFoodFactsURL != "http://off.test" {
			t.Errorf("Expected OpenFoodFactsURL 'http://off.test', got '%s'", cfg.OpenFoodFactsURL)
		}
	})
}
