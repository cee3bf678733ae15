package settings

import (
	"context"
	"path/filepath"
	"testing"

	"meal-prep-planner/internal/database"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	t.Run("returns defaults before any save", func(t *testing.T) {
		got, err := repo.Get(ctx)
		if err != nil {
			t.Fatalf("Failed to get settings: %v", err)
		}
		if got != Defaults() {
			t.Errorf("Expected defaults %+v, got %+v", Defaults(), got)
		}
	})

	t.Run("returns saved values after update", func(t *testing.T) {
		want := Settings{CalorieTarget: 2400, ProteinTarget: 180, CarbsTarget: 250, FatTarget: 70, FiberTarget: 35}
		if err := repo.Update(ctx, want); err != nil {
			t.Fatalf("Failed to update settings: %v", err)
		}
		got, err := repo.Get(ctx)
		if err != nil {
			t.Fatalf("Failed to get settings: %v", err)
		}
		if got != want {
			t.Errorf("Expected %+v, got %+v", want, got)
		}
	})

	t.Run("update overwrites the single row", func(t *testing.T) {
		if err := repo.Update(ctx, Settings{CalorieTarget: 1800, ProteinTarget: 140, CarbsTarget: 180, FatTarget: 55, FiberTarget: 28}); err != nil {
			t.Fatalf("Failed to update settings: %v", err)
		}
		got, err := repo.Get(ctx)
		if err != nil {
			t.Fatalf("Failed to get settings: %v", err)
		}
		if got.CalorieTarget != 1800 {
			t.Errorf("Expected overwritten calorie target 1800, got %v", got.CalorieTarget)
		}
	})
}
