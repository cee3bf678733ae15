package slot

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

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds the default taxonomy on first use", func(t *testing.T) {
		repo := newTestRepo(t)

		slots, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list slots: %v", err)
		}
		want := []struct {
			name string
			time string
		}{
			{"Breakfast", "08:00"},
			{"Lunch", "13:00"},
			{"Dinner", "19:00"},
		}
		if len(slots) != len(want) {
			t.Fatalf("Expected %d seeded slots, got %d", len(want), len(slots))
		}
		for i, w := range want {
			if slots[i].Name != w.name || slots[i].Time != w.time || slots[i].SortOrder != i {
				t.Errorf("Expected %s at %s (index %d), got %+v", w.name, w.time, i, slots[i])
			}
		}

		// A second call must not reseed.
		again, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list slots again: %v", err)
		}
		if len(again) != 3 || again[0].ID != slots[0].ID {
			t.Errorf("Expected the same seeded slots, got %+v", again)
		}
	})

	t.Run("does not seed over existing slots", func(t *testing.T) {
		repo := newTestRepo(t)
		if _, err := repo.Create(ctx, "Snack", "16:00", 0); err != nil {
			t.Fatalf("Failed to create slot: %v", err)
		}

		slots, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list slots: %v", err)
		}
		if len(slots) != 1 || slots[0].Name != "Snack" {
			t.Errorf("Expected only the custom slot, got %+v", slots)
		}
	})
}

func TestUpdateAll(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	slots, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to seed slots: %v", err)
	}

	// Swap breakfast and dinner.
	slots[0].SortOrder, slots[2].SortOrder = 2, 0
	slots[2].Time = "18:30"
	if err := repo.UpdateAll(ctx, slots); err != nil {
		t.Fatalf("Failed to update slots: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list slots: %v", err)
	}
	if got[0].Name != "Dinner" || got[0].Time != "18:30" || got[2].Name != "Breakfast" {
		t.Errorf("Expected reordered taxonomy, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	slots, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to seed slots: %v", err)
	}
	if err := repo.Delete(ctx, slots[1].ID); err != nil {
		t.Fatalf("Failed to delete slot: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list slots: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Breakfast" || got[1].Name != "Dinner" {
		t.Errorf("Expected Lunch removed, got %+v", got)
	}
}
