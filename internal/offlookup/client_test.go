package offlookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("maps products and drops nameless results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/cgi/search.pl" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("search_terms"); got != "chicken breast" {
				t.Errorf("Expected query 'chicken breast', got %q", got)
			}
			if got := r.Header.Get("User-Agent"); got != userAgent {
				t.Errorf("Expected user agent %q, got %q", userAgent, got)
			}
			w.Write([]byte(`{"products": [
                {"code": "123", "product_name": "Chicken Breast", "nutriments": {"energy-kcal_100g": 165, "proteins_100g": 31, "fat_100g": 3.6}},
                {"code": "456", "product_name": "", "nutriments": {"proteins_100g": 5}}
            ]}`))
		}))
		defer server.Close()

		products, err := NewClient(server.URL).Search(ctx, "chicken breast")
		if err != nil {
			t.Fatalf("Failed to search: %v", err)
		}
		if len(products) != 1 {
			t.Fatalf("Expected 1 product, got %d", len(products))
		}
		if products[0].ProductName != "Chicken Breast" || products[0].Nutriments.Proteins100g != 31 {
			t.Errorf("Unexpected product: %+v", products[0])
		}
	})

	t.Run("empty query skips the request", func(t *testing.T) {
		products, err := NewClient("http://127.0.0.1:1").Search(ctx, "")
		if err != nil || products != nil {
			t.Errorf("Expected nil result without error, got %v / %v", products, err)
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		if _, err := NewClient(server.URL).Search(ctx, "rice"); err == nil {
			t.Error("Expected an error for status 429")
		}
	})
}

func TestByBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the product for a known barcode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v0/product/737628064502.json" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"status": 1, "product": {"product_name": "Rice Noodles", "nutriments": {"carbohydrates_100g": 79}}}`))
		}))
		defer server.Close()

		product, err := NewClient(server.URL).ByBarcode(ctx, "737628064502")
		if err != nil {
			t.Fatalf("Failed to look up barcode: %v", err)
		}
		if product == nil || product.ProductName != "Rice Noodles" || product.Code != "737628064502" {
			t.Errorf("Unexpected product: %+v", product)
		}
	})

	t.Run("unknown barcode yields nil without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": 0}`))
		}))
		defer server.Close()

		product, err := NewClient(server.URL).ByBarcode(ctx, "000")
		if err != nil || product != nil {
			t.Errorf("Expected nil product without error, got %v / %v", product, err)
		}
	})
}

func TestIngredientDraft(t *testing.T) {
	p := Product{
		ProductName: "Oat Flakes",
		Nutriments:  Nutriments{EnergyKcal100g: 370, Proteins100g: 13, Carbs100g: 60, Fat100g: 7, Fiber100g: 10},
	}
	draft := p.IngredientDraft()
	if draft.ID != "" {
		t.Errorf("Expected empty id on a draft, got %q", draft.ID)
	}
	if draft.Name != "Oat Flakes" || draft.Unit != "g" {
		t.Errorf("Unexpected draft header: %+v", draft)
	}
	if draft.Macros.Calories != 370 || draft.Macros.Fiber != 10 {
		t.Errorf("Unexpected draft macros: %+v", draft.Macros)
	}
}
