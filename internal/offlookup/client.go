// Package offlookup queries the Open Food Facts database for ingredient
// nutrition data, mapping results into catalog ingredient drafts.
package offlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"meal-prep-planner/internal/catalog"
)

const userAgent = "meal-prep-planner/1.0"

// Product is one Open Food Facts search result with the macro fields the
// catalog cares about.
type Product struct {
	Code        string     `json:"code"`
	ProductName string     `json:"product_name"`
	Quantity    string     `json:"quantity"`
	Nutriments  Nutriments `json:"nutriments"`
}

// Nutriments carries per-100g values as published by Open Food Facts.
type Nutriments struct {
	EnergyKcal100g float64 `json:"energy-kcal_100g"`
	Proteins100g   float64 `json:"proteins_100g"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Fat100g        float64 `json:"fat_100g"`
	Fiber100g      float64 `json:"fiber_100g"`
}

// IngredientDraft maps a product to a catalog ingredient ready for review.
// The id is left empty; the catalog repository assigns one on create.
func (p Product) IngredientDraft() catalog.Ingredient {
	return catalog.Ingredient{
		Name: p.ProductName,
		Unit: "g",
		Macros: catalog.Macros{
			Protein:  p.Nutriments.Proteins100g,
			Carbs:    p.Nutriments.Carbs100g,
			Fat:      p.Nutriments.Fat100g,
			Calories: p.Nutriments.EnergyKcal100g,
			Fiber:    p.Nutriments.Fiber100g,
		},
		PurchaseUnit: catalog.PurchaseUnit{Name: "pack", Amount: 100},
	}
}

// Client talks to the Open Food Facts HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client against the given base URL (the production
// endpoint, or a test server).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search looks up products by free-text query, dropping results without a
// name or macro data.
func (c *Client) Search(ctx context.Context, query string) ([]Product, error) {
	if query == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf(
		"%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=10&fields=code,product_name,nutriments,quantity",
		c.baseURL, url.QueryEscape(query))

	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	var products []Product
	for _, p := range payload.Products {
		if p.ProductName == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// ByBarcode looks up a single product by barcode. A barcode with no usable
// product yields (nil, nil).
func (c *Client) ByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if barcode == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))

	var payload struct {
		Status  int     `json:"status"`
		Product Product `json:"product"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Status != 1 || payload.Product.ProductName == "" {
		return nil, nil
	}
	payload.Product.Code = barcode
	return &payload.Product, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Open Food Facts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Open Food Facts returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Open Food Facts response: %w", err)
	}
	return nil
}
