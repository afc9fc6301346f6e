package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"catalog/internal/model"
	"catalog/internal/repository"
)

// SeedProductData is one entry of a products fixture.
type SeedProductData struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// loadSource reads a fixture from an http(s) URL or a local file.
func loadSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// parseProducts decodes a fixture and drops entries that would fail request validation.
func parseProducts(raw []byte) ([]model.Product, int, error) {
	var items []SeedProductData
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to parse JSON: %w", err)
	}

	products := make([]model.Product, 0, len(items))
	invalid := 0
	for _, item := range items {
		if item.Name == "" || !item.Price.IsPositive() || item.Quantity < 0 {
			log.Printf("Skipping invalid product %q", item.Name)
			invalid++
			continue
		}
		products = append(products, model.Product{
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	return products, invalid, nil
}

// seedProducts creates products whose name is not stored yet.
func seedProducts(ctx context.Context, repo repository.ProductRepository, products []model.Product) (created int, skipped int, err error) {
	for i := range products {
		product := products[i]

		_, err := repo.FindByName(ctx, product.Name)
		switch {
		case err == nil:
			skipped++
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return created, skipped, fmt.Errorf("error checking product %q: %w", product.Name, err)
		}

		if err := repo.Create(ctx, &product); err != nil {
			return created, skipped, fmt.Errorf("error creating product %q: %w", product.Name, err)
		}
		created++
	}

	return created, skipped, nil
}
