package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"catalog/internal/cache"
	apperrors "catalog/internal/errors"
	"catalog/internal/model"
	"catalog/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// CreateProductInput is a fully validated product.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Quantity    int
}

// UpdateProductInput carries the fields present in a partial update.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
}

// IsEmpty reports whether no field was provided.
func (in UpdateProductInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.Price == nil && in.Quantity == nil
}

func (in UpdateProductInput) columns() map[string]interface{} {
	fields := make(map[string]interface{})
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.Quantity != nil {
		fields["quantity"] = *in.Quantity
	}
	return fields
}

// ProductService handles product operations.
type ProductService interface {
	Create(ctx context.Context, in CreateProductInput) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id uint) (*model.Product, error)
	Update(ctx context.Context, id uint, in UpdateProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	repo  repository.ProductRepository
	cache *cache.Client
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{
		repo:  repo,
		cache: cache,
	}
}

func (s *productService) cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

// Create persists a new product.
func (s *productService) Create(ctx context.Context, in CreateProductInput) (*model.Product, error) {
	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// List returns all products ordered by id.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get retrieves a product by ID with caching.
func (s *productService) Get(ctx context.Context, id uint) (*model.Product, error) {
	// Try cache first
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, productCacheTTL)
	}

	return product, nil
}

// Update applies a partial update. At least one field is required.
func (s *productService) Update(ctx context.Context, id uint, in UpdateProductInput) (*model.Product, error) {
	if in.IsEmpty() {
		return nil, apperrors.ErrNoUpdateFields
	}

	product, err := s.repo.Update(ctx, id, in.columns())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return product, nil
}

// Delete removes a product.
func (s *productService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrProductNotFound
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
