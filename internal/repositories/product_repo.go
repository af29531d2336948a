package repositories

import (
	"context"

	"vendicraft/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAll returns every product, most recently created first.
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Create inserts product, filling in its ID and timestamps.
	Create(ctx context.Context, product *models.Product) error
	// Update merges the set fields of update into the stored row and
	// returns the full row as stored afterwards.
	Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
