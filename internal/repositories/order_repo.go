package repositories

import (
	"context"

	"vendicraft/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Create stores the order together with its items.
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status string) error
}
