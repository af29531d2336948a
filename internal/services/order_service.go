package services

import (
	"context"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"

	"go.uber.org/zap"
)

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// OrderService gives administrators access to recorded orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{orderRepo: orderRepo, logger: logger}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, backendError("list orders", err)
	}
	return orders, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, backendError("get order", err)
	}
	return order, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status string) error {
	if !validOrderStatuses[status] {
		return invalidInput("invalid order status: %s", status)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("failed to update order status", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return backendError("update order status", err)
	}
	s.logger.Info("order status updated", zap.String("id", id), zap.String("status", status))
	return nil
}
