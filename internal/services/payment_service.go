package services

import (
	"context"
	"fmt"
	"time"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/pkg/rabbitmq"

	"go.uber.org/zap"
)

// OrderEventPublisher announces stored orders to other processes.
type OrderEventPublisher interface {
	PublishOrderCreated(event rabbitmq.OrderCreated) error
}

// PaymentItem is one line of a payment request.
type PaymentItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// PaymentRequest is the body accepted by the payment endpoint.
type PaymentRequest struct {
	Amount        int64               `json:"amount"`
	CustomerInfo  models.CustomerInfo `json:"customerInfo"`
	OrderItems    []PaymentItem       `json:"orderItems"`
	PaymentMethod string              `json:"paymentMethod"`
}

// PaymentResult is returned when the order was stored and a payment
// session simulated.
type PaymentResult struct {
	Success       bool   `json:"success"`
	PaymentURL    string `json:"payment_url"`
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

// PaymentService records orders and simulates a payment provider hand-off.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	publisher OrderEventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService creates a new PaymentService. publisher may be nil.
func NewPaymentService(orderRepo repositories.OrderRepository, publisher OrderEventPublisher, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// PaymentURL returns the simulated checkout page for method.
func PaymentURL(method, orderID string) string {
	switch method {
	case "wave":
		return "https://wave.sn/pay/" + orderID
	case "orange-money":
		return "https://orange-money.com/pay/" + orderID
	default:
		return "https://paydunya.com/checkout/" + orderID
	}
}

// ProcessPayment stores the order and its items, then returns the payment
// URL for the chosen method. The amount is recorded as sent.
func (s *PaymentService) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	s.logger.Info("processing payment",
		zap.Int64("amount", req.Amount),
		zap.String("payment_method", req.PaymentMethod),
		zap.String("customer", req.CustomerInfo.Name))

	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		items = append(items, models.OrderItem{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	order := &models.Order{
		CustomerName:    req.CustomerInfo.Name,
		CustomerEmail:   req.CustomerInfo.Email,
		CustomerPhone:   req.CustomerInfo.Phone,
		CustomerAddress: req.CustomerInfo.Address,
		Items:           items,
		TotalAmount:     req.Amount,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderStatusPending,
		PaymentStatus:   "pending",
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("failed to create order", zap.Error(err))
		return nil, backendError("create order", err)
	}

	result := &PaymentResult{
		Success:       true,
		PaymentURL:    PaymentURL(req.PaymentMethod, order.ID),
		OrderID:       order.ID,
		TransactionID: fmt.Sprintf("txn_%d", s.now().UnixMilli()),
	}

	s.publish(order, result.TransactionID)

	s.logger.Info("payment initiated", zap.String("order_id", order.ID), zap.String("payment_url", result.PaymentURL))
	return result, nil
}

// publish is best effort: the order is already stored.
func (s *PaymentService) publish(order *models.Order, transactionID string) {
	if s.publisher == nil {
		s.logger.Debug("no event publisher configured, skipping order event")
		return
	}
	event := rabbitmq.OrderCreated{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		ItemCount:     len(order.Items),
		TransactionID: transactionID,
	}
	if err := s.publisher.PublishOrderCreated(event); err != nil {
		s.logger.Warn("failed to publish order created event", zap.String("order_id", order.ID), zap.Error(err))
	}
}
