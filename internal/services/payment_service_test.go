package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/internal/services"
	"vendicraft/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.OrderEventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderCreated(event rabbitmq.OrderCreated) error {
	args := m.Called(event)
	return args.Error(0)
}

// failingOrderRepository refuses every write.
type failingOrderRepository struct {
	repositories.OrderRepository
}

func (failingOrderRepository) Create(context.Context, *models.Order) error {
	return fmt.Errorf("connection reset by peer")
}

func paymentRequest(method string) services.PaymentRequest {
	return services.PaymentRequest{
		Amount:       545000,
		CustomerInfo: checkoutCustomer,
		OrderItems: []services.PaymentItem{
			{ID: "a", Quantity: 2, Price: 250000},
			{ID: "b", Quantity: 1, Price: 45000},
		},
		PaymentMethod: method,
	}
}

func TestPaymentURL(t *testing.T) {
	assert.Equal(t, "https://wave.sn/pay/o1", services.PaymentURL("wave", "o1"))
	assert.Equal(t, "https://orange-money.com/pay/o1", services.PaymentURL("orange-money", "o1"))
	assert.Equal(t, "https://paydunya.com/checkout/o1", services.PaymentURL("paydunya", "o1"))
	assert.Equal(t, "https://paydunya.com/checkout/o1", services.PaymentURL("", "o1"))
}

func TestPaymentService_ProcessPayment(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewMemoryOrderRepository()
	publisher := new(MockPublisher)
	svc := services.NewPaymentService(orders, publisher, nil)

	publisher.On("PublishOrderCreated", mock.MatchedBy(func(e rabbitmq.OrderCreated) bool {
		return e.TotalAmount == 545000 && e.ItemCount == 2 && e.PaymentMethod == "wave"
	})).Return(nil).Once()

	result, err := svc.ProcessPayment(ctx, paymentRequest("wave"))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://wave.sn/pay/"+result.OrderID, result.PaymentURL)
	assert.True(t, strings.HasPrefix(result.TransactionID, "txn_"))

	stored, err := orders.GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, "pending", stored.PaymentStatus)
	assert.Equal(t, int64(545000), stored.TotalAmount)
	assert.Equal(t, "Awa Diop", stored.CustomerName)
	assert.Len(t, stored.Items, 2)
	publisher.AssertExpectations(t)
}

func TestPaymentService_PublishFailureIsTolerated(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishOrderCreated", mock.Anything).Return(fmt.Errorf("channel closed")).Once()
	svc := services.NewPaymentService(repositories.NewMemoryOrderRepository(), publisher, nil)

	result, err := svc.ProcessPayment(context.Background(), paymentRequest("orange-money"))
	require.NoError(t, err)
	assert.Equal(t, "https://orange-money.com/pay/"+result.OrderID, result.PaymentURL)
	publisher.AssertExpectations(t)
}

func TestPaymentService_StoreFailure(t *testing.T) {
	publisher := new(MockPublisher)
	svc := services.NewPaymentService(failingOrderRepository{}, publisher, nil)

	_, err := svc.ProcessPayment(context.Background(), paymentRequest("paydunya"))
	assert.ErrorIs(t, err, services.ErrOperationFailed)
	assert.Contains(t, err.Error(), "connection reset by peer")
	publisher.AssertNotCalled(t, "PublishOrderCreated", mock.Anything)
}

func TestPaymentService_NilPublisher(t *testing.T) {
	svc := services.NewPaymentService(repositories.NewMemoryOrderRepository(), nil, nil)
	result, err := svc.ProcessPayment(context.Background(), paymentRequest("wave"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.OrderID)
}
