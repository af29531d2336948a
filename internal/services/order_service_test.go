package services_test

import (
	"context"
	"testing"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOrderService(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryOrderRepository()
	svc := services.NewOrderService(repo, nil)

	order := &models.Order{CustomerName: "Awa Diop", TotalAmount: 1000, Status: models.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, order))

	orders, err := svc.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	require.NoError(t, svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped))
	got, err := svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)

	err = svc.UpdateOrderStatus(ctx, order.ID, "lost")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	err = svc.UpdateOrderStatus(ctx, "missing", models.OrderStatusDelivered)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.GetOrderByID(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOrderService_LogsStatusChanges(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	repo := repositories.NewMemoryOrderRepository()
	svc := services.NewOrderService(repo, zap.New(core))

	order := &models.Order{CustomerName: "Awa Diop", TotalAmount: 1000, Status: models.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, svc.UpdateOrderStatus(ctx, order.ID, models.OrderStatusDelivered))

	updated := logs.FilterMessage("order status updated").All()
	require.Len(t, updated, 1)
	assert.Equal(t, order.ID, updated[0].ContextMap()["id"])
	assert.Equal(t, models.OrderStatusDelivered, updated[0].ContextMap()["status"])

	_ = svc.UpdateOrderStatus(ctx, "missing", models.OrderStatusShipped)
	assert.Equal(t, 1, logs.FilterMessage("failed to update order status").Len())
}
