package services_test

import (
	"context"
	"testing"

	"vendicraft/internal/cart"
	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture(t *testing.T) (*services.CartService, *cart.Store) {
	t.Helper()
	ctx := context.Background()
	repo := repositories.NewMemoryProductRepository()
	for _, p := range []models.Product{
		{ID: "phone", Name: "Smartphone Premium", Price: 250000, InStock: true},
		{ID: "bag", Name: "Sac à Main", Price: 45000, InStock: true, Sizes: []string{"S", "M", "L"}},
		{ID: "headset", Name: "Casque", Price: 30000, InStock: false},
	} {
		p := p
		require.NoError(t, repo.Create(ctx, &p))
	}
	store := cart.NewStore()
	products := services.NewProductService(repo, nil, "products", nil)
	return services.NewCartService(store, products, nil), store
}

func TestCartService_AddItemAndTotals(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()
	id := svc.NewCartID()

	_, err := svc.AddItem(ctx, id, "phone", "")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, "phone", "")
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, id, "bag", "M")
	require.NoError(t, err)

	assert.Equal(t, id, view.CartID)
	assert.Equal(t, "545000", view.Total.String())
	assert.Equal(t, 3, view.ItemCount)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "M", view.Lines[1].SelectedSize)

	again := svc.GetCart(id)
	assert.Equal(t, view.Lines, again.Lines)
	assert.True(t, view.Total.Equal(again.Total))
}

func TestCartService_AddItemRejections(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()
	id := svc.NewCartID()

	tests := []struct {
		name      string
		productID string
		size      string
		target    error
	}{
		{"out of stock", "headset", "", services.ErrInvalidInput},
		{"missing size", "bag", "", services.ErrInvalidInput},
		{"unknown size", "bag", "XXL", services.ErrInvalidInput},
		{"unknown product", "nope", "", services.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, id, tt.productID, tt.size)
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Zero(t, svc.GetCart(id).ItemCount)
}

func TestCartService_UnsizedProductIgnoresSize(t *testing.T) {
	svc, _ := newCartFixture(t)
	id := svc.NewCartID()

	view, err := svc.AddItem(context.Background(), id, "phone", "XL")
	require.NoError(t, err)
	assert.Empty(t, view.Lines[0].SelectedSize)
}

func TestCartService_QuantityAndRemoval(t *testing.T) {
	svc, _ := newCartFixture(t)
	ctx := context.Background()
	id := svc.NewCartID()

	_, err := svc.AddItem(ctx, id, "phone", "")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, id, "bag", "S")
	require.NoError(t, err)

	view := svc.SetQuantity(id, "bag", 4)
	assert.Equal(t, "430000", view.Total.String())

	view = svc.SetQuantity(id, "bag", 0)
	assert.Len(t, view.Lines, 1)

	view = svc.RemoveItem(id, "phone")
	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())

	view = svc.RemoveItem(id, "phone")
	assert.Empty(t, view.Lines)
}

func TestCartService_RestoreAndDiscard(t *testing.T) {
	svc, store := newCartFixture(t)
	ctx := context.Background()
	id := svc.NewCartID()

	_, err := svc.AddItem(ctx, id, "phone", "")
	require.NoError(t, err)
	snapshot, err := store.Snapshot(id)
	require.NoError(t, err)

	other := svc.NewCartID()
	view, err := svc.Restore(other, snapshot)
	require.NoError(t, err)
	assert.Equal(t, "250000", view.Total.String())

	_, err = svc.Restore(other, []byte("{not json"))
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	svc.Discard(id)
	assert.Zero(t, svc.GetCart(id).ItemCount)
	assert.Equal(t, 1, svc.GetCart(other).ItemCount)
}
