package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.User{}))
	return db
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// productRepoContract runs the same expectations against any ProductRepository.
func productRepoContract(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	older := &models.Product{Name: "Sac à Main", Price: 45000, InStock: true, Sizes: []string{"S", "M", "L"}, CreatedAt: base}
	newer := &models.Product{Name: "Smartphone", Price: 250000, InStock: true, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.NotEmpty(t, older.ID)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID, "newest product first")
	assert.Equal(t, []string{"S", "M", "L"}, all[1].Sizes)

	updated, err := repo.Update(ctx, older.ID, models.ProductUpdate{
		Name:    strPtr("Sac en cuir"),
		InStock: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sac en cuir", updated.Name)
	assert.False(t, updated.InStock)
	assert.Equal(t, int64(45000), updated.Price, "unset fields are kept")
	assert.Equal(t, []string{"S", "M", "L"}, updated.Sizes)

	_, err = repo.Update(ctx, "missing", models.ProductUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), repositories.ErrNotFound)
}

func TestGORMProductRepository(t *testing.T) {
	productRepoContract(t, repositories.NewGORMProductRepository(openTestDB(t)))
}

func TestMemoryProductRepository(t *testing.T) {
	productRepoContract(t, repositories.NewMemoryProductRepository())
}

func orderRepoContract(t *testing.T, repo repositories.OrderRepository) {
	ctx := context.Background()
	order := &models.Order{
		CustomerName:  "Awa Diop",
		CustomerEmail: "awa@example.com",
		TotalAmount:   545000,
		PaymentMethod: "wave",
		Status:        models.OrderStatusPending,
		PaymentStatus: "pending",
		Items: []models.OrderItem{
			{ProductID: "prod-a", Quantity: 2, Price: 250000},
			{ProductID: "prod-b", Quantity: 1, Price: 45000},
		},
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(545000), got.TotalAmount)
	require.Len(t, got.Items, 2)
	for _, item := range got.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderStatusShipped))
	got, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.OrderStatusShipped), repositories.ErrNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGORMOrderRepository(t *testing.T) {
	orderRepoContract(t, repositories.NewGORMOrderRepository(openTestDB(t)))
}

func TestMemoryOrderRepository(t *testing.T) {
	orderRepoContract(t, repositories.NewMemoryOrderRepository())
}

func userRepoContract(t *testing.T, repo repositories.UserRepository) {
	ctx := context.Background()
	user := &models.User{Username: "admin", Email: "admin@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	byName, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.Error(t, repo.Create(ctx, &models.User{Username: "admin", Email: "other@example.com", Password: "x"}))
}

func TestGORMUserRepository(t *testing.T) {
	userRepoContract(t, repositories.NewGORMUserRepository(openTestDB(t)))
}

func TestMemoryUserRepository(t *testing.T) {
	userRepoContract(t, repositories.NewMemoryUserRepository())
}
