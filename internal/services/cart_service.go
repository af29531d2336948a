package services

import (
	"context"
	"fmt"

	"vendicraft/internal/cart"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartView is the read model of a cart returned to clients.
type CartView struct {
	CartID    string          `json:"cart_id"`
	Lines     []cart.Line     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func viewOf(cartID string, c *cart.Cart) CartView {
	return CartView{
		CartID:    cartID,
		Lines:     c.Lines(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

// CartService applies shopper actions to the carts in a cart.Store.
type CartService struct {
	store    *cart.Store
	products *ProductService
	logger   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(store *cart.Store, products *ProductService, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{store: store, products: products, logger: logger}
}

// NewCartID returns an ID for a fresh cart.
func (s *CartService) NewCartID() string {
	return s.store.NewID()
}

// GetCart returns the current state of cartID.
func (s *CartService) GetCart(cartID string) CartView {
	var view CartView
	s.store.View(cartID, func(c *cart.Cart) {
		view = viewOf(cartID, c)
	})
	return view
}

// AddItem adds one unit of productID to the cart. Out-of-stock products
// are refused, and products offering sizes require one of them.
func (s *CartService) AddItem(ctx context.Context, cartID, productID, size string) (CartView, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	if !product.InStock {
		return CartView{}, invalidInput("product %s is out of stock", product.Name)
	}
	if len(product.Sizes) > 0 {
		if size == "" {
			return CartView{}, invalidInput("a size is required for %s", product.Name)
		}
		if !containsString(product.Sizes, size) {
			return CartView{}, invalidInput("size %q is not offered for %s", size, product.Name)
		}
	} else {
		size = ""
	}

	var view CartView
	_ = s.store.Update(cartID, func(c *cart.Cart) error {
		c.AddItem(*product, size)
		view = viewOf(cartID, c)
		return nil
	})
	s.logger.Debug("item added to cart", zap.String("cart_id", cartID), zap.String("product_id", productID))
	return view, nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(cartID, productID string, quantity int) CartView {
	var view CartView
	_ = s.store.Update(cartID, func(c *cart.Cart) error {
		c.SetQuantity(productID, quantity)
		view = viewOf(cartID, c)
		return nil
	})
	return view
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(cartID, productID string) CartView {
	var view CartView
	_ = s.store.Update(cartID, func(c *cart.Cart) error {
		c.RemoveItem(productID)
		view = viewOf(cartID, c)
		return nil
	})
	return view
}

// Snapshot returns the JSON form of cartID's lines, suitable for Restore.
func (s *CartService) Snapshot(cartID string) ([]byte, error) {
	data, err := s.store.Snapshot(cartID)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart %s: %w", cartID, err)
	}
	return data, nil
}

// Restore replaces cartID with the lines of a saved snapshot.
func (s *CartService) Restore(cartID string, snapshot []byte) (CartView, error) {
	if err := s.store.Restore(cartID, snapshot); err != nil {
		return CartView{}, invalidInput("%v", err)
	}
	return s.GetCart(cartID), nil
}

// Discard forgets cartID.
func (s *CartService) Discard(cartID string) {
	s.store.Discard(cartID)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
