package services

import (
	"vendicraft/internal/cart"
	"vendicraft/internal/models"
	"vendicraft/internal/whatsapp"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutResult is what the shopper needs to hand the order over.
type CheckoutResult struct {
	WhatsAppURL string          `json:"whatsapp_url"`
	Message     string          `json:"message"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// CheckoutService turns a cart into a pre-filled WhatsApp order message.
type CheckoutService struct {
	store       *cart.Store
	formatter   *whatsapp.Formatter
	ownerNumber string
	logger      *zap.Logger
}

// NewCheckoutService creates a new CheckoutService sending orders to
// ownerNumber.
func NewCheckoutService(store *cart.Store, formatter *whatsapp.Formatter, ownerNumber string, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		store:       store,
		formatter:   formatter,
		ownerNumber: ownerNumber,
		logger:      logger,
	}
}

// Checkout formats the order for cartID and discards the cart. Empty carts
// are not refused here.
func (s *CheckoutService) Checkout(cartID string, customer models.CustomerInfo) CheckoutResult {
	c := s.store.Take(cartID)
	lines, total, count := c.Lines(), c.Total(), c.ItemCount()

	encoded := s.formatter.Encode(lines, customer, total)
	result := CheckoutResult{
		WhatsAppURL: whatsapp.DeepLink(s.ownerNumber, encoded),
		Message:     s.formatter.Message(lines, customer, total),
		Total:       total,
		ItemCount:   count,
	}

	s.logger.Info("order handed over to WhatsApp",
		zap.String("cart_id", cartID),
		zap.Int("items", count),
		zap.String("total", total.String()))
	return result
}
