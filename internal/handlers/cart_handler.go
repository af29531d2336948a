package handlers

import (
	"vendicraft/internal/models"
	"vendicraft/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler exposes the shopper's cart and its checkout.
type CartHandler struct {
	carts    *services.CartService
	checkout *services.CheckoutService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, checkout *services.CheckoutService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkout,
		validate: validator.New(),
		logger:   orNop(logger),
	}
}

// RegisterRoutes registers the cart routes. Carts are anonymous and
// addressed by the ID handed out on creation.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:id", h.HandleGetCart)
	cartRoutes.Put("/:id", h.HandleRestoreCart)
	cartRoutes.Delete("/:id", h.HandleDiscardCart)
	cartRoutes.Get("/:id/snapshot", h.HandleSnapshot)
	cartRoutes.Post("/:id/items", h.HandleAddItem)
	cartRoutes.Patch("/:id/items/:productId", h.HandleSetQuantity)
	cartRoutes.Delete("/:id/items/:productId", h.HandleRemoveItem)
	cartRoutes.Post("/:id/checkout", h.HandleCheckout)
}

// HandleCreateCart hands out a fresh cart ID.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	id := h.carts.NewCartID()
	return c.Status(fiber.StatusCreated).JSON(h.carts.GetCart(id))
}

// HandleGetCart returns the cart. Unknown IDs read as empty carts.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(h.carts.GetCart(c.Params("id")))
}

// AddItemRequest represents the request body for adding a product.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size"`
}

// HandleAddItem adds one unit of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if handled, err := validate(c, h.validate, req); handled {
		return err
	}

	view, err := h.carts.AddItem(c.UserContext(), c.Params("id"), req.ProductID, req.Size)
	if err != nil {
		return failed(c, h.logger, "Could not add item to cart", err)
	}
	return c.JSON(view)
}

// HandleSetQuantity replaces a line's quantity. Zero or less removes it.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quantity is required.",
		})
	}
	return c.JSON(h.carts.SetQuantity(c.Params("id"), c.Params("productId"), *req.Quantity))
}

// HandleRemoveItem drops a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	return c.JSON(h.carts.RemoveItem(c.Params("id"), c.Params("productId")))
}

// HandleSnapshot returns the cart lines in the form HandleRestoreCart
// accepts, for clients that keep their cart across visits.
func (h *CartHandler) HandleSnapshot(c *fiber.Ctx) error {
	data, err := h.carts.Snapshot(c.Params("id"))
	if err != nil {
		return failed(c, h.logger, "Could not snapshot cart", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// HandleRestoreCart replaces the cart with a saved snapshot.
func (h *CartHandler) HandleRestoreCart(c *fiber.Ctx) error {
	view, err := h.carts.Restore(c.Params("id"), c.Body())
	if err != nil {
		return failed(c, h.logger, "Could not restore cart", err)
	}
	return c.JSON(view)
}

// HandleDiscardCart forgets the cart.
func (h *CartHandler) HandleDiscardCart(c *fiber.Ctx) error {
	h.carts.Discard(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCheckout validates the customer details, formats the order for
// WhatsApp and empties the cart.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	var customer models.CustomerInfo
	if err := c.BodyParser(&customer); err != nil {
		return badBody(c, err)
	}
	if handled, err := validate(c, h.validate, customer); handled {
		return err
	}

	result := h.checkout.Checkout(c.Params("id"), customer)
	return c.JSON(result)
}
