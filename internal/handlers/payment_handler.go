package handlers

import (
	"vendicraft/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

// paymentCORS lets any storefront origin call the payment endpoint.
var paymentCORS = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,OPTIONS",
	AllowHeaders: "authorization, x-client-info, apikey, content-type",
}

// PaymentHandler serves the simulated payment endpoint.
type PaymentHandler struct {
	service *services.PaymentService
	logger  *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  orNop(logger),
	}
}

// RegisterRoutes registers the payment route and its CORS preflight.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments", cors.New(paymentCORS))
	paymentRoutes.Post("/", h.HandleProcessPayment)
}

// HandleProcessPayment records the order and answers with the payment URL.
// Every failure, an unreadable body included, is reported as a 500 with
// success=false.
func (h *PaymentHandler) HandleProcessPayment(c *fiber.Ctx) error {
	var req services.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return h.paymentFailed(c, err)
	}

	result, err := h.service.ProcessPayment(c.UserContext(), req)
	if err != nil {
		return h.paymentFailed(c, err)
	}
	return c.JSON(result)
}

func (h *PaymentHandler) paymentFailed(c *fiber.Ctx, err error) error {
	h.logger.Error("payment processing error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
