package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boutiq-shop/checkout-service/internal/apperrors"
	"github.com/boutiq-shop/checkout-service/internal/config"
	"github.com/boutiq-shop/checkout-service/internal/service"
)

// Handlers holds all HTTP handlers for the checkout service.
type Handlers struct {
	orderService *service.OrderService
	config       *config.Config
	logger       *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(orderService *service.OrderService, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		orderService: orderService,
		config:       cfg,
		logger:       logger,
	}
}

// handleError renders an error as {"errors": {<domain>: {"code", "name"}}}
// with the error's own status. Anything outside the domain vocabulary is
// an internal error.
func handleError(c *gin.Context, logger *slog.Logger, err error) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.Status, gin.H{
			"errors": gin.H{
				appErr.Domain: gin.H{
					"code": appErr.Code,
					"name": appErr.Name,
				},
			},
		})
		return
	}

	logger.Error("Unhandled error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
