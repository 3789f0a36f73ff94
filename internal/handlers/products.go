package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boutiq-shop/checkout-service/internal/models"
)

// ListProducts handles GET /
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.orderService.ListProducts(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, p.View())
	}

	c.JSON(http.StatusOK, gin.H{"products": views})
}
