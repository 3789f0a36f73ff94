package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/boutiq-shop/checkout-service/internal/apperrors"
)

type createOrderRequest struct {
	Product *struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	} `json:"product"`
}

// CreateOrder handles POST /order. On success it redirects to the new
// order's resource rather than returning a body.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Product == nil {
		handleError(c, h.logger, apperrors.ProductMissingFields())
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.Product.ID, req.Product.Quantity)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/order/%d", order.ID))
}

// GetOrder handles GET /order/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, h.logger, apperrors.OrderNotFound())
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order.View()})
}

// UpdateOrder handles PUT /order/:id. The body decides whether this is
// a customer-info update or a payment attempt, so the raw payload is
// passed through to the service untouched.
func (h *Handlers) UpdateOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		handleError(c, h.logger, apperrors.OrderNotFound())
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		handleError(c, h.logger, apperrors.OrderMissingFields())
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, body)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order.View()})
}
