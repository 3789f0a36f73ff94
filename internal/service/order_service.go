package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boutiq-shop/checkout-service/internal/apperrors"
	"github.com/boutiq-shop/checkout-service/internal/clients"
	"github.com/boutiq-shop/checkout-service/internal/config"
	"github.com/boutiq-shop/checkout-service/internal/events"
	"github.com/boutiq-shop/checkout-service/internal/metrics"
	"github.com/boutiq-shop/checkout-service/internal/models"
	"github.com/boutiq-shop/checkout-service/internal/pricing"
	"github.com/boutiq-shop/checkout-service/internal/repository"
)

// OrderService owns the order lifecycle: creation against the catalog,
// the one-shot customer-info update with price recomputation, and the
// payment attempt against the remote gateway.
type OrderService struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	cache     repository.OrderCache
	gateway   clients.PaymentGateway
	publisher events.OrderEventPublisher
	metrics   *metrics.Metrics
	features  config.FeatureFlags
	logger    *slog.Logger
}

func NewOrderService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	cache repository.OrderCache,
	gateway clients.PaymentGateway,
	publisher events.OrderEventPublisher,
	m *metrics.Metrics,
	features config.FeatureFlags,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		products:  products,
		orders:    orders,
		cache:     cache,
		gateway:   gateway,
		publisher: publisher,
		metrics:   m,
		features:  features,
		logger:    logger,
	}
}

// ListProducts returns the full catalog.
func (s *OrderService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

// CreateOrder creates an order for a single product line item. The
// product must exist and be in stock, and the quantity must be at least
// one. Pricing that depends on the destination province is finalized
// later by the customer-info update.
func (s *OrderService) CreateOrder(ctx context.Context, productID int64, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, apperrors.ProductMissingFields()
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.OutOfInventory()
		}
		return nil, err
	}
	if !product.InStock {
		return nil, apperrors.OutOfInventory()
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)

	order := &models.Order{
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: total,
		// Until the destination province is known, the total carries no tax.
		TotalPriceTax: total,
	}

	if shipping, err := pricing.ShippingPrice(product.Weight * int64(quantity)); err == nil {
		order.ShippingPrice = shipping
	}

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	order.ID = id

	s.metrics.OrdersCreated.Inc()
	s.logger.Info("Order created", "order_id", id, "product_id", productID, "quantity", quantity)

	if s.features.EnableOrderCaching {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("Failed to cache order", "order_id", id, "error", err)
		}
	}

	if s.features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Warn("Failed to publish order created event", "order_id", id, "error", err)
		}
	}

	return order, nil
}

// GetOrder fetches an order, serving from cache when enabled.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if s.features.EnableOrderCaching {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Cache lookup failed", "order_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.OrderNotFound()
		}
		return nil, err
	}

	if s.features.EnableOrderCaching {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("Failed to cache order", "order_id", id, "error", err)
		}
	}

	return order, nil
}

// UpdateOrder applies a PUT body to an order: either the customer-info
// update or a payment attempt, decided by the payload shape. The order
// is resolved before the payload is inspected, so an unknown order is
// always not-found regardless of how malformed the body is.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, body []byte) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.OrderNotFound()
		}
		return nil, err
	}

	orderRaw, cardRaw, err := SplitUpdateRequest(body)
	if err != nil {
		return nil, err
	}

	if orderRaw != nil {
		return s.updateCustomerInfo(ctx, order, orderRaw)
	}
	return s.applyPayment(ctx, order, cardRaw)
}

// updateCustomerInfo sets the customer block and recomputes shipping
// and the tax-inclusive total for the destination province. Pricing
// failures (unknown province, unpriceable weight) degrade rather than
// reject: the order keeps an untaxed total and zero shipping.
func (s *OrderService) updateCustomerInfo(ctx context.Context, order *models.Order, raw []byte) (*models.Order, error) {
	if order.Paid {
		return nil, apperrors.AlreadyPaid()
	}

	update, err := ParseCustomerInfo(raw)
	if err != nil {
		return nil, err
	}

	order.Email = update.Email
	order.ShippingCountry = update.Shipping.Country
	order.ShippingAddress = update.Shipping.Address
	order.ShippingPostalCode = update.Shipping.PostalCode
	order.ShippingCity = update.Shipping.City
	order.ShippingProvince = update.Shipping.Province

	product, err := s.products.GetByID(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}

	order.ShippingPrice = decimal.Zero
	if shipping, err := pricing.ShippingPrice(product.Weight * int64(order.Quantity)); err == nil {
		order.ShippingPrice = shipping
	} else {
		s.logger.Warn("Shipping price unavailable", "order_id", order.ID, "error", err)
	}

	subtotal := order.TotalPrice.Add(order.ShippingPrice)
	order.TotalPriceTax = subtotal
	if total, err := pricing.TotalWithTax(subtotal, order.ShippingProvince); err == nil {
		order.TotalPriceTax = total
	} else {
		s.logger.Warn("Tax computation unavailable",
			"order_id", order.ID,
			"province", order.ShippingProvince,
			"error", err,
		)
	}

	if err := s.orders.SetCustomerInfo(ctx, order); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.OrderNotFound()
		}
		return nil, err
	}

	s.invalidateCache(ctx, order.ID)
	s.logger.Info("Customer info set", "order_id", order.ID, "province", order.ShippingProvince)

	return order, nil
}

// applyPayment charges the card and persists the payment block. An
// order that is already paid, or that has no customer info yet, is
// rejected before the gateway is ever contacted.
func (s *OrderService) applyPayment(ctx context.Context, order *models.Order, raw []byte) (*models.Order, error) {
	if order.Paid {
		s.metrics.PaymentAttempts.WithLabelValues("rejected").Inc()
		return nil, apperrors.AlreadyPaid()
	}
	if !order.HasCustomerInfo() {
		s.metrics.PaymentAttempts.WithLabelValues("rejected").Inc()
		return nil, apperrors.CustomerInfoRequired()
	}

	update, err := ParseCreditCard(raw)
	if err != nil {
		s.metrics.PaymentAttempts.WithLabelValues("rejected").Inc()
		return nil, err
	}

	amount := order.TotalPriceTax.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	req := &clients.ChargeRequest{
		CreditCard:    update.Card,
		AmountCharged: amount,
	}

	start := time.Now()
	outcome, err := s.gateway.Charge(ctx, req)
	s.metrics.GatewayDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.PaymentAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	if outcome.Decline != nil {
		s.metrics.PaymentAttempts.WithLabelValues("declined").Inc()
		s.logger.Info("Payment declined", "order_id", order.ID, "code", outcome.Decline.Code)
		return nil, apperrors.Decline(outcome.Decline.Domain, outcome.Decline.Code, outcome.Decline.Name)
	}

	success := outcome.Success
	order.Paid = true
	order.CreditCardName = success.CreditCard.Name
	order.CreditCardFirstDigits = success.CreditCard.FirstDigits
	order.CreditCardLastDigits = success.CreditCard.LastDigits
	order.CreditCardExpirationYear = success.CreditCard.ExpirationYear
	order.CreditCardExpirationMonth = success.CreditCard.ExpirationMonth
	order.TransactionID = success.Transaction.ID
	order.TransactionSuccess = success.Transaction.Success
	order.TransactionAmountCharged = success.Transaction.AmountCharged

	if err := s.orders.MarkPaid(ctx, order); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyPaid):
			s.metrics.PaymentAttempts.WithLabelValues("rejected").Inc()
			return nil, apperrors.AlreadyPaid()
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.OrderNotFound()
		default:
			return nil, err
		}
	}

	s.metrics.PaymentAttempts.WithLabelValues("success").Inc()
	s.invalidateCache(ctx, order.ID)
	s.logger.Info("Order paid",
		"order_id", order.ID,
		"transaction_id", order.TransactionID,
		"amount_charged", order.TransactionAmountCharged,
	)

	if s.features.EnableOrderEvents {
		if err := s.publisher.PublishOrderPaid(ctx, order); err != nil {
			s.logger.Warn("Failed to publish order paid event", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}

func (s *OrderService) invalidateCache(ctx context.Context, id int64) {
	if !s.features.EnableOrderCaching {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate cached order", "order_id", id, "error", err)
	}
}
