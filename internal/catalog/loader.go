package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/boutiq-shop/checkout-service/internal/config"
	"github.com/boutiq-shop/checkout-service/internal/models"
	"github.com/boutiq-shop/checkout-service/internal/repository"
)

// Loader populates the product catalog from the remote product feed.
// The order flow only ever reads the result.
type Loader struct {
	url        string
	httpClient *http.Client
	products   repository.ProductRepository
	logger     *slog.Logger
}

func NewLoader(cfg config.CatalogConfig, products repository.ProductRepository, logger *slog.Logger) *Loader {
	return &Loader{
		url: cfg.ProductsURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		products: products,
		logger:   logger,
	}
}

type feedProduct struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	InStock     bool    `json:"in_stock"`
	Weight      int64   `json:"weight"`
	Image       string  `json:"image"`
}

type feedBody struct {
	Products []feedProduct `json:"products"`
}

// Load fetches the feed and replaces the stored catalog. A failure
// leaves the previously loaded catalog untouched.
func (l *Loader) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch product feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("product feed returned status %d", resp.StatusCode)
	}

	var body feedBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode product feed: %w", err)
	}

	products := make([]models.Product, 0, len(body.Products))
	for _, p := range body.Products {
		products = append(products, models.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.NewFromFloat(p.Price),
			InStock:     p.InStock,
			Weight:      p.Weight,
			Image:       p.Image,
		})
	}

	if err := l.products.ReplaceAll(ctx, products); err != nil {
		return fmt.Errorf("store catalog: %w", err)
	}

	l.logger.Info("Catalog loaded", "count", len(products), "url", l.url)
	return nil
}
