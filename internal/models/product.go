package models

import "github.com/shopspring/decimal"

// Product is a catalog entry. The catalog is loaded from the remote
// product feed and is read-only to the order flow.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"-"`
	InStock     bool            `json:"in_stock"`
	Weight      int64           `json:"weight"`
	Image       string          `json:"image"`
}

// ProductView is the wire representation of a Product.
type ProductView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	InStock     bool    `json:"in_stock"`
	Weight      int64   `json:"weight"`
	Image       string  `json:"image"`
}

func (p *Product) View() ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		InStock:     p.InStock,
		Weight:      p.Weight,
		Image:       p.Image,
	}
}
