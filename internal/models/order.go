package models

import "github.com/shopspring/decimal"

// Order is a single checkout transaction for one product line item.
// The line item is fixed at creation, the customer block is set exactly
// once by the customer-info update, and the payment block is set exactly
// once when the gateway accepts the charge.
type Order struct {
	ID        int64
	ProductID int64
	Quantity  int

	TotalPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPriceTax decimal.Decimal

	Email              string
	ShippingCountry    string
	ShippingAddress    string
	ShippingPostalCode string
	ShippingCity       string
	ShippingProvince   string

	Paid                      bool
	CreditCardName            string
	CreditCardFirstDigits     string
	CreditCardLastDigits      string
	CreditCardExpirationYear  int
	CreditCardExpirationMonth int
	TransactionID             string
	TransactionSuccess        bool
	TransactionAmountCharged  int64
}

// HasCustomerInfo reports whether the all-or-nothing customer block has
// been set.
func (o *Order) HasCustomerInfo() bool {
	return o.Email != "" &&
		o.ShippingCountry != "" &&
		o.ShippingAddress != "" &&
		o.ShippingPostalCode != "" &&
		o.ShippingCity != "" &&
		o.ShippingProvince != ""
}

// ShippingInformation groups the customer shipping fields for the API.
type ShippingInformation struct {
	Country    string `json:"country"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Province   string `json:"province"`
}

// CreditCardSummary is the masked card block returned by the gateway.
type CreditCardSummary struct {
	Name            string `json:"name"`
	FirstDigits     string `json:"first_digits"`
	LastDigits      string `json:"last_digits"`
	ExpirationYear  int    `json:"expiration_year"`
	ExpirationMonth int    `json:"expiration_month"`
}

// Transaction is the gateway transaction block.
type Transaction struct {
	ID            string `json:"id"`
	Success       bool   `json:"success"`
	AmountCharged int64  `json:"amount_charged"`
}

// ProductRef is the line-item reference embedded in order responses.
type ProductRef struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// OrderView is the wire representation of an Order. The three nested
// objects serialize as {} until their phase has completed, and email is
// null until the customer block is set.
type OrderView struct {
	ID                  int64      `json:"id"`
	Product             ProductRef `json:"product"`
	TotalPrice          float64    `json:"total_price"`
	TotalPriceTax       float64    `json:"total_price_tax"`
	ShippingPrice       float64    `json:"shipping_price"`
	Email               *string    `json:"email"`
	Paid                bool       `json:"paid"`
	ShippingInformation any        `json:"shipping_information"`
	CreditCard          any        `json:"credit_card"`
	Transaction         any        `json:"transaction"`
}

func (o *Order) View() OrderView {
	v := OrderView{
		ID:                  o.ID,
		Product:             ProductRef{ID: o.ProductID, Quantity: o.Quantity},
		TotalPrice:          o.TotalPrice.InexactFloat64(),
		TotalPriceTax:       o.TotalPriceTax.InexactFloat64(),
		ShippingPrice:       o.ShippingPrice.InexactFloat64(),
		Paid:                o.Paid,
		ShippingInformation: struct{}{},
		CreditCard:          struct{}{},
		Transaction:         struct{}{},
	}

	if o.HasCustomerInfo() {
		email := o.Email
		v.Email = &email
		v.ShippingInformation = ShippingInformation{
			Country:    o.ShippingCountry,
			Address:    o.ShippingAddress,
			PostalCode: o.ShippingPostalCode,
			City:       o.ShippingCity,
			Province:   o.ShippingProvince,
		}
	}

	if o.Paid {
		v.CreditCard = CreditCardSummary{
			Name:            o.CreditCardName,
			FirstDigits:     o.CreditCardFirstDigits,
			LastDigits:      o.CreditCardLastDigits,
			ExpirationYear:  o.CreditCardExpirationYear,
			ExpirationMonth: o.CreditCardExpirationMonth,
		}
		v.Transaction = Transaction{
			ID:            o.TransactionID,
			Success:       o.TransactionSuccess,
			AmountCharged: o.TransactionAmountCharged,
		}
	}

	return v
}
