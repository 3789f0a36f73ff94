package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/boutiq-shop/checkout-service/internal/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *slog.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, logger: logger}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) (int64, error) {
	query := `
		INSERT INTO orders (
			product_id, quantity, total_price, shipping_price, total_price_tax, paid
		) VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		order.ProductID,
		order.Quantity,
		order.TotalPrice,
		order.ShippingPrice,
		order.TotalPriceTax,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to create order", "product_id", order.ProductID, "error", err)
		return 0, err
	}

	order.ID = id
	r.logger.Info("Order created", "order_id", id, "product_id", order.ProductID)
	return id, nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `
		SELECT id, product_id, quantity, total_price, shipping_price, total_price_tax,
		       email, shipping_country, shipping_address, shipping_postal_code,
		       shipping_city, shipping_province,
		       paid, credit_card_name, credit_card_first_digits, credit_card_last_digits,
		       credit_card_expiration_year, credit_card_expiration_month,
		       transaction_id, transaction_success, transaction_amount_charged
		FROM orders
		WHERE id = $1
	`

	var order models.Order
	var email, country, address, postalCode, city, province sql.NullString
	var cardName, firstDigits, lastDigits, txnID sql.NullString
	var expYear, expMonth, amountCharged sql.NullInt64
	var txnSuccess sql.NullBool

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.ProductID,
		&order.Quantity,
		&order.TotalPrice,
		&order.ShippingPrice,
		&order.TotalPriceTax,
		&email,
		&country,
		&address,
		&postalCode,
		&city,
		&province,
		&order.Paid,
		&cardName,
		&firstDigits,
		&lastDigits,
		&expYear,
		&expMonth,
		&txnID,
		&txnSuccess,
		&amountCharged,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch order", "order_id", id, "error", err)
		return nil, err
	}

	order.Email = email.String
	order.ShippingCountry = country.String
	order.ShippingAddress = address.String
	order.ShippingPostalCode = postalCode.String
	order.ShippingCity = city.String
	order.ShippingProvince = province.String
	order.CreditCardName = cardName.String
	order.CreditCardFirstDigits = firstDigits.String
	order.CreditCardLastDigits = lastDigits.String
	order.CreditCardExpirationYear = int(expYear.Int64)
	order.CreditCardExpirationMonth = int(expMonth.Int64)
	order.TransactionID = txnID.String
	order.TransactionSuccess = txnSuccess.Bool
	order.TransactionAmountCharged = amountCharged.Int64

	return &order, nil
}

func (r *PostgresOrderRepository) SetCustomerInfo(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET email = $2, shipping_country = $3, shipping_address = $4,
		    shipping_postal_code = $5, shipping_city = $6, shipping_province = $7,
		    shipping_price = $8, total_price_tax = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.Email,
		order.ShippingCountry,
		order.ShippingAddress,
		order.ShippingPostalCode,
		order.ShippingCity,
		order.ShippingProvince,
		order.ShippingPrice,
		order.TotalPriceTax,
	)
	if err != nil {
		r.logger.Error("Failed to set customer info", "order_id", order.ID, "error", err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	r.logger.Info("Customer info set", "order_id", order.ID, "province", order.ShippingProvince)
	return nil
}

func (r *PostgresOrderRepository) MarkPaid(ctx context.Context, order *models.Order) error {
	// paid = FALSE in the predicate closes the double-payment race:
	// of two concurrent attempts only one affects a row.
	query := `
		UPDATE orders
		SET paid = TRUE,
		    credit_card_name = $2, credit_card_first_digits = $3,
		    credit_card_last_digits = $4, credit_card_expiration_year = $5,
		    credit_card_expiration_month = $6,
		    transaction_id = $7, transaction_success = $8, transaction_amount_charged = $9
		WHERE id = $1 AND paid = FALSE
	`

	result, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.CreditCardName,
		order.CreditCardFirstDigits,
		order.CreditCardLastDigits,
		order.CreditCardExpirationYear,
		order.CreditCardExpirationMonth,
		order.TransactionID,
		order.TransactionSuccess,
		order.TransactionAmountCharged,
	)
	if err != nil {
		r.logger.Error("Failed to mark order paid", "order_id", order.ID, "error", err)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyPaid
	}

	order.Paid = true
	r.logger.Info("Order marked paid", "order_id", order.ID, "transaction_id", order.TransactionID)
	return nil
}
