package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain-tagged error. Handlers render it as
// {"errors": {<domain>: {"code": ..., "name": ...}}} with Status.
type Error struct {
	Domain string
	Code   string
	Name   string
	Status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Domain, e.Code, e.Name)
}

// As unwraps err into an *Error if possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

const (
	DomainOrder      = "order"
	DomainProduct    = "product"
	DomainCreditCard = "credit_card"
	DomainPayment    = "payment"
)

const (
	CodeMissingFields      = "missing-fields"
	CodeOutOfInventory     = "out-of-inventory"
	CodeNotFound           = "not-found"
	CodeAlreadyPaid        = "already-paid"
	CodeInvalidFormat      = "invalid-format"
	CodeInvalidName        = "invalid-name"
	CodeInvalidNumber      = "invalid-number"
	CodeInvalidExpiration  = "invalid-expiration"
	CodeInvalidCVV         = "invalid-cvv"
	CodeServiceError       = "service-error"
	CodeServiceUnavailable = "service-unavailable"
)

// Request validation failures. Always 422: the caller can fix and resubmit.

func ProductMissingFields() *Error {
	return &Error{
		Domain: DomainProduct,
		Code:   CodeMissingFields,
		Name:   "Order creation requires a product with a quantity of at least one",
		Status: http.StatusUnprocessableEntity,
	}
}

func OutOfInventory() *Error {
	return &Error{
		Domain: DomainProduct,
		Code:   CodeOutOfInventory,
		Name:   "The requested product is not in inventory",
		Status: http.StatusUnprocessableEntity,
	}
}

func OrderMissingFields() *Error {
	return &Error{
		Domain: DomainOrder,
		Code:   CodeMissingFields,
		Name:   "One or more mandatory fields are missing",
		Status: http.StatusUnprocessableEntity,
	}
}

func CustomerInfoRequired() *Error {
	return &Error{
		Domain: DomainOrder,
		Code:   CodeMissingFields,
		Name:   "Customer information is required before applying a credit card",
		Status: http.StatusUnprocessableEntity,
	}
}

func CreditCard(code, name string) *Error {
	return &Error{
		Domain: DomainCreditCard,
		Code:   code,
		Name:   name,
		Status: http.StatusUnprocessableEntity,
	}
}

// Business-rule conflicts.

func OrderNotFound() *Error {
	return &Error{
		Domain: DomainOrder,
		Code:   CodeNotFound,
		Name:   "The requested order could not be found",
		Status: http.StatusNotFound,
	}
}

func AlreadyPaid() *Error {
	return &Error{
		Domain: DomainOrder,
		Code:   CodeAlreadyPaid,
		Name:   "The order has already been paid",
		Status: http.StatusUnprocessableEntity,
	}
}

// Gateway failures. 5xx-equivalent, never retried by the core.

func GatewayError() *Error {
	return &Error{
		Domain: DomainPayment,
		Code:   CodeServiceError,
		Name:   "The payment service returned an unexpected response",
		Status: http.StatusBadGateway,
	}
}

func GatewayUnavailable() *Error {
	return &Error{
		Domain: DomainPayment,
		Code:   CodeServiceUnavailable,
		Name:   "The payment service could not be reached",
		Status: http.StatusServiceUnavailable,
	}
}

// Decline wraps a structured decline returned by the payment gateway.
// The payload is propagated to the caller as-is, under the gateway's
// own domain key.
func Decline(domain, code, name string) *Error {
	return &Error{
		Domain: domain,
		Code:   code,
		Name:   name,
		Status: http.StatusUnprocessableEntity,
	}
}
