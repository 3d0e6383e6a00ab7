// Package services implements the business logic for payment links, webhook
// processing, and PMS reconciliation. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrSignatureMismatch is returned when a webhook body fails HMAC
	// verification against the shared secret.
	ErrSignatureMismatch = errors.New("invalid webhook signature")

	// ErrMissingScope is returned when a payment-link request lacks the
	// hotel/reservation identifiers reconciliation depends on.
	ErrMissingScope = errors.New("hotelId and reservationId are required")

	// ErrInvalidAmount is returned when a payment-link amount is zero or
	// negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidCurrency is returned when a currency code is not a valid
	// ISO 4217 code.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrInvalidStatus is returned when a payment-link status filter is
	// outside the known lifecycle set.
	ErrInvalidStatus = errors.New("unknown payment link status")

	// ErrLinkNotFound indicates that the requested payment link does not
	// exist.
	ErrLinkNotFound = errors.New("payment link not found")
)
