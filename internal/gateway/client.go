// Package gateway – Client
//
// This file wraps the official Razorpay SDK for the payment-link operations
// the backend needs: create and cancel. Amounts cross this boundary in the
// gateway's minor units (paise); the caller converts from major units.
package gateway

import (
	"encoding/json"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/roseate/go-payments-backend/internal/config"
)

// Link is the subset of the gateway's payment-link entity the backend stores.
type Link struct {
	ID       string
	ShortURL string
}

// CreateLinkParams describes one payment link to issue. Amount is in major
// currency units. Notes travel with the link and come back on every webhook
// for it; Info carries the JSON-encoded purchase intent reconciliation needs.
type CreateLinkParams struct {
	Amount        float64
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	HotelID       string
	ReservationID string
	Info          string
	Source        string
}

// Client issues payment-link calls against the gateway.
type Client struct {
	rz          *razorpay.Client
	callbackURL string
}

// NewClient constructs a Client from the gateway credentials.
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		rz:          razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		callbackURL: cfg.CallbackURL,
	}
}

// CreatePaymentLink creates a hosted payment link and returns its gateway id
// and shareable URL. Customer notifications are enabled per channel only when
// the corresponding contact detail is present.
func (c *Client) CreatePaymentLink(p CreateLinkParams) (*Link, error) {
	data := map[string]interface{}{
		"amount":          int64(math.Round(p.Amount * 100)), // paise
		"currency":        p.Currency,
		"description":     p.Description,
		"reminder_enable": true,
		"customer": map[string]interface{}{
			"name":    p.CustomerName,
			"email":   p.CustomerEmail,
			"contact": p.CustomerPhone,
		},
		"notify": map[string]interface{}{
			"sms":   p.CustomerPhone != "",
			"email": p.CustomerEmail != "",
		},
		"notes": map[string]interface{}{
			"hotelId":       p.HotelID,
			"reservationId": p.ReservationID,
			"info":          p.Info,
			"source":        p.Source,
		},
	}
	if c.callbackURL != "" {
		data["callback_url"] = c.callbackURL
		data["callback_method"] = "get"
	}

	body, err := c.rz.PaymentLink.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: create payment link: %w", err)
	}
	return linkFromResponse(body)
}

// CancelPaymentLink cancels a payment link on the gateway side.
func (c *Client) CancelPaymentLink(paymentLinkID string) error {
	if _, err := c.rz.PaymentLink.Cancel(paymentLinkID, nil, nil); err != nil {
		return fmt.Errorf("gateway: cancel payment link: %w", err)
	}
	return nil
}

// linkFromResponse extracts the fields we persist from the SDK's map body.
func linkFromResponse(body map[string]interface{}) (*Link, error) {
	id, _ := body["id"].(string)
	shortURL, _ := body["short_url"].(string)
	if id == "" {
		raw, _ := json.Marshal(body)
		return nil, fmt.Errorf("gateway: unexpected payment link response: %s", raw)
	}
	return &Link{ID: id, ShortURL: shortURL}, nil
}
