// Package payments wraps stripe-go for the marketplace's charge flow.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Client is the contract the request lifecycle uses to collect payment
// for an accepted offer.
type Client interface {
	Charge(ctx context.Context, amount float64, paymentMethodID string) (string, error)
}

// StripeClient is a thin wrapper around stripe-go PaymentIntents.
type StripeClient struct {
	currency string
}

// NewStripeClient configures the package-level stripe key and returns a client.
func NewStripeClient(apiKey, currency string) *StripeClient {
	stripe.Key = apiKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeClient{currency: currency}
}

// Charge creates and immediately confirms a PaymentIntent for the given
// amount (in the configured currency's major unit). It returns the
// PaymentIntent ID on success.
func (s *StripeClient) Charge(_ context.Context, amount float64, paymentMethodID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(amount * 100)),
		Currency:      stripe.String(s.currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("payments: create intent: %w", err)
	}
	return pi.ID, nil
}
