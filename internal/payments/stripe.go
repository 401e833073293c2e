package payments

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Intent is the slice of a payment-intent the booking flow cares about: the
// gateway id and the client secret handed to the frontend.
type Intent struct {
	ID           string
	ClientSecret string
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount float64, receiptEmail string, bookingID int64) (*Intent, error)
}

type StripeGateway struct {
	api      *client.API
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{api: api, currency: currency}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount float64, receiptEmail string, bookingID int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	params.AddMetadata("booking_id", strconv.FormatInt(bookingID, 10))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

var _ Gateway = (*StripeGateway)(nil)
