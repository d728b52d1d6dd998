// Package checkout opens and retrieves hosted checkout sessions with the
// payment provider.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Metadata keys written on every session. They round-trip on retrieval and
// are the only link from a session back to its booking.
const (
	MetaBookingID   = "bookingId"
	MetaTrackingID  = "trakingId"
	MetaPackageID   = "packageId"
	MetaServiceName = "service_name"
)

// PaymentStatusPaid is the provider's payment_status for a settled session.
const PaymentStatusPaid = "paid"

// SessionRequest describes a single-item checkout.
type SessionRequest struct {
	ItemName      string
	ItemImage     string
	CustomerEmail string
	// UnitAmount is in the currency's minor unit.
	UnitAmount int64
	Metadata   map[string]string
}

// Session is the provider-neutral view of a checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentIntent string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// Config holds the provider credentials and redirect targets.
type Config struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// StripeGateway talks to Stripe Checkout through a circuit breaker.
type StripeGateway struct {
	client *session.Client
	cfg    Config
	cb     *gobreaker.CircuitBreaker
}

// NewStripeGateway constructs a StripeGateway with its own API client.
func NewStripeGateway(cfg Config, log logrus.FieldLogger) *StripeGateway {
	return &StripeGateway{
		client: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.SecretKey},
		cfg:    cfg,
		cb:     newBreaker("stripe-checkout", log),
	}
}

// CreateSession opens a payment-mode session for one item.
func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := buildSessionParams(g.cfg, req)
	params.Context = ctx

	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.client.New(params)
	})
	if err != nil {
		return Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	return fromStripe(out.(*stripe.CheckoutSession)), nil
}

// RetrieveSession fetches a session by id.
func (g *StripeGateway) RetrieveSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.client.Get(id, params)
	})
	if err != nil {
		return Session{}, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return fromStripe(out.(*stripe.CheckoutSession)), nil
}

// ToMinorUnits converts a major-unit amount to the provider's integer minor
// unit, rounding half away from zero.
func ToMinorUnits(major float64) int64 {
	return decimal.NewFromFloat(major).Shift(2).Round(0).IntPart()
}

func buildSessionParams(cfg Config, req SessionRequest) *stripe.CheckoutSessionParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ItemName),
	}
	if req.ItemImage != "" {
		product.Images = []*string{stripe.String(req.ItemImage)}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(cfg.Currency),
				UnitAmount:  stripe.Int64(req.UnitAmount),
				ProductData: product,
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(cfg.SuccessURL),
		CancelURL:  stripe.String(cfg.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

func fromStripe(s *stripe.CheckoutSession) Session {
	out := Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		CustomerEmail: s.CustomerEmail,
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntent = s.PaymentIntent.ID
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

func newBreaker(name string, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
		IsSuccessful: isSuccessful,
	})
}

// isSuccessful keeps request errors (bad session id, invalid params) from
// tripping the breaker; only transport and 5xx failures count.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500
}
