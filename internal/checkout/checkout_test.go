package checkout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stripe/stripe-go/v76"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		major float64
		want  int64
	}{
		{500, 50000},
		{19.99, 1999},
		{0.29, 29},
		{1.005, 101},
		{1250.5, 125050},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.major), func(t *testing.T) {
			if got := ToMinorUnits(tt.major); got != tt.want {
				t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.major, got, tt.want)
			}
		})
	}
}

func TestBuildSessionParams(t *testing.T) {
	cfg := Config{
		Currency:   "usd",
		SuccessURL: "https://site.test/ok?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://site.test/cancel",
	}
	req := SessionRequest{
		ItemName:      "Wedding Stage",
		ItemImage:     "https://img.test/stage.png",
		CustomerEmail: "alice@example.com",
		UnitAmount:    50000,
		Metadata:      map[string]string{MetaBookingID: "b1", MetaTrackingID: "STYLE-X-Y"},
	}

	p := buildSessionParams(cfg, req)

	if *p.Mode != string(stripe.CheckoutSessionModePayment) {
		t.Errorf("mode = %q", *p.Mode)
	}
	if *p.SuccessURL != cfg.SuccessURL || *p.CancelURL != cfg.CancelURL {
		t.Errorf("redirects = %q %q", *p.SuccessURL, *p.CancelURL)
	}
	if *p.CustomerEmail != "alice@example.com" {
		t.Errorf("customer email = %q", *p.CustomerEmail)
	}
	if len(p.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1", len(p.LineItems))
	}
	item := p.LineItems[0]
	if *item.Quantity != 1 {
		t.Errorf("quantity = %d", *item.Quantity)
	}
	if *item.PriceData.UnitAmount != 50000 || *item.PriceData.Currency != "usd" {
		t.Errorf("price = %d %s", *item.PriceData.UnitAmount, *item.PriceData.Currency)
	}
	if *item.PriceData.ProductData.Name != "Wedding Stage" {
		t.Errorf("product name = %q", *item.PriceData.ProductData.Name)
	}
	if len(item.PriceData.ProductData.Images) != 1 {
		t.Errorf("images = %d, want 1", len(item.PriceData.ProductData.Images))
	}
	if p.Metadata[MetaBookingID] != "b1" || p.Metadata[MetaTrackingID] != "STYLE-X-Y" {
		t.Errorf("metadata = %v", p.Metadata)
	}
}

func TestBuildSessionParamsWithoutImage(t *testing.T) {
	p := buildSessionParams(Config{Currency: "usd"}, SessionRequest{ItemName: "x", UnitAmount: 1})
	if imgs := p.LineItems[0].PriceData.ProductData.Images; imgs != nil {
		t.Errorf("images = %v, want nil", imgs)
	}
	if p.CustomerEmail != nil {
		t.Errorf("customer email set without input")
	}
}

func TestFromStripe(t *testing.T) {
	s := &stripe.CheckoutSession{
		ID:              "cs_test_1",
		URL:             "https://checkout.test/cs_test_1",
		PaymentIntent:   &stripe.PaymentIntent{ID: "pi_1"},
		PaymentStatus:   stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:     50000,
		Currency:        stripe.CurrencyUSD,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{Email: "alice@example.com"},
		Metadata:        map[string]string{MetaBookingID: "b1"},
	}

	got := fromStripe(s)
	if got.ID != "cs_test_1" || got.PaymentIntent != "pi_1" || got.PaymentStatus != PaymentStatusPaid {
		t.Errorf("session = %+v", got)
	}
	if got.AmountTotal != 50000 || got.Currency != "usd" {
		t.Errorf("amount = %d %s", got.AmountTotal, got.Currency)
	}
	if got.CustomerEmail != "alice@example.com" {
		t.Errorf("customer email = %q", got.CustomerEmail)
	}
	if got.Metadata[MetaBookingID] != "b1" {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestFromStripeUnpaid(t *testing.T) {
	got := fromStripe(&stripe.CheckoutSession{ID: "cs_2", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid})
	if got.PaymentIntent != "" {
		t.Errorf("payment intent = %q, want empty", got.PaymentIntent)
	}
	if got.Metadata == nil {
		t.Error("metadata should never be nil")
	}
}

func TestIsSuccessful(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"not found", &stripe.Error{HTTPStatusCode: 404}, true},
		{"wrapped bad request", fmt.Errorf("x: %w", &stripe.Error{HTTPStatusCode: 400}), true},
		{"server error", &stripe.Error{HTTPStatusCode: 500}, false},
		{"transport", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSuccessful(tt.err); got != tt.want {
				t.Errorf("isSuccessful = %v, want %v", got, tt.want)
			}
		})
	}
}
