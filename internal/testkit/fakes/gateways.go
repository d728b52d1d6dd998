package fakes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Shivanand-hulikatti/styledecor/internal/checkout"
	"github.com/Shivanand-hulikatti/styledecor/internal/identity"
)

// ErrGatewayDown is returned by Gateway while Down is set.
var ErrGatewayDown = errors.New("gateway unavailable")

// Gateway is an in-memory checkout provider. Sessions start unpaid; Pay
// settles one.
type Gateway struct {
	mu       sync.Mutex
	Sessions map[string]checkout.Session
	Requests []checkout.SessionRequest
	Down     bool
	next     int
}

// NewGateway constructs an empty Gateway.
func NewGateway() *Gateway {
	return &Gateway{Sessions: make(map[string]checkout.Session)}
}

func (g *Gateway) CreateSession(_ context.Context, req checkout.SessionRequest) (checkout.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return checkout.Session{}, ErrGatewayDown
	}
	g.next++
	meta := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}
	s := checkout.Session{
		ID:            fmt.Sprintf("cs_test_%d", g.next),
		PaymentStatus: "unpaid",
		AmountTotal:   req.UnitAmount,
		Currency:      "usd",
		CustomerEmail: req.CustomerEmail,
		Metadata:      meta,
	}
	s.URL = "https://checkout.test/pay/" + s.ID
	g.Sessions[s.ID] = s
	g.Requests = append(g.Requests, req)
	return s, nil
}

func (g *Gateway) RetrieveSession(_ context.Context, id string) (checkout.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Down {
		return checkout.Session{}, ErrGatewayDown
	}
	s, ok := g.Sessions[id]
	if !ok {
		return checkout.Session{}, fmt.Errorf("no such checkout session: %s", id)
	}
	return s, nil
}

// Pay marks a session paid under paymentIntent.
func (g *Gateway) Pay(id, paymentIntent string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.Sessions[id]
	s.PaymentStatus = checkout.PaymentStatusPaid
	s.PaymentIntent = paymentIntent
	g.Sessions[id] = s
}

// Put stores a session as given.
func (g *Gateway) Put(s checkout.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sessions[s.ID] = s
}

// Verifier accepts the tokens it knows, mapping each to an email.
type Verifier struct {
	Tokens map[string]string
}

func (v Verifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	email, ok := v.Tokens[token]
	if !ok {
		return identity.Identity{}, identity.ErrInvalidToken
	}
	return identity.Identity{Email: email}, nil
}

// Event is one published message.
type Event struct {
	Key     string
	Payload any
}

// Publisher records published events. Publish fails with Err when set.
type Publisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, Event{Key: key, Payload: v})
	return nil
}

// Keys returns the routing keys published so far, in order.
func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		keys = append(keys, e.Key)
	}
	return keys
}
