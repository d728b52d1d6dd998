package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/styledecor/internal/checkout"
	"github.com/Shivanand-hulikatti/styledecor/internal/events"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

const alreadyCompletedMessage = "payment already completed"

// PaymentService opens checkout sessions and reconciles completed ones with
// bookings exactly once, keyed by the provider's transaction id.
type PaymentService struct {
	bookings BookingStore
	payments PaymentStore
	users    UserStore
	gateway  Gateway
	pub      events.Publisher
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewPaymentService constructs a PaymentService with its dependencies.
func NewPaymentService(
	bookings BookingStore,
	payments PaymentStore,
	users UserStore,
	gateway Gateway,
	pub events.Publisher,
	log logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		payments: payments,
		users:    users,
		gateway:  gateway,
		pub:      pub,
		log:      log.WithField("component", "payment"),
		now:      time.Now,
	}
}

// CreateCheckoutSession opens a hosted checkout for an unpaid booking owned
// by the caller and returns the redirect URL. The booking is not modified.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, caller model.Caller, req model.CheckoutRequest) (resp model.CheckoutResponse, err error) {
	ctx, span := tracer.Start(ctx, "PaymentService.CreateCheckoutSession")
	defer func() { finish(span, err) }()

	req.BookingID = strings.TrimSpace(req.BookingID)
	req.TrackingID = strings.TrimSpace(req.TrackingID)
	req.ServiceName = strings.TrimSpace(req.ServiceName)
	req.PayerEmail = strings.ToLower(strings.TrimSpace(req.PayerEmail))
	switch {
	case req.BookingID == "" || req.TrackingID == "":
		return model.CheckoutResponse{}, fmt.Errorf("%w: bookingId and trakingId are required", ErrInvalid)
	case req.ServiceName == "":
		return model.CheckoutResponse{}, fmt.Errorf("%w: service_name is required", ErrInvalid)
	case req.Cost <= 0:
		return model.CheckoutResponse{}, fmt.Errorf("%w: cost must be positive", ErrInvalid)
	}
	switch req.PayerEmail {
	case "":
		req.PayerEmail = caller.Email
	case caller.Email:
	default:
		return model.CheckoutResponse{}, fmt.Errorf("%w: customer_email must be your own email", ErrInvalid)
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return model.CheckoutResponse{}, err
	}
	if b.UserEmail != caller.Email {
		return model.CheckoutResponse{}, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}
	if b.TrackingID != req.TrackingID {
		return model.CheckoutResponse{}, fmt.Errorf("%w: trakingId does not match booking", ErrInvalid)
	}
	if b.IsPaid() {
		return model.CheckoutResponse{}, fmt.Errorf("%w: booking has already been paid", ErrInvalid)
	}
	if b.ServiceStatus == model.StatusCancelled {
		return model.CheckoutResponse{}, fmt.Errorf("%w: booking is cancelled", ErrInvalid)
	}

	amount := checkout.ToMinorUnits(req.Cost)
	if b.Cost > 0 && checkout.ToMinorUnits(b.Cost) != amount {
		return model.CheckoutResponse{}, fmt.Errorf("%w: cost does not match booking", ErrInvalid)
	}
	packageID := req.PackageID
	if packageID == "" {
		packageID = b.PackageID
	}

	session, err := s.gateway.CreateSession(ctx, checkout.SessionRequest{
		ItemName:      req.ServiceName,
		ItemImage:     req.Image,
		CustomerEmail: req.PayerEmail,
		UnitAmount:    amount,
		Metadata: map[string]string{
			checkout.MetaBookingID:   b.ID,
			checkout.MetaTrackingID:  b.TrackingID,
			checkout.MetaPackageID:   packageID,
			checkout.MetaServiceName: req.ServiceName,
		},
	})
	if err != nil {
		return model.CheckoutResponse{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "session_id": session.ID, "amount": amount}).Info("checkout session created")
	return model.CheckoutResponse{URL: session.URL, SessionID: session.ID}, nil
}

// ReconcilePayment applies a paid checkout session to its booking and
// records the payment. Calling it again for the same session returns the
// original identifiers with AlreadyCompleted set and writes nothing.
func (s *PaymentService) ReconcilePayment(ctx context.Context, sessionID string) (res model.ReconcileResult, err error) {
	ctx, span := tracer.Start(ctx, "PaymentService.ReconcilePayment")
	defer func() { finish(span, err) }()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.ReconcileResult{}, fmt.Errorf("%w: session_id is required", ErrInvalid)
	}

	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return model.ReconcileResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if session.PaymentStatus != checkout.PaymentStatusPaid {
		return model.ReconcileResult{}, fmt.Errorf("%w: checkout session is %s", ErrInvalid, session.PaymentStatus)
	}
	transactionID := session.PaymentIntent
	if transactionID == "" {
		return model.ReconcileResult{}, fmt.Errorf("%w: checkout session has no payment intent", ErrInvalid)
	}

	existing, err := s.payments.FindByTransactionID(ctx, transactionID)
	switch {
	case err == nil:
		return alreadyCompleted(existing), nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.ReconcileResult{}, fmt.Errorf("find payment: %w", err)
	}

	// Both writes depend on metadata; check it before either happens.
	bookingID := session.Metadata[checkout.MetaBookingID]
	trackingID := session.Metadata[checkout.MetaTrackingID]
	if bookingID == "" || trackingID == "" {
		return model.ReconcileResult{}, fmt.Errorf("%w: checkout session is missing booking metadata", ErrInvalid)
	}

	now := s.now().UTC()
	rec := model.Reconciliation{
		BookingID:     bookingID,
		TransactionID: transactionID,
		PaymentStatus: session.PaymentStatus,
		PaidAt:        now,
		Payment: model.Payment{
			ID:            uuid.New().String(),
			TransactionID: transactionID,
			TrackingID:    trackingID,
			BookingID:     bookingID,
			PackageID:     session.Metadata[checkout.MetaPackageID],
			ServiceName:   session.Metadata[checkout.MetaServiceName],
			Amount:        session.AmountTotal,
			Currency:      session.Currency,
			CustomerEmail: strings.ToLower(session.CustomerEmail),
			PaymentStatus: session.PaymentStatus,
			PaidAt:        now,
		},
	}

	modified, inserted, err := s.payments.Record(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyReconciled) {
			return s.lostRace(ctx, transactionID, trackingID), nil
		}
		return model.ReconcileResult{}, fmt.Errorf("record payment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":     bookingID,
		"transaction_id": transactionID,
		"amount":         session.AmountTotal,
	}).Info("payment reconciled")
	publish(ctx, s.pub, s.log, events.PaymentCompleted, rec.Payment)

	return model.ReconcileResult{
		Success:       true,
		TransactionID: transactionID,
		TrackingID:    trackingID,
		ModifyBooking: &modified,
		PaymentResult: &inserted,
	}, nil
}

// lostRace answers a reconciliation that a concurrent call beat to the
// ledger. The winner's row is echoed when it can be read.
func (s *PaymentService) lostRace(ctx context.Context, transactionID, trackingID string) model.ReconcileResult {
	existing, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		s.log.WithError(err).WithField("transaction_id", transactionID).Warn("read reconciled payment")
		return model.ReconcileResult{
			Success:          true,
			AlreadyCompleted: true,
			Message:          alreadyCompletedMessage,
			TransactionID:    transactionID,
			TrackingID:       trackingID,
		}
	}
	return alreadyCompleted(existing)
}

func alreadyCompleted(p *model.Payment) model.ReconcileResult {
	return model.ReconcileResult{
		Success:          true,
		AlreadyCompleted: true,
		Message:          alreadyCompletedMessage,
		TransactionID:    p.TransactionID,
		TrackingID:       p.TrackingID,
	}
}

// ListPaymentHistory returns a payer's payments, newest first. Callers may
// read only their own history unless they are admins.
func (s *PaymentService) ListPaymentHistory(ctx context.Context, caller model.Caller, email string) ([]model.Payment, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if email != caller.Email {
		role, err := roleOf(ctx, s.users, caller)
		if err != nil {
			return nil, fmt.Errorf("resolve role: %w", err)
		}
		if role != model.RoleAdmin {
			return nil, fmt.Errorf("%w: payment history belongs to another user", ErrForbidden)
		}
	}
	return s.payments.ListByCustomer(ctx, email)
}
