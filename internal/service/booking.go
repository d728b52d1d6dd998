package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/styledecor/internal/events"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

const maxPageSize = 100

// Progress labels a decorator may report between assignment and completion.
var progressLabels = map[string]bool{
	"planning":            true,
	"materials-prepared":  true,
	"on-the-way":          true,
	"setup-in-progress":   true,
	model.StatusCompleted: true,
}

// Statuses written only by the engine itself.
var engineStatuses = map[string]bool{
	model.StatusPending:   true,
	model.StatusAssign:    true,
	model.StatusCancelled: true,
}

var customLabel = regexp.MustCompile(`^[a-z0-9][a-z0-9 -]{0,39}$`)

// DecoratorHiddenStatuses are left off the decorator dashboard, which shows
// work in progress only.
var DecoratorHiddenStatuses = []string{model.StatusPending, model.StatusAssign, model.StatusCompleted}

// BookingService owns the booking state machine.
type BookingService struct {
	bookings BookingStore
	packages PackageStore
	users    UserStore
	pub      events.Publisher
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	bookings BookingStore,
	packages PackageStore,
	users UserStore,
	pub events.Publisher,
	log logrus.FieldLogger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		packages: packages,
		users:    users,
		pub:      pub,
		log:      log.WithField("component", "booking"),
		now:      time.Now,
	}
}

// CreateBooking books a catalog package for the caller. Name, category and
// cost are copied from the package; the booking starts with no service or
// payment status.
func (s *BookingService) CreateBooking(ctx context.Context, caller model.Caller, req model.CreateBookingRequest) (resp model.CreateBookingResponse, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.CreateBooking")
	defer func() { finish(span, err) }()

	if caller.Email == "" {
		return model.CreateBookingResponse{}, fmt.Errorf("%w: caller email is required", ErrInvalid)
	}
	req.PackageID = strings.TrimSpace(req.PackageID)
	if req.PackageID == "" {
		return model.CreateBookingResponse{}, fmt.Errorf("%w: packageId is required", ErrInvalid)
	}

	pkg, err := s.packages.GetByID(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.CreateBookingResponse{}, fmt.Errorf("%w: package %s does not exist", ErrInvalid, req.PackageID)
		}
		return model.CreateBookingResponse{}, fmt.Errorf("get package: %w", err)
	}

	now := s.now().UTC()
	trackingID, err := NewTrackingID(now)
	if err != nil {
		return model.CreateBookingResponse{}, err
	}

	b := &model.Booking{
		ID:              uuid.New().String(),
		UserEmail:       caller.Email,
		UserName:        strings.TrimSpace(req.UserName),
		PackageID:       pkg.ID,
		ServiceName:     pkg.ServiceName,
		ServiceCategory: pkg.Category,
		Cost:            pkg.Cost,
		BookingDate:     strings.TrimSpace(req.BookingDate),
		Location:        strings.TrimSpace(req.Location),
		TrackingID:      trackingID,
		CreatedAt:       now,
	}
	res, err := s.bookings.Create(ctx, b)
	if err != nil {
		return model.CreateBookingResponse{}, fmt.Errorf("create booking: %w", err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "trakingId": trackingID}).Info("booking created")
	publish(ctx, s.pub, s.log, events.BookingCreated, b)
	return model.CreateBookingResponse{InsertResult: res, TrackingID: trackingID}, nil
}

// GetBooking returns a booking visible to its owner, its assigned decorator
// and admins.
func (s *BookingService) GetBooking(ctx context.Context, caller model.Caller, id string) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserEmail == caller.Email || (b.DecoratorEmail != "" && b.DecoratorEmail == caller.Email) {
		return b, nil
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return b, nil
}

// AssignDecorator records a decorator on a paid booking and moves it to
// "assign". The decorator must hold the decorator role.
// repository.ErrConflict is returned when the booking completes or is
// cancelled between the checks and the write.
func (s *BookingService) AssignDecorator(ctx context.Context, id string, req model.AssignDecoratorRequest) (res model.UpdateResult, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.AssignDecorator")
	defer func() { finish(span, err) }()

	req.DecoratorEmail = strings.ToLower(strings.TrimSpace(req.DecoratorEmail))
	req.DecoratorName = strings.TrimSpace(req.DecoratorName)
	if req.DecoratorEmail == "" {
		return model.UpdateResult{}, fmt.Errorf("%w: decoratorEmail is required", ErrInvalid)
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.UpdateResult{}, err
	}
	if !b.IsPaid() {
		return model.UpdateResult{}, fmt.Errorf("%w: booking has not been paid", ErrInvalid)
	}
	if b.IsTerminal() {
		return model.UpdateResult{}, fmt.Errorf("%w: booking is %s", ErrInvalid, b.ServiceStatus)
	}

	decorator, err := s.users.FindByEmail(ctx, req.DecoratorEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UpdateResult{}, fmt.Errorf("%w: %s is not a registered user", ErrInvalid, req.DecoratorEmail)
		}
		return model.UpdateResult{}, fmt.Errorf("get decorator: %w", err)
	}
	if decorator.Role != model.RoleDecorator {
		return model.UpdateResult{}, fmt.Errorf("%w: %s is not a decorator", ErrInvalid, req.DecoratorEmail)
	}
	if req.DecoratorName == "" {
		req.DecoratorName = decorator.Name
	}

	res, err = s.bookings.Assign(ctx, id, req)
	if err != nil {
		return model.UpdateResult{}, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": id, "decorator": req.DecoratorEmail}).Info("decorator assigned")
	publish(ctx, s.pub, s.log, events.BookingAssigned, map[string]string{
		"bookingId":      id,
		"trakingId":      b.TrackingID,
		"decoratorEmail": req.DecoratorEmail,
	})
	return res, nil
}

// ReportProgress sets the service status of a booking on behalf of its
// assigned decorator. A reassignment or completion that lands after the checks
// yields repository.ErrConflict.
func (s *BookingService) ReportProgress(ctx context.Context, caller model.Caller, id string, status string) (res model.UpdateResult, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.ReportProgress")
	defer func() { finish(span, err) }()

	status = strings.ToLower(strings.TrimSpace(status))
	if err := ValidateProgress(status); err != nil {
		return model.UpdateResult{}, err
	}

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.UpdateResult{}, err
	}
	if b.DecoratorEmail == "" || b.DecoratorEmail != caller.Email {
		return model.UpdateResult{}, fmt.Errorf("%w: booking is not assigned to you", ErrForbidden)
	}
	if b.IsTerminal() {
		return model.UpdateResult{}, fmt.Errorf("%w: booking is %s", ErrInvalid, b.ServiceStatus)
	}

	res, err = s.bookings.UpdateServiceStatus(ctx, id, caller.Email, status)
	if err != nil {
		return model.UpdateResult{}, err
	}

	publish(ctx, s.pub, s.log, events.BookingProgress, map[string]string{
		"bookingId":     id,
		"trakingId":     b.TrackingID,
		"serviceStatus": status,
	})
	return res, nil
}

// ValidateProgress accepts the known progress labels and lowercase custom
// labels. Engine-owned statuses and empty labels are rejected.
func ValidateProgress(status string) error {
	switch {
	case status == "":
		return fmt.Errorf("%w: serviceStatus is required", ErrInvalid)
	case engineStatuses[status]:
		return fmt.Errorf("%w: serviceStatus %q cannot be set by a decorator", ErrInvalid, status)
	case progressLabels[status], customLabel.MatchString(status):
		return nil
	default:
		return fmt.Errorf("%w: serviceStatus %q is not a valid progress label", ErrInvalid, status)
	}
}

// ListBookings returns one page of bookings and the total match count.
func (s *BookingService) ListBookings(ctx context.Context, f model.BookingFilter) (model.BookingPage, error) {
	if f.Limit < 0 || f.Skip < 0 {
		return model.BookingPage{}, fmt.Errorf("%w: limit and skip must not be negative", ErrInvalid)
	}
	if f.Limit == 0 || f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	return s.bookings.List(ctx, f)
}

// CancelBooking cancels an unpaid booking owned by the caller.
func (s *BookingService) CancelBooking(ctx context.Context, caller model.Caller, id string) (model.UpdateResult, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.UpdateResult{}, err
	}
	if b.UserEmail != caller.Email {
		return model.UpdateResult{}, fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}
	if b.IsPaid() {
		return model.UpdateResult{}, fmt.Errorf("%w: paid bookings cannot be cancelled", ErrInvalid)
	}
	if b.ServiceStatus == model.StatusCancelled {
		return model.UpdateResult{}, fmt.Errorf("%w: booking is already cancelled", ErrInvalid)
	}

	res, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return model.UpdateResult{}, err
	}
	publish(ctx, s.pub, s.log, events.BookingCancelled, map[string]string{"bookingId": id, "trakingId": b.TrackingID})
	return res, nil
}

// DeleteBooking hard-deletes a booking. Only the owner or an admin may do
// so. Payments recorded against it are kept.
func (s *BookingService) DeleteBooking(ctx context.Context, caller model.Caller, id string) (model.DeleteResult, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.DeleteResult{}, err
	}
	if b.UserEmail != caller.Email {
		if err := s.requireAdmin(ctx, caller); err != nil {
			return model.DeleteResult{}, err
		}
	}

	res, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return model.DeleteResult{}, err
	}
	s.log.WithFields(logrus.Fields{"booking_id": id, "by": caller.Email}).Info("booking deleted")
	return res, nil
}

func (s *BookingService) requireAdmin(ctx context.Context, caller model.Caller) error {
	role, err := roleOf(ctx, s.users, caller)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}
	if role != model.RoleAdmin {
		return fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}
	return nil
}
