package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/styledecor/internal/events"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

var (
	// ErrInvalid is returned when a request is malformed or the target is
	// in a state that does not allow the operation.
	ErrInvalid = errors.New("invalid request")
	// ErrForbidden is returned when the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUpstream is returned when the payment provider fails.
	ErrUpstream = errors.New("payment provider error")
)

var tracer = otel.Tracer("github.com/Shivanand-hulikatti/styledecor/internal/service")

// finish records err on span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish emits an event. Delivery is best-effort: a failure is logged and
// never fails the operation that already committed.
func publish(ctx context.Context, pub events.Publisher, log logrus.FieldLogger, key string, v any) {
	if err := pub.Publish(ctx, key, v); err != nil {
		log.WithError(err).WithField("event", key).Warn("publish event failed")
	}
}

// roleOf resolves the caller's role, consulting the user directory when the
// route did not already do so. A caller without a user row has no role.
func roleOf(ctx context.Context, users UserStore, caller model.Caller) (model.Role, error) {
	if caller.Role != "" {
		return caller.Role, nil
	}
	u, err := users.FindByEmail(ctx, caller.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return u.Role, nil
}
