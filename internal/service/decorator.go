package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/styledecor/internal/events"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

const (
	alreadyAppliedMessage = "you have already applied"
	featuredDefault       = 6
	featuredMax           = 20
)

// DecoratorService owns the decorator application state machine and the
// role promotion that follows acceptance.
type DecoratorService struct {
	applications DecoratorStore
	pub          events.Publisher
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewDecoratorService constructs a DecoratorService with its dependencies.
func NewDecoratorService(applications DecoratorStore, pub events.Publisher, log logrus.FieldLogger) *DecoratorService {
	return &DecoratorService{
		applications: applications,
		pub:          pub,
		log:          log.WithField("component", "decorator"),
		now:          time.Now,
	}
}

// Apply submits the caller's application. A second application from the
// same email is answered with a message and nothing is written.
func (s *DecoratorService) Apply(ctx context.Context, caller model.Caller, req model.ApplyRequest) (res model.ApplyResult, err error) {
	ctx, span := tracer.Start(ctx, "DecoratorService.Apply")
	defer func() { finish(span, err) }()

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" {
		return model.ApplyResult{}, fmt.Errorf("%w: name and category are required", ErrInvalid)
	}

	_, err = s.applications.FindByEmail(ctx, caller.Email)
	switch {
	case err == nil:
		return model.ApplyResult{Message: alreadyAppliedMessage}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.ApplyResult{}, fmt.Errorf("find application: %w", err)
	}

	app := &model.DecoratorApplication{
		ID:          uuid.New().String(),
		Email:       caller.Email,
		Name:        req.Name,
		Category:    req.Category,
		Experience:  strings.TrimSpace(req.Experience),
		Photo:       strings.TrimSpace(req.Photo),
		ApplyStatus: model.ApplyPending,
		CreatedAt:   s.now().UTC(),
	}
	inserted, err := s.applications.Create(ctx, app)
	if err != nil {
		// Lost a race with a concurrent application from the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return model.ApplyResult{Message: alreadyAppliedMessage}, nil
		}
		return model.ApplyResult{}, fmt.Errorf("create application: %w", err)
	}

	publish(ctx, s.pub, s.log, events.DecoratorApplied, app)
	return model.ApplyResult{InsertedID: inserted.InsertedID}, nil
}

// Review accepts or rejects a pending application. Acceptance promotes the
// applicant to decorator in the same transaction. When req.Email is set it
// must match the application.
func (s *DecoratorService) Review(ctx context.Context, id string, req model.ReviewRequest) (res model.ReviewResult, err error) {
	ctx, span := tracer.Start(ctx, "DecoratorService.Review")
	defer func() { finish(span, err) }()

	if req.ApplyStatus != model.ApplyAccepted && req.ApplyStatus != model.ApplyRejected {
		return model.ReviewResult{}, fmt.Errorf("%w: applyStatus must be accepted or rejected", ErrInvalid)
	}

	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return model.ReviewResult{}, err
	}
	if app.ApplyStatus != model.ApplyPending {
		return model.ReviewResult{}, fmt.Errorf("%w: application is already %s", ErrInvalid, app.ApplyStatus)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && email != app.Email {
		return model.ReviewResult{}, fmt.Errorf("%w: email does not match application", ErrInvalid)
	}

	var promote string
	if req.ApplyStatus == model.ApplyAccepted {
		promote = app.Email
	}
	res, err = s.applications.Review(ctx, id, req.ApplyStatus, promote)
	if err != nil {
		return model.ReviewResult{}, err
	}

	s.log.WithFields(logrus.Fields{
		"application_id": id,
		"status":         req.ApplyStatus,
		"role_promoted":  res.RolePromoted,
	}).Info("decorator application reviewed")
	publish(ctx, s.pub, s.log, events.DecoratorReviewed, map[string]any{
		"applicationId": id,
		"email":         app.Email,
		"applyStatus":   req.ApplyStatus,
		"rolePromoted":  res.RolePromoted,
	})
	return res, nil
}

// ListDecorators returns accepted decorators, optionally in one category.
func (s *DecoratorService) ListDecorators(ctx context.Context, category string) ([]model.DecoratorApplication, error) {
	return s.applications.List(ctx, model.DecoratorFilter{
		ApplyStatus: model.ApplyAccepted,
		Category:    category,
	})
}

// FeaturedDecorators returns a capped sample of accepted decorators for the
// public site. A zero limit selects the default.
func (s *DecoratorService) FeaturedDecorators(ctx context.Context, limit int) ([]model.DecoratorApplication, error) {
	switch {
	case limit < 0:
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalid)
	case limit == 0:
		limit = featuredDefault
	case limit > featuredMax:
		limit = featuredMax
	}
	return s.applications.List(ctx, model.DecoratorFilter{ApplyStatus: model.ApplyAccepted, Limit: limit})
}

// ListApplications returns applications in the given review state, or all
// of them when status is empty.
func (s *DecoratorService) ListApplications(ctx context.Context, status model.ApplyStatus) ([]model.DecoratorApplication, error) {
	switch status {
	case "", model.ApplyPending, model.ApplyAccepted, model.ApplyRejected:
	default:
		return nil, fmt.Errorf("%w: unknown applyStatus %q", ErrInvalid, status)
	}
	return s.applications.List(ctx, model.DecoratorFilter{ApplyStatus: status})
}
