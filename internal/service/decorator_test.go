package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
	"github.com/Shivanand-hulikatti/styledecor/internal/service"
)

func TestApplyTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	req := model.ApplyRequest{Name: "Eve", Category: "wedding", Experience: "3 years"}

	first, err := e.decorator.Apply(ctx, caller(eve), req)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if first.InsertedID == "" || first.Message != "" {
		t.Errorf("first result = %+v", first)
	}

	second, err := e.decorator.Apply(ctx, caller(eve), req)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if second.InsertedID != "" || second.Message == "" {
		t.Errorf("second result = %+v", second)
	}
	if len(e.apps.Applications) != 1 {
		t.Errorf("applications = %d, want 1", len(e.apps.Applications))
	}

	app, _ := e.apps.FindByEmail(ctx, eve)
	if app.ApplyStatus != model.ApplyPending {
		t.Errorf("status = %q, want pending", app.ApplyStatus)
	}
}

func TestApplyRequiresProfile(t *testing.T) {
	e := newEnv(t)
	_, err := e.decorator.Apply(context.Background(), caller(eve), model.ApplyRequest{Name: " "})
	if !errors.Is(err, service.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func pendingApplication(id, email string) model.DecoratorApplication {
	return model.DecoratorApplication{
		ID:          id,
		Email:       email,
		Name:        "Applicant",
		Category:    "wedding",
		ApplyStatus: model.ApplyPending,
		CreatedAt:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReviewAcceptPromotes(t *testing.T) {
	e := newEnv(t)
	e.apps.Put(pendingApplication("a1", eve))

	res, err := e.decorator.Review(context.Background(), "a1", model.ReviewRequest{ApplyStatus: model.ApplyAccepted, Email: eve})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !res.RolePromoted || res.ModifiedCount != 1 {
		t.Errorf("result = %+v", res)
	}
	if role := e.users.Role(eve); role != model.RoleDecorator {
		t.Errorf("role = %q, want decorator", role)
	}
}

func TestReviewAcceptWithoutEmailUsesApplication(t *testing.T) {
	e := newEnv(t)
	e.apps.Put(pendingApplication("a1", eve))

	if _, err := e.decorator.Review(context.Background(), "a1", model.ReviewRequest{ApplyStatus: model.ApplyAccepted}); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if role := e.users.Role(eve); role != model.RoleDecorator {
		t.Errorf("role = %q, want decorator", role)
	}
}

func TestReviewRejectKeepsRole(t *testing.T) {
	e := newEnv(t)
	e.apps.Put(pendingApplication("a1", eve))

	res, err := e.decorator.Review(context.Background(), "a1", model.ReviewRequest{ApplyStatus: model.ApplyRejected, Email: eve})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if res.RolePromoted {
		t.Error("rejection promoted the user")
	}
	if role := e.users.Role(eve); role != model.RoleUser {
		t.Errorf("role = %q, want user", role)
	}
	if a, _ := e.apps.GetByID(context.Background(), "a1"); a.ApplyStatus != model.ApplyRejected {
		t.Errorf("status = %q, want rejected", a.ApplyStatus)
	}
}

func TestReviewNeverDemotesAdmin(t *testing.T) {
	e := newEnv(t)
	e.apps.Put(pendingApplication("a1", admin))

	res, err := e.decorator.Review(context.Background(), "a1", model.ReviewRequest{ApplyStatus: model.ApplyAccepted})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if res.RolePromoted {
		t.Error("admin reported as promoted")
	}
	if role := e.users.Role(admin); role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", role)
	}
}

func TestReviewRejected(t *testing.T) {
	reviewed := pendingApplication("a1", eve)
	reviewed.ApplyStatus = model.ApplyAccepted

	tests := []struct {
		name string
		app  model.DecoratorApplication
		req  model.ReviewRequest
		want error
	}{
		{"bad status", pendingApplication("a1", eve), model.ReviewRequest{ApplyStatus: "maybe"}, service.ErrInvalid},
		{"pending target", pendingApplication("a1", eve), model.ReviewRequest{ApplyStatus: model.ApplyPending}, service.ErrInvalid},
		{"already reviewed", reviewed, model.ReviewRequest{ApplyStatus: model.ApplyRejected}, service.ErrInvalid},
		{"email mismatch", pendingApplication("a1", eve), model.ReviewRequest{ApplyStatus: model.ApplyAccepted, Email: alice}, service.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.apps.Put(tt.app)

			_, err := e.decorator.Review(context.Background(), "a1", tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if e.users.Role(eve) != model.RoleUser || e.users.Role(alice) != model.RoleUser {
				t.Error("role changed on rejected review")
			}
		})
	}

	e := newEnv(t)
	if _, err := e.decorator.Review(context.Background(), "missing", model.ReviewRequest{ApplyStatus: model.ApplyAccepted}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing application: err = %v, want ErrNotFound", err)
	}
}

func TestListDecoratorsAcceptedOnly(t *testing.T) {
	e := newEnv(t)
	statuses := []model.ApplyStatus{model.ApplyAccepted, model.ApplyPending, model.ApplyRejected, model.ApplyAccepted}
	categories := []string{"wedding", "wedding", "wedding", "birthday"}
	for i := range statuses {
		a := pendingApplication(fmt.Sprintf("a%d", i), fmt.Sprintf("d%d@example.com", i))
		a.ApplyStatus = statuses[i]
		a.Category = categories[i]
		e.apps.Put(a)
	}

	got, err := e.decorator.ListDecorators(context.Background(), "wedding")
	if err != nil {
		t.Fatalf("ListDecorators: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a0" {
		t.Errorf("got %+v, want only a0", got)
	}

	all, err := e.decorator.ListDecorators(context.Background(), "")
	if err != nil {
		t.Fatalf("ListDecorators: %v", err)
	}
	for _, a := range all {
		if a.ApplyStatus != model.ApplyAccepted {
			t.Errorf("%s has status %s", a.ID, a.ApplyStatus)
		}
	}
	if len(all) != 2 {
		t.Errorf("accepted = %d, want 2", len(all))
	}
}

func TestFeaturedDecoratorsCapped(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 25; i++ {
		a := pendingApplication(fmt.Sprintf("a%d", i), fmt.Sprintf("d%d@example.com", i))
		a.ApplyStatus = model.ApplyAccepted
		e.apps.Put(a)
	}
	ctx := context.Background()

	tests := []struct {
		limit int
		want  int
	}{
		{0, 6},
		{3, 3},
		{50, 20},
	}
	for _, tt := range tests {
		got, err := e.decorator.FeaturedDecorators(ctx, tt.limit)
		if err != nil {
			t.Fatalf("FeaturedDecorators(%d): %v", tt.limit, err)
		}
		if len(got) != tt.want {
			t.Errorf("FeaturedDecorators(%d) = %d, want %d", tt.limit, len(got), tt.want)
		}
	}
	if _, err := e.decorator.FeaturedDecorators(ctx, -1); !errors.Is(err, service.ErrInvalid) {
		t.Errorf("negative limit: err = %v, want ErrInvalid", err)
	}
}

func TestListApplications(t *testing.T) {
	e := newEnv(t)
	e.apps.Put(pendingApplication("a1", eve))

	got, err := e.decorator.ListApplications(context.Background(), model.ApplyPending)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListApplications = %v, %v", got, err)
	}
	if _, err := e.decorator.ListApplications(context.Background(), "unknown"); !errors.Is(err, service.ErrInvalid) {
		t.Errorf("unknown status: err = %v, want ErrInvalid", err)
	}
}
