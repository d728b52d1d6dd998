package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

// UserService registers users and reports their role.
type UserService struct {
	users UserStore
	now   func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Register creates the caller's user row with the default role. An existing
// row is left untouched.
func (s *UserService) Register(ctx context.Context, caller model.Caller, req model.RegisterUserRequest) (model.RegisterUserResult, error) {
	u := &model.User{
		Email:     caller.Email,
		Name:      strings.TrimSpace(req.Name),
		Photo:     strings.TrimSpace(req.Photo),
		Role:      model.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	res, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.RegisterUserResult{Message: "user already exists"}, nil
		}
		return model.RegisterUserResult{}, fmt.Errorf("register user: %w", err)
	}
	return model.RegisterUserResult{InsertedID: res.InsertedID}, nil
}

// Role returns the caller's role.
func (s *UserService) Role(ctx context.Context, caller model.Caller) (model.Role, error) {
	u, err := s.users.FindByEmail(ctx, caller.Email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
