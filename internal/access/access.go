// Package access gates operations on the caller's identity and role.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/styledecor/internal/identity"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

// Capability is what a protected operation requires of its caller.
type Capability int

const (
	// Authenticated requires a verified identity only.
	Authenticated Capability = iota
	// Decorator requires a user row with the decorator role.
	Decorator
	// Admin requires a user row with the admin role.
	Admin
)

func (c Capability) String() string {
	switch c {
	case Authenticated:
		return "authenticated"
	case Decorator:
		return "decorator"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// ErrUnauthenticated is reported for a request without a verified identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// UserLookup resolves a user by email.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// Decision is the outcome of Authorize. Err is set when the request is
// unauthenticated or the lookup failed; otherwise Allowed says whether the
// caller holds the capability and Role reports the role that was found.
type Decision struct {
	Allowed bool
	Role    model.Role
	Err     error
}

// Authorize decides whether id holds capability. Authenticated checks never
// touch the user directory; role checks fetch the user on every call so a
// promotion or demotion takes effect immediately.
func Authorize(ctx context.Context, id identity.Identity, capability Capability, users UserLookup) Decision {
	if id.Email == "" {
		return Decision{Err: ErrUnauthenticated}
	}
	if capability == Authenticated {
		return Decision{Allowed: true}
	}

	u, err := users.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Decision{}
		}
		return Decision{Err: fmt.Errorf("lookup user: %w", err)}
	}

	var want model.Role
	switch capability {
	case Decorator:
		want = model.RoleDecorator
	case Admin:
		want = model.RoleAdmin
	}
	return Decision{Allowed: want != "" && u.Role == want, Role: u.Role}
}

type callerKey struct{}

// WithCaller returns a context carrying the caller.
func WithCaller(ctx context.Context, c model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller stored by the Gate middleware.
func CallerFrom(ctx context.Context) (model.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(model.Caller)
	return c, ok
}
