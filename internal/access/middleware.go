package access

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/styledecor/internal/identity"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

// Gate is chi middleware that verifies the bearer credential and enforces a
// capability before the wrapped handler runs.
type Gate struct {
	verifier identity.Verifier
	users    UserLookup
	log      logrus.FieldLogger
}

// NewGate constructs a Gate.
func NewGate(verifier identity.Verifier, users UserLookup, log logrus.FieldLogger) *Gate {
	return &Gate{verifier: verifier, users: users, log: log}
}

// Require rejects requests whose caller lacks capability. Missing or
// invalid credentials are answered with 401 before any user lookup.
func (g *Gate) Require(capability Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id identity.Identity
			if token, ok := bearerToken(r); ok {
				verified, err := g.verifier.Verify(r.Context(), token)
				if err == nil {
					id = verified
				}
			}

			d := Authorize(r.Context(), id, capability, g.users)
			switch {
			case errors.Is(d.Err, ErrUnauthenticated):
				respond(w, http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized access"})
				return
			case d.Err != nil:
				g.log.WithError(d.Err).WithField("request_id", middleware.GetReqID(r.Context())).Error("authorize request")
				respond(w, http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
				return
			case !d.Allowed:
				respond(w, http.StatusForbidden, model.ForbiddenResponse{Error: "forbidden access", Role: d.Role})
				return
			}

			ctx := WithCaller(r.Context(), model.Caller{Email: id.Email, Role: d.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
