package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Shivanand-hulikatti/styledecor/internal/access"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/service"
	"github.com/Shivanand-hulikatti/styledecor/internal/testkit/fakes"
)

type stack struct {
	router   http.Handler
	packages *fakes.PackageStore
	users    *fakes.UserStore
	bookings *fakes.BookingStore
	payments *fakes.PaymentStore
	gateway  *fakes.Gateway
	hook     *test.Hook
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log, hook := test.NewNullLogger()

	s := &stack{
		packages: fakes.NewPackageStore(),
		users: fakes.NewUserStore(
			model.User{Email: "alice@example.com", Name: "Alice", Role: model.RoleUser},
			model.User{Email: "eve@example.com", Name: "Eve", Role: model.RoleUser},
			model.User{Email: "dora@example.com", Name: "Dora", Role: model.RoleDecorator},
			model.User{Email: "dan@example.com", Name: "Dan", Role: model.RoleDecorator},
			model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin},
		),
		bookings: fakes.NewBookingStore(),
		gateway:  fakes.NewGateway(),
		hook:     hook,
	}
	s.payments = fakes.NewPaymentStore(s.bookings)
	apps := fakes.NewDecoratorStore(s.users)
	pub := &fakes.Publisher{}

	h := New(Services{
		Catalog:    service.NewCatalogService(s.packages),
		Users:      service.NewUserService(s.users),
		Bookings:   service.NewBookingService(s.bookings, s.packages, s.users, pub, log),
		Payments:   service.NewPaymentService(s.bookings, s.payments, s.users, s.gateway, pub, log),
		Decorators: service.NewDecoratorService(apps, pub, log),
	}, log)

	verifier := fakes.Verifier{Tokens: map[string]string{
		"alice":  "alice@example.com",
		"eve":    "eve@example.com",
		"dora":   "dora@example.com",
		"dan":    "dan@example.com",
		"admin":  "admin@example.com",
		"newbie": "newbie@example.com",
	}}
	gate := access.NewGate(verifier, s.users, log)

	r := chi.NewRouter()
	r.Use(Logger(log))
	r.Use(CORS("http://localhost:5173"))
	h.Mount(r, gate)
	s.router = r
	return s
}

func (s *stack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	s := newStack(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	s := newStack(t)
	rec := s.do(t, http.MethodPost, "/booking", "", model.CreateBookingRequest{PackageID: "x"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if s.users.Lookups != 0 {
		t.Errorf("lookups = %d, want 0", s.users.Lookups)
	}
}

func TestAdminRouteForbiddenForUser(t *testing.T) {
	s := newStack(t)
	s.bookings.Bookings["b1"] = model.Booking{ID: "b1", UserEmail: "alice@example.com", PaymentStatus: "paid", TransactionID: "pi_1"}

	rec := s.do(t, http.MethodPatch, "/booking/b1", "alice", model.AssignDecoratorRequest{DecoratorEmail: "dora@example.com"})
	expectStatus(t, rec, http.StatusForbidden)
	body := decode[model.ForbiddenResponse](t, rec)
	if body.Error != "forbidden access" || body.Role != model.RoleUser {
		t.Errorf("body = %+v", body)
	}
	if b, _ := s.bookings.Get("b1"); b.DecoratorEmail != "" {
		t.Error("forbidden request modified booking")
	}

	rec = s.do(t, http.MethodGet, "/bookings?serviceStatus=pending", "alice", nil)
	expectStatus(t, rec, http.StatusForbidden)
}

func TestAssignMissingBooking(t *testing.T) {
	s := newStack(t)
	rec := s.do(t, http.MethodPatch, "/booking/missing", "admin", model.AssignDecoratorRequest{DecoratorEmail: "dora@example.com"})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestRequestValidation(t *testing.T) {
	s := newStack(t)
	s.bookings.Bookings["b1"] = model.Booking{ID: "b1", UserEmail: "alice@example.com"}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
	}{
		{"malformed json", http.MethodPost, "/booking", "alice", "{"},
		{"unknown field", http.MethodPost, "/booking", "alice", `{"packageId":"p","extra":1}`},
		{"missing package", http.MethodPost, "/booking", "alice", `{}`},
		{"missing decorator email", http.MethodPatch, "/booking/b1", "admin", `{"decoratorName":"Dora"}`},
		{"bad review status", http.MethodPatch, "/decorator/a1", "admin", `{"applyStatus":"maybe"}`},
		{"bad package image", http.MethodPost, "/package", "admin", `{"service_name":"x","service_category":"y","cost":5,"images":["not a url"]}`},
		{"bad min", http.MethodGet, "/packages?min=cheap", "", nil},
		{"bad sort", http.MethodGet, "/dashboard/my-bookings?sort=sideways", "alice", nil},
		{"empty progress", http.MethodPatch, "/booking/project/b1", "dora", `{"serviceStatus":""}`},
		{"history without email", http.MethodGet, "/my-payment-history", "alice", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
			if body := decode[model.ErrorResponse](t, rec); body.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestBookingPaymentFlow(t *testing.T) {
	s := newStack(t)

	rec := s.do(t, http.MethodPost, "/package", "admin", model.PackageRequest{ServiceName: "Wedding Stage", Category: "wedding", Cost: 500})
	expectStatus(t, rec, http.StatusCreated)
	pkg := decode[model.Package](t, rec)

	rec = s.do(t, http.MethodPost, "/booking", "alice", model.CreateBookingRequest{PackageID: pkg.ID, ServiceName: pkg.ServiceName, Cost: 500})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[model.CreateBookingResponse](t, rec)
	if !service.TrackingIDPattern.MatchString(created.TrackingID) {
		t.Fatalf("tracking id = %q", created.TrackingID)
	}

	rec = s.do(t, http.MethodPost, "/payment-checkout-session", "alice", model.CheckoutRequest{
		BookingID:   created.InsertedID,
		TrackingID:  created.TrackingID,
		PackageID:   pkg.ID,
		PayerEmail:  "alice@example.com",
		ServiceName: pkg.ServiceName,
		Cost:        500,
	})
	expectStatus(t, rec, http.StatusOK)
	checkoutResp := decode[model.CheckoutResponse](t, rec)
	if checkoutResp.URL == "" {
		t.Fatal("no redirect url")
	}
	if s.gateway.Requests[0].UnitAmount != 50000 {
		t.Errorf("unit amount = %d, want 50000", s.gateway.Requests[0].UnitAmount)
	}

	s.gateway.Pay(checkoutResp.SessionID, "pi_flow")

	rec = s.do(t, http.MethodPatch, "/payment-success?session_id="+checkoutResp.SessionID, "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	first := decode[model.ReconcileResult](t, rec)
	if !first.Success || first.AlreadyCompleted || first.TransactionID != "pi_flow" {
		t.Fatalf("first reconcile = %+v", first)
	}

	rec = s.do(t, http.MethodPatch, "/payment-success?session_id="+checkoutResp.SessionID, "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	second := decode[model.ReconcileResult](t, rec)
	if !second.AlreadyCompleted || second.TrackingID != created.TrackingID {
		t.Fatalf("second reconcile = %+v", second)
	}
	if s.payments.Count() != 1 {
		t.Errorf("payments = %d, want 1", s.payments.Count())
	}

	rec = s.do(t, http.MethodPatch, "/booking/"+created.InsertedID, "admin", model.AssignDecoratorRequest{DecoratorEmail: "dora@example.com"})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodPatch, "/booking/project/"+created.InsertedID, "dan", model.ProgressRequest{ServiceStatus: "planning"})
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodPatch, "/booking/project/"+created.InsertedID, "dora", model.ProgressRequest{ServiceStatus: "on-the-way"})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodGet, "/bookings/dacorator", "dora", nil)
	expectStatus(t, rec, http.StatusOK)
	page := decode[model.BookingPage](t, rec)
	if page.Total != 1 || page.Bookings[0].ServiceStatus != "on-the-way" {
		t.Errorf("decorator page = %+v", page)
	}

	// Field names at the boundary are part of the client contract.
	rec = s.do(t, http.MethodGet, "/booking/"+created.InsertedID, "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	raw := decode[map[string]any](t, rec)
	for _, key := range []string{"serviceStatus", "paymentStatus", "trakingId", "transactionId", "decoratorEmail", "userEmail"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("booking JSON missing %q: %v", key, raw)
		}
	}

	rec = s.do(t, http.MethodGet, "/my-payment-history?email=alice@example.com", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	if history := decode[[]model.Payment](t, rec); len(history) != 1 || history[0].Amount != 50000 {
		t.Errorf("history = %+v", history)
	}

	rec = s.do(t, http.MethodGet, "/dashboard/my-bookings?limit=5", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	if mine := decode[model.BookingPage](t, rec); mine.Total != 1 {
		t.Errorf("my bookings total = %d, want 1", mine.Total)
	}
}

func TestCheckoutPayerIsCaller(t *testing.T) {
	s := newStack(t)
	rec := s.do(t, http.MethodPost, "/package", "admin", model.PackageRequest{ServiceName: "Stage", Category: "wedding", Cost: 80})
	expectStatus(t, rec, http.StatusCreated)
	pkg := decode[model.Package](t, rec)

	// Name and cost come from the package, so the body only needs its id.
	rec = s.do(t, http.MethodPost, "/booking", "alice", `{"packageId":"`+pkg.ID+`"}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[model.CreateBookingResponse](t, rec)

	checkoutBody := func(payer string) model.CheckoutRequest {
		return model.CheckoutRequest{
			BookingID:   created.InsertedID,
			TrackingID:  created.TrackingID,
			PayerEmail:  payer,
			ServiceName: "Stage",
			Cost:        80,
		}
	}

	rec = s.do(t, http.MethodPost, "/payment-checkout-session", "alice", checkoutBody("eve@example.com"))
	expectStatus(t, rec, http.StatusBadRequest)
	if len(s.gateway.Requests) != 0 {
		t.Fatal("session opened for another payer")
	}

	rec = s.do(t, http.MethodPost, "/payment-checkout-session", "alice", checkoutBody(""))
	expectStatus(t, rec, http.StatusOK)
	session := decode[model.CheckoutResponse](t, rec)
	s.gateway.Pay(session.SessionID, "pi_payer")

	rec = s.do(t, http.MethodPatch, "/payment-success?session_id="+session.SessionID, "alice", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodGet, "/my-payment-history?email=alice@example.com", "alice", nil)
	expectStatus(t, rec, http.StatusOK)
	if history := decode[[]model.Payment](t, rec); len(history) != 1 {
		t.Errorf("alice history = %+v, want one payment", history)
	}

	rec = s.do(t, http.MethodGet, "/my-payment-history?email=eve@example.com", "eve", nil)
	expectStatus(t, rec, http.StatusOK)
	if history := decode[[]model.Payment](t, rec); len(history) != 0 {
		t.Errorf("eve history = %+v, want none", history)
	}
}

func TestCheckoutUpstreamFailure(t *testing.T) {
	s := newStack(t)
	s.bookings.Bookings["b1"] = model.Booking{ID: "b1", UserEmail: "alice@example.com", TrackingID: "STYLE-1-AAAAAA", Cost: 10}
	s.gateway.Down = true

	rec := s.do(t, http.MethodPost, "/payment-checkout-session", "alice", model.CheckoutRequest{
		BookingID: "b1", TrackingID: "STYLE-1-AAAAAA", PayerEmail: "alice@example.com", ServiceName: "x", Cost: 10,
	})
	expectStatus(t, rec, http.StatusBadGateway)

	rec = s.do(t, http.MethodPatch, "/payment-success?session_id=cs_1", "alice", nil)
	expectStatus(t, rec, http.StatusBadGateway)
}

func TestDecoratorOnboarding(t *testing.T) {
	s := newStack(t)
	apply := model.ApplyRequest{Name: "Eve", Category: "wedding"}

	rec := s.do(t, http.MethodPost, "/decorator", "eve", apply)
	expectStatus(t, rec, http.StatusCreated)
	first := decode[model.ApplyResult](t, rec)

	rec = s.do(t, http.MethodPost, "/decorator", "eve", apply)
	expectStatus(t, rec, http.StatusOK)
	if again := decode[model.ApplyResult](t, rec); again.Message == "" || again.InsertedID != "" {
		t.Errorf("second apply = %+v", again)
	}

	rec = s.do(t, http.MethodGet, "/decorator-applications?applyStatus=pending", "admin", nil)
	expectStatus(t, rec, http.StatusOK)
	if queue := decode[[]model.DecoratorApplication](t, rec); len(queue) != 1 {
		t.Fatalf("queue = %+v", queue)
	}

	rec = s.do(t, http.MethodPatch, "/decorator/"+first.InsertedID, "admin", model.ReviewRequest{ApplyStatus: model.ApplyAccepted, Email: "eve@example.com"})
	expectStatus(t, rec, http.StatusOK)
	if res := decode[model.ReviewResult](t, rec); !res.RolePromoted {
		t.Errorf("review = %+v", res)
	}
	if s.users.Role("eve@example.com") != model.RoleDecorator {
		t.Error("eve not promoted")
	}

	rec = s.do(t, http.MethodGet, "/users/role", "eve", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]string](t, rec); got["role"] != "decorator" {
		t.Errorf("role = %v", got)
	}

	rec = s.do(t, http.MethodGet, "/decorators?category=wedding", "admin", nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]model.DecoratorApplication](t, rec); len(list) != 1 {
		t.Errorf("decorators = %+v", list)
	}

	rec = s.do(t, http.MethodGet, "/decorators/featured", "", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestRegisterUser(t *testing.T) {
	s := newStack(t)

	rec := s.do(t, http.MethodPost, "/users", "newbie", model.RegisterUserRequest{Name: "Newbie"})
	expectStatus(t, rec, http.StatusCreated)
	if s.users.Role("newbie@example.com") != model.RoleUser {
		t.Error("new user should start with the user role")
	}

	rec = s.do(t, http.MethodPost, "/users", "newbie", model.RegisterUserRequest{Name: "Newbie"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[model.RegisterUserResult](t, rec); got.Message == "" {
		t.Errorf("second register = %+v", got)
	}

	rec = s.do(t, http.MethodPost, "/users", "forged", model.RegisterUserRequest{})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestPackagesBrowse(t *testing.T) {
	s := newStack(t)
	for _, cost := range []float64{100, 300, 900} {
		s.do(t, http.MethodPost, "/package", "admin", model.PackageRequest{ServiceName: "Stage", Category: "wedding", Cost: cost})
	}

	rec := s.do(t, http.MethodGet, "/packages?type=wedding&min=200&max=1000&limit=1", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[[]model.Package](t, rec); len(got) != 1 || got[0].Cost < 200 {
		t.Errorf("packages = %+v", got)
	}

	rec = s.do(t, http.MethodGet, "/package/missing", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCORSPreflight(t *testing.T) {
	s := newStack(t)
	rec := s.do(t, http.MethodOptions, "/booking", "", nil)
	expectStatus(t, rec, http.StatusNoContent)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestLoggerRecordsRequest(t *testing.T) {
	s := newStack(t)
	s.hook.Reset()
	s.do(t, http.MethodGet, "/health", "", nil)

	var found *logrus.Entry
	for _, e := range s.hook.AllEntries() {
		if e.Message == "request served" {
			found = e
		}
	}
	if found == nil {
		t.Fatal("no access log entry")
	}
	if found.Data["status"] != http.StatusOK || found.Data["path"] != "/health" {
		t.Errorf("fields = %v", found.Data)
	}
}

func TestTracePassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Trace)
	r.Get("/x/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x/1", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestValidationMessage(t *testing.T) {
	h := New(Services{}, logrus.New())
	err := h.validate.Struct(model.AssignDecoratorRequest{DecoratorEmail: "not-an-email"})
	if msg := validationMessage(err); !strings.Contains(msg, "DecoratorEmail failed email") {
		t.Errorf("message = %q", msg)
	}
}
