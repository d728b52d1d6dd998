package service_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/service"
	"github.com/Shivanand-hulikatti/styledecor/internal/testkit/fakes"
)

const (
	alice = "alice@example.com"
	eve   = "eve@example.com"
	dora  = "dora@example.com"
	dan   = "dan@example.com"
	admin = "admin@example.com"
)

type env struct {
	packages *fakes.PackageStore
	users    *fakes.UserStore
	bookings *fakes.BookingStore
	payments *fakes.PaymentStore
	apps     *fakes.DecoratorStore
	gateway  *fakes.Gateway
	pub      *fakes.Publisher

	booking   *service.BookingService
	payment   *service.PaymentService
	decorator *service.DecoratorService
	catalog   *service.CatalogService
	user      *service.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log, _ := test.NewNullLogger()

	e := &env{
		packages: fakes.NewPackageStore(),
		users: fakes.NewUserStore(
			model.User{Email: alice, Name: "Alice", Role: model.RoleUser},
			model.User{Email: eve, Name: "Eve", Role: model.RoleUser},
			model.User{Email: dora, Name: "Dora", Role: model.RoleDecorator},
			model.User{Email: dan, Name: "Dan", Role: model.RoleDecorator},
			model.User{Email: admin, Name: "Admin", Role: model.RoleAdmin},
		),
		bookings: fakes.NewBookingStore(),
		gateway:  fakes.NewGateway(),
		pub:      &fakes.Publisher{},
	}
	e.payments = fakes.NewPaymentStore(e.bookings)
	e.apps = fakes.NewDecoratorStore(e.users)

	e.booking = service.NewBookingService(e.bookings, e.packages, e.users, e.pub, log)
	e.payment = service.NewPaymentService(e.bookings, e.payments, e.users, e.gateway, e.pub, log)
	e.decorator = service.NewDecoratorService(e.apps, e.pub, log)
	e.catalog = service.NewCatalogService(e.packages)
	e.user = service.NewUserService(e.users)
	return e
}

func caller(email string) model.Caller {
	return model.Caller{Email: email}
}

// paidBooking returns a booking already reconciled under transactionID.
func paidBooking(id, owner, transactionID string) model.Booking {
	paidAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return model.Booking{
		ID:            id,
		UserEmail:     owner,
		PackageID:     "pkg-x",
		ServiceName:   "Birthday Setup",
		Cost:          250,
		TrackingID:    "STYLE-" + id + "-AAAAAA",
		ServiceStatus: model.StatusPending,
		PaymentStatus: "paid",
		TransactionID: transactionID,
		CreatedAt:     paidAt.Add(-time.Hour),
		PaidAt:        &paidAt,
	}
}

func unpaidBooking(id, owner string) model.Booking {
	return model.Booking{
		ID:          id,
		UserEmail:   owner,
		PackageID:   "pkg-x",
		ServiceName: "Birthday Setup",
		Cost:        250,
		TrackingID:  "STYLE-" + id + "-BBBBBB",
		CreatedAt:   time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}
