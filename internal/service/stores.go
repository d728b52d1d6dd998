package service

import (
	"context"

	"github.com/Shivanand-hulikatti/styledecor/internal/checkout"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

// PackageStore persists catalog packages.
type PackageStore interface {
	Create(ctx context.Context, req model.PackageRequest) (*model.Package, error)
	GetByID(ctx context.Context, id string) (*model.Package, error)
	List(ctx context.Context, f model.PackageFilter) ([]model.Package, error)
	Update(ctx context.Context, id string, req model.PackageRequest) (model.UpdateResult, error)
	Delete(ctx context.Context, id string) (model.DeleteResult, error)
}

// UserStore persists marketplace users.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) (model.InsertResult, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) (model.InsertResult, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Assign(ctx context.Context, id string, req model.AssignDecoratorRequest) (model.UpdateResult, error)
	UpdateServiceStatus(ctx context.Context, id, decoratorEmail, status string) (model.UpdateResult, error)
	Cancel(ctx context.Context, id string) (model.UpdateResult, error)
	Delete(ctx context.Context, id string) (model.DeleteResult, error)
	List(ctx context.Context, f model.BookingFilter) (model.BookingPage, error)
}

// PaymentStore persists the payment ledger. Record applies a reconciliation
// atomically and reports repository.ErrAlreadyReconciled for a transaction
// id it has already seen.
type PaymentStore interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error)
	ListByCustomer(ctx context.Context, email string) ([]model.Payment, error)
	Record(ctx context.Context, rec model.Reconciliation) (model.UpdateResult, model.InsertResult, error)
}

// DecoratorStore persists decorator applications.
type DecoratorStore interface {
	Create(ctx context.Context, a *model.DecoratorApplication) (model.InsertResult, error)
	GetByID(ctx context.Context, id string) (*model.DecoratorApplication, error)
	FindByEmail(ctx context.Context, email string) (*model.DecoratorApplication, error)
	Review(ctx context.Context, id string, status model.ApplyStatus, promoteEmail string) (model.ReviewResult, error)
	List(ctx context.Context, f model.DecoratorFilter) ([]model.DecoratorApplication, error)
}

// Gateway opens and retrieves hosted checkout sessions.
type Gateway interface {
	CreateSession(ctx context.Context, req checkout.SessionRequest) (checkout.Session, error)
	RetrieveSession(ctx context.Context, id string) (checkout.Session, error)
}
