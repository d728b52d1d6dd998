// Package fakes provides in-memory stand-ins for the repositories and
// external gateways, for use in tests.
package fakes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
)

// PackageStore is an in-memory catalog.
type PackageStore struct {
	mu       sync.Mutex
	Packages map[string]model.Package
	next     int
}

// NewPackageStore constructs an empty PackageStore.
func NewPackageStore() *PackageStore {
	return &PackageStore{Packages: make(map[string]model.Package)}
}

func (s *PackageStore) Create(_ context.Context, req model.PackageRequest) (*model.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	p := model.Package{
		ID:          fmt.Sprintf("pkg-%d", s.next),
		ServiceName: req.ServiceName,
		Category:    req.Category,
		Cost:        req.Cost,
		Description: req.Description,
		Images:      req.Images,
		CreatedAt:   time.Now().UTC().Add(time.Duration(s.next) * time.Millisecond),
	}
	s.Packages[p.ID] = p
	return &p, nil
}

func (s *PackageStore) GetByID(_ context.Context, id string) (*model.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Packages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *PackageStore) List(_ context.Context, f model.PackageFilter) ([]model.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Package
	for _, p := range s.Packages {
		if f.Search != "" && !containsFold(p.ServiceName, f.Search) {
			continue
		}
		if f.Category != "" && !containsFold(p.Category, f.Category) {
			continue
		}
		if f.MinCost > 0 && p.Cost < f.MinCost {
			continue
		}
		if f.MaxCost > 0 && p.Cost > f.MaxCost {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *PackageStore) Update(_ context.Context, id string, req model.PackageRequest) (model.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Packages[id]
	if !ok {
		return model.UpdateResult{}, repository.ErrNotFound
	}
	p.ServiceName, p.Category, p.Cost = req.ServiceName, req.Category, req.Cost
	p.Description, p.Images = req.Description, req.Images
	s.Packages[id] = p
	return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *PackageStore) Delete(_ context.Context, id string) (model.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Packages[id]; !ok {
		return model.DeleteResult{Acknowledged: true}, nil
	}
	delete(s.Packages, id)
	return model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// UserStore is an in-memory user directory. Lookups counts FindByEmail
// calls.
type UserStore struct {
	mu      sync.Mutex
	Users   map[string]model.User
	Lookups int
}

// NewUserStore constructs a UserStore seeded with users.
func NewUserStore(users ...model.User) *UserStore {
	s := &UserStore{Users: make(map[string]model.User)}
	for _, u := range users {
		s.Users[u.Email] = u
	}
	return s
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lookups++
	u, ok := s.Users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Create(_ context.Context, u *model.User) (model.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Users[u.Email]; ok {
		return model.InsertResult{}, repository.ErrDuplicate
	}
	s.Users[u.Email] = *u
	return model.InsertResult{Acknowledged: true, InsertedID: u.Email}, nil
}

// Role returns the stored role for email, or "" when absent.
func (s *UserStore) Role(email string) model.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Users[email].Role
}

// BookingStore is an in-memory booking table. Writes counts every
// successful mutation.
type BookingStore struct {
	mu       sync.Mutex
	Bookings map[string]model.Booking
	Writes   int
}

// NewBookingStore constructs a BookingStore seeded with bookings.
func NewBookingStore(bookings ...model.Booking) *BookingStore {
	s := &BookingStore{Bookings: make(map[string]model.Booking)}
	for _, b := range bookings {
		s.Bookings[b.ID] = b
	}
	return s
}

// Get returns a copy of the stored booking.
func (s *BookingStore) Get(id string) (model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	return b, ok
}

func (s *BookingStore) Create(_ context.Context, b *model.Booking) (model.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Bookings {
		if existing.TrackingID == b.TrackingID {
			return model.InsertResult{}, repository.ErrDuplicate
		}
	}
	s.Bookings[b.ID] = *b
	s.Writes++
	return model.InsertResult{Acknowledged: true, InsertedID: b.ID}, nil
}

func (s *BookingStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *BookingStore) Assign(_ context.Context, id string, req model.AssignDecoratorRequest) (model.UpdateResult, error) {
	return s.guarded(id, func(b *model.Booking) bool { return b.IsPaid() && !b.IsTerminal() }, func(b *model.Booking) {
		b.DecoratorEmail = req.DecoratorEmail
		b.DecoratorName = req.DecoratorName
		b.ServiceStatus = model.StatusAssign
	})
}

func (s *BookingStore) UpdateServiceStatus(_ context.Context, id, decoratorEmail, status string) (model.UpdateResult, error) {
	return s.guarded(id, func(b *model.Booking) bool {
		return b.DecoratorEmail == decoratorEmail && !b.IsTerminal()
	}, func(b *model.Booking) { b.ServiceStatus = status })
}

func (s *BookingStore) Cancel(_ context.Context, id string) (model.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok || b.IsPaid() {
		return model.UpdateResult{}, repository.ErrConflict
	}
	b.ServiceStatus = model.StatusCancelled
	s.Bookings[id] = b
	s.Writes++
	return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (s *BookingStore) Delete(_ context.Context, id string) (model.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Bookings[id]; !ok {
		return model.DeleteResult{Acknowledged: true}, nil
	}
	delete(s.Bookings, id)
	s.Writes++
	return model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (s *BookingStore) List(_ context.Context, f model.BookingFilter) (model.BookingPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := []model.Booking{}
	for _, b := range s.Bookings {
		if f.UserEmail != "" && b.UserEmail != f.UserEmail {
			continue
		}
		if f.DecoratorEmail != "" && b.DecoratorEmail != f.DecoratorEmail {
			continue
		}
		if f.ServiceStatus != "" && b.ServiceStatus != f.ServiceStatus {
			continue
		}
		if contains(f.ExcludeStatuses, b.ServiceStatus) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		if f.Ascending {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := model.BookingPage{Total: int64(len(matched)), Bookings: []model.Booking{}}
	if f.Skip < len(matched) {
		matched = matched[f.Skip:]
		if f.Limit > 0 && len(matched) > f.Limit {
			matched = matched[:f.Limit]
		}
		page.Bookings = matched
	}
	return page, nil
}

// guarded applies fn when ok holds for the stored booking, mirroring the
// conditional UPDATEs of the repository.
func (s *BookingStore) guarded(id string, ok func(*model.Booking) bool, fn func(*model.Booking)) (model.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, found := s.Bookings[id]
	if !found || !ok(&b) {
		return model.UpdateResult{}, repository.ErrConflict
	}
	fn(&b)
	s.Bookings[id] = b
	s.Writes++
	return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

// PaymentStore is an in-memory payment ledger keyed by transaction id. It
// applies reconciliations to the given BookingStore the way the database
// transaction does.
type PaymentStore struct {
	mu       sync.Mutex
	Payments map[string]model.Payment
	bookings *BookingStore
}

// NewPaymentStore constructs a PaymentStore writing through to bookings.
func NewPaymentStore(bookings *BookingStore) *PaymentStore {
	return &PaymentStore{Payments: make(map[string]model.Payment), bookings: bookings}
}

// Count returns the number of recorded payments.
func (s *PaymentStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Payments)
}

func (s *PaymentStore) FindByTransactionID(_ context.Context, transactionID string) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Payments[transactionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *PaymentStore) ListByCustomer(_ context.Context, email string) ([]model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Payment{}
	for _, p := range s.Payments {
		if p.CustomerEmail == email {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (s *PaymentStore) Record(_ context.Context, rec model.Reconciliation) (model.UpdateResult, model.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Payments[rec.TransactionID]; ok {
		return model.UpdateResult{}, model.InsertResult{}, repository.ErrAlreadyReconciled
	}

	s.bookings.mu.Lock()
	defer s.bookings.mu.Unlock()
	b, ok := s.bookings.Bookings[rec.BookingID]
	if !ok {
		return model.UpdateResult{}, model.InsertResult{}, repository.ErrNotFound
	}
	res := model.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if b.TransactionID == "" || b.TransactionID == rec.TransactionID {
		paidAt := rec.PaidAt
		b.PaymentStatus = rec.PaymentStatus
		b.TransactionID = rec.TransactionID
		b.ServiceStatus = model.StatusPending
		b.PaidAt = &paidAt
		s.bookings.Bookings[b.ID] = b
		s.bookings.Writes++
		res.ModifiedCount = 1
	}

	s.Payments[rec.TransactionID] = rec.Payment
	return res, model.InsertResult{Acknowledged: true, InsertedID: rec.Payment.ID}, nil
}

// DecoratorStore is an in-memory application table. Review promotes users
// in the given UserStore.
type DecoratorStore struct {
	mu           sync.Mutex
	Applications map[string]model.DecoratorApplication
	users        *UserStore
}

// NewDecoratorStore constructs a DecoratorStore promoting through users.
func NewDecoratorStore(users *UserStore) *DecoratorStore {
	return &DecoratorStore{Applications: make(map[string]model.DecoratorApplication), users: users}
}

// Put stores an application as given.
func (s *DecoratorStore) Put(a model.DecoratorApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Applications[a.ID] = a
}

func (s *DecoratorStore) Create(_ context.Context, a *model.DecoratorApplication) (model.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Applications {
		if existing.Email == a.Email {
			return model.InsertResult{}, repository.ErrDuplicate
		}
	}
	s.Applications[a.ID] = *a
	return model.InsertResult{Acknowledged: true, InsertedID: a.ID}, nil
}

func (s *DecoratorStore) GetByID(_ context.Context, id string) (*model.DecoratorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *DecoratorStore) FindByEmail(_ context.Context, email string) (*model.DecoratorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Applications {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *DecoratorStore) Review(_ context.Context, id string, status model.ApplyStatus, promoteEmail string) (model.ReviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Applications[id]
	if !ok || a.ApplyStatus != model.ApplyPending {
		return model.ReviewResult{}, repository.ErrConflict
	}
	now := time.Now().UTC()
	a.ApplyStatus = status
	a.ReviewedAt = &now
	s.Applications[id] = a

	res := model.ReviewResult{UpdateResult: model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}}
	if promoteEmail != "" {
		s.users.mu.Lock()
		if u, ok := s.users.Users[promoteEmail]; ok && u.Role == model.RoleUser {
			u.Role = model.RoleDecorator
			s.users.Users[promoteEmail] = u
			res.RolePromoted = true
		}
		s.users.mu.Unlock()
	}
	return res, nil
}

func (s *DecoratorStore) List(_ context.Context, f model.DecoratorFilter) ([]model.DecoratorApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.DecoratorApplication{}
	for _, a := range s.Applications {
		if f.ApplyStatus != "" && a.ApplyStatus != f.ApplyStatus {
			continue
		}
		if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
