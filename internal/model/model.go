// Package model defines the core domain types for the decoration booking
// marketplace.
package model

import "time"

// Role is the marketplace role attached to a User.
type Role string

const (
	RoleUser      Role = "user"
	RoleDecorator Role = "decorator"
	RoleAdmin     Role = "admin"
)

// Service statuses owned by the booking engine. Decorators report free-form
// progress labels between StatusAssign and StatusCompleted.
const (
	StatusPending   = "pending"
	StatusAssign    = "assign"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ApplyStatus is the review state of a DecoratorApplication.
type ApplyStatus string

const (
	ApplyPending  ApplyStatus = "pending"
	ApplyAccepted ApplyStatus = "accepted"
	ApplyRejected ApplyStatus = "rejected"
)

// Package is a decoration service offering from the catalog.
type Package struct {
	ID          string    `json:"_id"`
	ServiceName string    `json:"service_name"`
	Category    string    `json:"service_category"`
	Cost        float64   `json:"cost"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Booking is a customer's request to purchase a Package and have it
// delivered. ServiceStatus, PaymentStatus and TransactionID stay empty
// until a checkout session is reconciled against the booking.
type Booking struct {
	ID              string     `json:"_id"`
	UserEmail       string     `json:"userEmail"`
	UserName        string     `json:"userName,omitempty"`
	PackageID       string     `json:"packageId"`
	ServiceName     string     `json:"service_name"`
	ServiceCategory string     `json:"service_category"`
	Cost            float64    `json:"cost"`
	BookingDate     string     `json:"bookingDate,omitempty"`
	Location        string     `json:"location,omitempty"`
	TrackingID      string     `json:"trakingId"`
	ServiceStatus   string     `json:"serviceStatus,omitempty"`
	PaymentStatus   string     `json:"paymentStatus,omitempty"`
	DecoratorEmail  string     `json:"decoratorEmail,omitempty"`
	DecoratorName   string     `json:"decoratorName,omitempty"`
	TransactionID   string     `json:"transactionId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	PaidAt          *time.Time `json:"payAt,omitempty"`
}

// IsPaid reports whether a checkout session has been applied to the booking.
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus != ""
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	return b.ServiceStatus == StatusCompleted || b.ServiceStatus == StatusCancelled
}

// Payment is an immutable ledger entry for one successful checkout.
// Amount is in the gateway's minor currency unit.
type Payment struct {
	ID            string    `json:"_id"`
	TransactionID string    `json:"transactionId"`
	TrackingID    string    `json:"trakingId"`
	BookingID     string    `json:"bookingId"`
	PackageID     string    `json:"packageId"`
	ServiceName   string    `json:"service_name"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	CustomerEmail string    `json:"customer_email"`
	PaymentStatus string    `json:"paymentStatus"`
	PaidAt        time.Time `json:"paidAt"`
}

// DecoratorApplication is a user's request to become a decorator.
type DecoratorApplication struct {
	ID          string      `json:"_id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Experience  string      `json:"experience,omitempty"`
	Photo       string      `json:"photo,omitempty"`
	ApplyStatus ApplyStatus `json:"applyStatus"`
	CreatedAt   time.Time   `json:"createdAt"`
	ReviewedAt  *time.Time  `json:"reviewedAt,omitempty"`
}

// User is a marketplace account keyed by email.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reconciliation carries everything written when a checkout session is
// applied to a booking: the booking update and the new Payment row.
type Reconciliation struct {
	BookingID     string
	TransactionID string
	PaymentStatus string
	PaidAt        time.Time
	Payment       Payment
}

// BookingFilter narrows a booking listing. ExcludeStatuses treats a booking
// without a service status as "not in" the list.
type BookingFilter struct {
	UserEmail       string
	DecoratorEmail  string
	ServiceStatus   string
	ExcludeStatuses []string
	Limit           int
	Skip            int
	Ascending       bool
}

// BookingPage is one page of bookings together with the unpaged total.
type BookingPage struct {
	Bookings []Booking `json:"bookings"`
	Total    int64     `json:"total"`
}

// PackageFilter narrows a catalog listing.
type PackageFilter struct {
	Search   string
	Category string
	MinCost  float64
	MaxCost  float64
	Limit    int
}

// DecoratorFilter narrows a decorator application listing.
type DecoratorFilter struct {
	ApplyStatus ApplyStatus
	Category    string
	Limit       int
}

// Caller is the authenticated identity an operation runs on behalf of.
// Role is empty when the route did not require a role lookup.
type Caller struct {
	Email string
	Role  Role
}
