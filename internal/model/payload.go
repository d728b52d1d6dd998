package model

// CreateBookingRequest is the payload for booking a package. Name, category
// and cost are always taken from the stored package.
type CreateBookingRequest struct {
	UserName        string  `json:"userName"`
	PackageID       string  `json:"packageId" validate:"required"`
	ServiceName     string  `json:"service_name"`
	ServiceCategory string  `json:"service_category"`
	Cost            float64 `json:"cost"`
	BookingDate     string  `json:"bookingDate"`
	Location        string  `json:"location"`
}

// AssignDecoratorRequest is merged into a booking when an admin assigns it.
type AssignDecoratorRequest struct {
	DecoratorEmail string `json:"decoratorEmail" validate:"required,email"`
	DecoratorName  string `json:"decoratorName"`
}

// ProgressRequest carries a decorator-reported service status.
type ProgressRequest struct {
	ServiceStatus string `json:"serviceStatus"`
}

// CheckoutRequest is the payload for opening a hosted checkout session.
// Cost is in major currency units. PayerEmail defaults to the caller and may
// not name anyone else.
type CheckoutRequest struct {
	BookingID   string  `json:"bookingId" validate:"required"`
	TrackingID  string  `json:"trakingId" validate:"required"`
	PackageID   string  `json:"packageId"`
	PayerEmail  string  `json:"customer_email" validate:"omitempty,email"`
	ServiceName string  `json:"service_name" validate:"required"`
	Image       string  `json:"image"`
	Cost        float64 `json:"cost" validate:"gt=0"`
}

// ApplyRequest is a decorator application profile.
type ApplyRequest struct {
	Name       string `json:"name" validate:"required"`
	Category   string `json:"category" validate:"required"`
	Experience string `json:"experience"`
	Photo      string `json:"photo"`
}

// ReviewRequest accepts or rejects a decorator application. Email is
// optional and must match the application when supplied.
type ReviewRequest struct {
	ApplyStatus ApplyStatus `json:"applyStatus" validate:"required,oneof=accepted rejected"`
	Email       string      `json:"email" validate:"omitempty,email"`
}

// RegisterUserRequest is sent by clients on first sign-in.
type RegisterUserRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// PackageRequest is the payload for creating or editing a catalog package.
type PackageRequest struct {
	ServiceName string   `json:"service_name" validate:"required"`
	Category    string   `json:"service_category" validate:"required"`
	Cost        float64  `json:"cost" validate:"gt=0"`
	Description string   `json:"description"`
	Images      []string `json:"images" validate:"dive,url"`
}

// InsertResult reports the outcome of a single insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId,omitempty"`
}

// UpdateResult reports the outcome of a single-document update.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult reports the outcome of a delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// CreateBookingResponse is returned from booking creation.
type CreateBookingResponse struct {
	InsertResult
	TrackingID string `json:"trakingId"`
}

// CheckoutResponse carries the hosted checkout redirect.
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// ReconcileResult is returned from payment reconciliation. When
// AlreadyCompleted is set no write happened and the identifiers are those
// of the original reconciliation.
type ReconcileResult struct {
	Success          bool          `json:"success"`
	AlreadyCompleted bool          `json:"alreadyCompleted,omitempty"`
	Message          string        `json:"message,omitempty"`
	TransactionID    string        `json:"transactionId"`
	TrackingID       string        `json:"trakingId"`
	ModifyBooking    *UpdateResult `json:"modifyBooking,omitempty"`
	PaymentResult    *InsertResult `json:"paymentResult,omitempty"`
}

// ApplyResult is returned from a decorator application. A repeated
// application yields a message and no InsertedID.
type ApplyResult struct {
	Message    string `json:"message,omitempty"`
	InsertedID string `json:"insertedId,omitempty"`
}

// ReviewResult reports the outcome of an application review.
type ReviewResult struct {
	UpdateResult
	RolePromoted bool `json:"rolePromoted"`
}

// RegisterUserResult reports whether a new user row was created.
type RegisterUserResult struct {
	Message    string `json:"message,omitempty"`
	InsertedID string `json:"insertedId,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ForbiddenResponse additionally reports the caller's actual role.
type ForbiddenResponse struct {
	Error string `json:"error"`
	Role  Role   `json:"role"`
}
