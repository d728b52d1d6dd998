package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

const bookingColumns = `id, user_email, user_name, package_id, service_name, service_category, cost,
	booking_date, location, tracking_id,
	COALESCE(service_status, ''), COALESCE(payment_status, ''),
	COALESCE(decorator_email, ''), COALESCE(decorator_name, ''), COALESCE(transaction_id, ''),
	created_at, paid_at`

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID, &b.UserEmail, &b.UserName, &b.PackageID, &b.ServiceName, &b.ServiceCategory, &b.Cost,
		&b.BookingDate, &b.Location, &b.TrackingID,
		&b.ServiceStatus, &b.PaymentStatus,
		&b.DecoratorEmail, &b.DecoratorName, &b.TransactionID,
		&b.CreatedAt, &b.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a booking as given. Payment and service state columns are
// left NULL.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) (model.InsertResult, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bookings (id, user_email, user_name, package_id, service_name, service_category, cost,
		                       booking_date, location, tracking_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.UserEmail, b.UserName, b.PackageID, b.ServiceName, b.ServiceCategory, b.Cost,
		b.BookingDate, b.Location, b.TrackingID, b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InsertResult{}, ErrDuplicate
		}
		return model.InsertResult{}, fmt.Errorf("insert booking: %w", err)
	}
	return model.InsertResult{Acknowledged: true, InsertedID: b.ID}, nil
}

// GetByID returns a single booking or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// Assign records the decorator on a booking and moves it to "assign". Only
// paid, non-terminal bookings are updated; anything else is ErrConflict.
func (r *BookingRepository) Assign(ctx context.Context, id string, req model.AssignDecoratorRequest) (model.UpdateResult, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings
		 SET decorator_email = $2, decorator_name = NULLIF($3, ''), service_status = $4
		 WHERE id = $1 AND payment_status IS NOT NULL
		   AND COALESCE(service_status, '') NOT IN ($5, $6)`,
		id, req.DecoratorEmail, req.DecoratorName, model.StatusAssign,
		model.StatusCompleted, model.StatusCancelled,
	)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("assign decorator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.UpdateResult{}, ErrConflict
	}
	return updated(tag.RowsAffected()), nil
}

// UpdateServiceStatus overwrites service_status while the booking is still
// assigned to decoratorEmail and not terminal. Otherwise it is ErrConflict.
func (r *BookingRepository) UpdateServiceStatus(ctx context.Context, id, decoratorEmail, status string) (model.UpdateResult, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET service_status = $3
		 WHERE id = $1 AND decorator_email = $2
		   AND COALESCE(service_status, '') NOT IN ($4, $5)`,
		id, decoratorEmail, status, model.StatusCompleted, model.StatusCancelled,
	)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("update service status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.UpdateResult{}, ErrConflict
	}
	return updated(tag.RowsAffected()), nil
}

// Cancel marks an unpaid booking cancelled. A booking that was paid in the
// meantime is left alone and reported as ErrConflict.
func (r *BookingRepository) Cancel(ctx context.Context, id string) (model.UpdateResult, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET service_status = $2 WHERE id = $1 AND payment_status IS NULL`,
		id, model.StatusCancelled,
	)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.UpdateResult{}, ErrConflict
	}
	return updated(tag.RowsAffected()), nil
}

// Delete hard-deletes a booking. Payments are kept.
func (r *BookingRepository) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return model.DeleteResult{}, fmt.Errorf("delete booking: %w", err)
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

// List returns one page of bookings matching the filter together with the
// total number of matches.
func (r *BookingRepository) List(ctx context.Context, f model.BookingFilter) (model.BookingPage, error) {
	where, args := bookingWhere(f)

	var page model.BookingPage
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&page.Total); err != nil {
		return model.BookingPage{}, fmt.Errorf("count bookings: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings` + where + bookingOrder(f)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Skip > 0 {
		args = append(args, f.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.BookingPage{}, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	page.Bookings = []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return model.BookingPage{}, fmt.Errorf("scan booking: %w", err)
		}
		page.Bookings = append(page.Bookings, *b)
	}
	return page, rows.Err()
}

func bookingWhere(f model.BookingFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserEmail != "" {
		add("user_email = $%d", f.UserEmail)
	}
	if f.DecoratorEmail != "" {
		add("decorator_email = $%d", f.DecoratorEmail)
	}
	if f.ServiceStatus != "" {
		add("service_status = $%d", f.ServiceStatus)
	}
	if len(f.ExcludeStatuses) > 0 {
		// A booking with no status yet counts as "not in" the list.
		add("COALESCE(service_status, '') <> ALL($%d)", f.ExcludeStatuses)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func bookingOrder(f model.BookingFilter) string {
	if f.Ascending {
		return " ORDER BY created_at ASC"
	}
	return " ORDER BY created_at DESC"
}

func updated(n int64) model.UpdateResult {
	return model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}
}
