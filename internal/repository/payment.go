package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

const paymentColumns = `id, transaction_id, tracking_id, booking_id, package_id, service_name,
	amount, currency, customer_email, payment_status, paid_at`

// PaymentRepository handles persistence for the payment ledger. Rows are
// never updated or deleted.
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.TransactionID, &p.TrackingID, &p.BookingID, &p.PackageID, &p.ServiceName,
		&p.Amount, &p.Currency, &p.CustomerEmail, &p.PaymentStatus, &p.PaidAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByTransactionID returns the payment recorded for a gateway
// transaction or ErrNotFound.
func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1`, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByCustomer returns every payment made by the email, newest first.
func (r *PaymentRepository) ListByCustomer(ctx context.Context, email string) ([]model.Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE customer_email = $1 ORDER BY paid_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// Record applies a reconciled checkout session: it marks the booking paid
// and inserts the payment row in one transaction.
//
// Two reconciliations of the same session may run concurrently. The booking
// row is locked with SELECT ... FOR UPDATE so the second caller blocks until
// the first commits, then finds the payment row and gets
// ErrAlreadyReconciled. The UNIQUE constraint on payments.transaction_id
// catches anything that slips past the lock.
//
// A booking already paid under a different transaction keeps its original
// payment fields; the new payment is still recorded and the booking update
// reports zero modified rows.
func (r *PaymentRepository) Record(ctx context.Context, rec model.Reconciliation) (model.UpdateResult, model.InsertResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.UpdateResult{}, model.InsertResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	// Step 1: lock the booking row.
	var currentTx string
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(transaction_id, '') FROM bookings WHERE id = $1 FOR UPDATE`,
		rec.BookingID,
	).Scan(&currentTx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UpdateResult{}, model.InsertResult{}, ErrNotFound
		}
		return model.UpdateResult{}, model.InsertResult{}, fmt.Errorf("lock booking row: %w", err)
	}

	// Step 2: re-check the ledger under the lock.
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE transaction_id = $1)`, rec.TransactionID,
	).Scan(&exists)
	if err != nil {
		return model.UpdateResult{}, model.InsertResult{}, fmt.Errorf("check payment: %w", err)
	}
	if exists {
		return model.UpdateResult{}, model.InsertResult{}, ErrAlreadyReconciled
	}

	// Step 3: mark the booking paid, unless another transaction already did.
	bookingResult := model.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if currentTx == "" || currentTx == rec.TransactionID {
		tag, err := tx.Exec(ctx,
			`UPDATE bookings
			 SET payment_status = $2, transaction_id = $3, service_status = $4, paid_at = $5
			 WHERE id = $1`,
			rec.BookingID, rec.PaymentStatus, rec.TransactionID, model.StatusPending, rec.PaidAt,
		)
		if err != nil {
			return model.UpdateResult{}, model.InsertResult{}, fmt.Errorf("update booking: %w", err)
		}
		bookingResult.ModifiedCount = tag.RowsAffected()
	}

	// Step 4: append to the ledger.
	p := rec.Payment
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO payments (id, transaction_id, tracking_id, booking_id, package_id, service_name,
		                       amount, currency, customer_email, payment_status, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.TransactionID, p.TrackingID, p.BookingID, p.PackageID, p.ServiceName,
		p.Amount, p.Currency, p.CustomerEmail, p.PaymentStatus, p.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.UpdateResult{}, model.InsertResult{}, ErrAlreadyReconciled
		}
		return model.UpdateResult{}, model.InsertResult{}, fmt.Errorf("insert payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return model.UpdateResult{}, model.InsertResult{}, fmt.Errorf("commit transaction: %w", err)
	}
	return bookingResult, model.InsertResult{Acknowledged: true, InsertedID: p.ID}, nil
}
