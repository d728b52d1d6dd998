package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

const applicationColumns = `id, email, name, category, experience, photo, apply_status, created_at, reviewed_at`

// DecoratorRepository handles persistence for decorator applications.
type DecoratorRepository struct {
	db *pgxpool.Pool
}

// NewDecoratorRepository constructs a DecoratorRepository.
func NewDecoratorRepository(db *pgxpool.Pool) *DecoratorRepository {
	return &DecoratorRepository{db: db}
}

func scanApplication(row pgx.Row) (*model.DecoratorApplication, error) {
	var a model.DecoratorApplication
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Category, &a.Experience, &a.Photo,
		&a.ApplyStatus, &a.CreatedAt, &a.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an application. A second application for the same email
// is rejected with ErrDuplicate by the UNIQUE constraint.
func (r *DecoratorRepository) Create(ctx context.Context, a *model.DecoratorApplication) (model.InsertResult, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO decorator_applications (id, email, name, category, experience, photo, apply_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Email, a.Name, a.Category, a.Experience, a.Photo, a.ApplyStatus, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InsertResult{}, ErrDuplicate
		}
		return model.InsertResult{}, fmt.Errorf("insert application: %w", err)
	}
	return model.InsertResult{Acknowledged: true, InsertedID: a.ID}, nil
}

// GetByID returns a single application or ErrNotFound.
func (r *DecoratorRepository) GetByID(ctx context.Context, id string) (*model.DecoratorApplication, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByEmail returns the application submitted by email or ErrNotFound.
func (r *DecoratorRepository) FindByEmail(ctx context.Context, email string) (*model.DecoratorApplication, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *DecoratorRepository) findOne(ctx context.Context, cond string, arg any) (*model.DecoratorApplication, error) {
	a, err := scanApplication(r.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM decorator_applications WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// Review moves a pending application to status and, when promoteEmail is
// set, promotes that user to decorator in the same transaction. Admins are
// never demoted. An application that is no longer pending yields ErrConflict.
func (r *DecoratorRepository) Review(ctx context.Context, id string, status model.ApplyStatus, promoteEmail string) (model.ReviewResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	tag, err := tx.Exec(ctx,
		`UPDATE decorator_applications SET apply_status = $2, reviewed_at = $3
		 WHERE id = $1 AND apply_status = $4`,
		id, status, time.Now().UTC(), model.ApplyPending,
	)
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ReviewResult{}, ErrConflict
	}

	result := model.ReviewResult{UpdateResult: updated(tag.RowsAffected())}
	if promoteEmail != "" {
		tag, err = tx.Exec(ctx,
			`UPDATE users SET role = $2 WHERE email = $1 AND role = $3`,
			promoteEmail, model.RoleDecorator, model.RoleUser,
		)
		if err != nil {
			return model.ReviewResult{}, fmt.Errorf("promote user: %w", err)
		}
		result.RolePromoted = tag.RowsAffected() > 0
	}

	if err = tx.Commit(ctx); err != nil {
		return model.ReviewResult{}, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}

// List returns applications matching the filter, oldest first.
func (r *DecoratorRepository) List(ctx context.Context, f model.DecoratorFilter) ([]model.DecoratorApplication, error) {
	where, args := decoratorWhere(f)
	query := `SELECT ` + applicationColumns + ` FROM decorator_applications` + where + " ORDER BY created_at ASC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := []model.DecoratorApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// decoratorWhere matches category exactly, ignoring case, so caller input is
// never read as a pattern.
func decoratorWhere(f model.DecoratorFilter) (string, []any) {
	var conds []string
	var args []any
	if f.ApplyStatus != "" {
		args = append(args, f.ApplyStatus)
		conds = append(conds, fmt.Sprintf("apply_status = $%d", len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		conds = append(conds, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
