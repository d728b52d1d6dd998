package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

const packageColumns = `id, service_name, service_category, cost, description, images, created_at`

// PackageRepository handles persistence for catalog packages.
type PackageRepository struct {
	db *pgxpool.Pool
}

// NewPackageRepository constructs a PackageRepository.
func NewPackageRepository(db *pgxpool.Pool) *PackageRepository {
	return &PackageRepository{db: db}
}

// Create inserts a new package with a generated UUID.
func (r *PackageRepository) Create(ctx context.Context, req model.PackageRequest) (*model.Package, error) {
	p := &model.Package{
		ID:          uuid.New().String(),
		ServiceName: req.ServiceName,
		Category:    req.Category,
		Cost:        req.Cost,
		Description: req.Description,
		Images:      req.Images,
		CreatedAt:   time.Now().UTC(),
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO packages (id, service_name, service_category, cost, description, images, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ServiceName, p.Category, p.Cost, p.Description, p.Images, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert package: %w", err)
	}
	return p, nil
}

// GetByID returns a single package or ErrNotFound.
func (r *PackageRepository) GetByID(ctx context.Context, id string) (*model.Package, error) {
	var p model.Package
	err := r.db.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id,
	).Scan(&p.ID, &p.ServiceName, &p.Category, &p.Cost, &p.Description, &p.Images, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get package: %w", err)
	}
	return &p, nil
}

// List returns packages matching the filter, newest first. Search and
// category are case-insensitive substring matches.
func (r *PackageRepository) List(ctx context.Context, f model.PackageFilter) ([]model.Package, error) {
	where, args := packageWhere(f)
	query := `SELECT ` + packageColumns + ` FROM packages` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []model.Package
	for rows.Next() {
		var p model.Package
		if err := rows.Scan(&p.ID, &p.ServiceName, &p.Category, &p.Cost, &p.Description, &p.Images, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// Update replaces the editable fields of a package.
func (r *PackageRepository) Update(ctx context.Context, id string, req model.PackageRequest) (model.UpdateResult, error) {
	images := req.Images
	if images == nil {
		images = []string{}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE packages
		 SET service_name = $2, service_category = $3, cost = $4, description = $5, images = $6
		 WHERE id = $1`,
		id, req.ServiceName, req.Category, req.Cost, req.Description, images,
	)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("update package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.UpdateResult{}, ErrNotFound
	}
	return updated(tag.RowsAffected()), nil
}

// Delete removes a package. Existing bookings keep their copied fields.
func (r *PackageRepository) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return model.DeleteResult{}, fmt.Errorf("delete package: %w", err)
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

func packageWhere(f model.PackageFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		add("service_name ILIKE '%%' || $%d || '%%'", s)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		add("service_category ILIKE '%%' || $%d || '%%'", c)
	}
	if f.MinCost > 0 {
		add("cost >= $%d", f.MinCost)
	}
	if f.MaxCost > 0 {
		add("cost <= $%d", f.MaxCost)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
