package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

// CatalogService manages decoration packages.
type CatalogService struct {
	packages PackageStore
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(packages PackageStore) *CatalogService {
	return &CatalogService{packages: packages}
}

// CreatePackage validates the request and delegates to the repository.
func (s *CatalogService) CreatePackage(ctx context.Context, req model.PackageRequest) (*model.Package, error) {
	req, err := normalizePackage(req)
	if err != nil {
		return nil, err
	}
	return s.packages.Create(ctx, req)
}

// GetPackage returns a single package by ID.
func (s *CatalogService) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	return s.packages.GetByID(ctx, id)
}

// ListPackages returns packages matching the filter.
func (s *CatalogService) ListPackages(ctx context.Context, f model.PackageFilter) ([]model.Package, error) {
	if f.Limit < 0 || f.MinCost < 0 || f.MaxCost < 0 {
		return nil, fmt.Errorf("%w: limit and cost bounds must not be negative", ErrInvalid)
	}
	if f.MaxCost > 0 && f.MinCost > f.MaxCost {
		return nil, fmt.Errorf("%w: min cost exceeds max cost", ErrInvalid)
	}
	packages, err := s.packages.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if packages == nil {
		packages = []model.Package{}
	}
	return packages, nil
}

// UpdatePackage replaces the editable fields of a package.
func (s *CatalogService) UpdatePackage(ctx context.Context, id string, req model.PackageRequest) (model.UpdateResult, error) {
	req, err := normalizePackage(req)
	if err != nil {
		return model.UpdateResult{}, err
	}
	return s.packages.Update(ctx, id, req)
}

// DeletePackage removes a package.
func (s *CatalogService) DeletePackage(ctx context.Context, id string) (model.DeleteResult, error) {
	return s.packages.Delete(ctx, id)
}

func normalizePackage(req model.PackageRequest) (model.PackageRequest, error) {
	req.ServiceName = strings.TrimSpace(req.ServiceName)
	req.Category = strings.TrimSpace(req.Category)
	if req.ServiceName == "" || req.Category == "" {
		return req, fmt.Errorf("%w: service_name and service_category are required", ErrInvalid)
	}
	if req.Cost <= 0 {
		return req, fmt.Errorf("%w: cost must be positive", ErrInvalid)
	}
	return req, nil
}
