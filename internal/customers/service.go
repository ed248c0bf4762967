package customers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/aabid-khan7222/atoz-inventory-sub002/internal/shared"
)

// Service wraps the repository with validation and pagination.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Get returns one customer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of customers. A failed fetch degrades to an empty list
// wrapped in ErrUnavailable so callers can keep the rest of the form usable
// and offer a retry.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Customer, shared.Pagination, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.Pagination{}, err
	}
	page := shared.NewPagination(req.Page, req.PerPage, 0)

	items, total, err := s.repo.List(ctx, req.Search, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("%w: %v", shared.ErrUnavailable, err)
	}
	return items, shared.NewPagination(page.Page, page.PerPage, total), nil
}
