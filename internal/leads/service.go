package leads

import (
	"context"

	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/pagination"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

// Service exposes the catalog browsing surface.
type Service interface {
	List(ctx context.Context, filters types.FilterSnapshot, params pagination.Params) (*LeadList, error)
	Facets(ctx context.Context, filters types.FilterSnapshot) (*Facets, error)
	Summary(ctx context.Context, filters types.FilterSnapshot) (*SelectionSummary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filters types.FilterSnapshot, params pagination.Params) (*LeadList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing leads")
	}
	return list, nil
}

func (s *service) Facets(ctx context.Context, filters types.FilterSnapshot) (*Facets, error) {
	facets, err := s.repo.Facets(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading facets")
	}
	return facets, nil
}

func (s *service) Summary(ctx context.Context, filters types.FilterSnapshot) (*SelectionSummary, error) {
	summary, err := s.repo.Summary(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarizing selection")
	}
	return summary, nil
}
