package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diskleads/leadmarket-backend/internal/leads"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/pagination"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

type stubLeadsService struct {
	list    *leads.LeadList
	facets  *leads.Facets
	summary *leads.SelectionSummary
	err     error

	lastFilters types.FilterSnapshot
	lastParams  pagination.Params
}

func (s *stubLeadsService) List(_ context.Context, filters types.FilterSnapshot, params pagination.Params) (*leads.LeadList, error) {
	s.lastFilters = filters
	s.lastParams = params
	return s.list, s.err
}

func (s *stubLeadsService) Facets(_ context.Context, filters types.FilterSnapshot) (*leads.Facets, error) {
	s.lastFilters = filters
	return s.facets, s.err
}

func (s *stubLeadsService) Summary(_ context.Context, filters types.FilterSnapshot) (*leads.SelectionSummary, error) {
	s.lastFilters = filters
	return s.summary, s.err
}

func TestLeadsListParsesQueryFilters(t *testing.T) {
	t.Parallel()

	svc := &stubLeadsService{list: &leads.LeadList{}}
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/leads?segments=Alimenta%C3%A7%C3%A3o,Automotivo&states=SP&rating_min=4&website=with&limit=25&cursor=abc", nil)
	rec := httptest.NewRecorder()

	LeadsList(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Alimentação", "Automotivo"}, svc.lastFilters.Segments)
	assert.Equal(t, []string{"SP"}, svc.lastFilters.States)
	assert.Equal(t, 4.0, svc.lastFilters.RatingMin)
	assert.Equal(t, types.WebsiteWith, svc.lastFilters.Website)
	assert.Equal(t, 25, svc.lastParams.Limit)
	assert.Equal(t, "abc", svc.lastParams.Cursor)
}

func TestLeadsListRejectsBadWebsiteFilter(t *testing.T) {
	t.Parallel()

	svc := &stubLeadsService{list: &leads.LeadList{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?website=maybe", nil)
	rec := httptest.NewRecorder()

	LeadsList(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
}

func TestLeadsListRejectsOversizedLimit(t *testing.T) {
	t.Parallel()

	svc := &stubLeadsService{list: &leads.LeadList{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?limit=5000", nil)
	rec := httptest.NewRecorder()

	LeadsList(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadsSummarySuccess(t *testing.T) {
	t.Parallel()

	svc := &stubLeadsService{summary: &leads.SelectionSummary{Count: 201, AverageRating: 4.3}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/summary?segments=Automotivo", nil)
	rec := httptest.NewRecorder()

	LeadsSummary(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data leads.SelectionSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, int64(201), envelope.Data.Count)
	assert.InDelta(t, 4.3, envelope.Data.AverageRating, 0.001)
}
