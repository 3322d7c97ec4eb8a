package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/diskleads/leadmarket-backend/internal/checkout"
	"github.com/diskleads/leadmarket-backend/internal/leads"
	"github.com/diskleads/leadmarket-backend/internal/orders"
	mpwebhook "github.com/diskleads/leadmarket-backend/internal/webhooks/mercadopago"
	"github.com/diskleads/leadmarket-backend/pkg/config"
	"github.com/diskleads/leadmarket-backend/pkg/pagination"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubLeads struct{}

func (stubLeads) List(context.Context, types.FilterSnapshot, pagination.Params) (*leads.LeadList, error) {
	return &leads.LeadList{}, nil
}
func (stubLeads) Facets(context.Context, types.FilterSnapshot) (*leads.Facets, error) {
	return &leads.Facets{}, nil
}
func (stubLeads) Summary(context.Context, types.FilterSnapshot) (*leads.SelectionSummary, error) {
	return &leads.SelectionSummary{}, nil
}

type stubCheckout struct{}

func (stubCheckout) Quote(context.Context, types.FilterSnapshot) (*checkoutsvc.QuoteView, error) {
	return &checkoutsvc.QuoteView{}, nil
}
func (stubCheckout) Commit(context.Context, checkoutsvc.CommitInput) (*checkoutsvc.CommitResult, error) {
	return &checkoutsvc.CommitResult{Reference: "dl-test"}, nil
}
func (stubCheckout) RefreshLink(context.Context, string) (*checkoutsvc.CommitResult, error) {
	return &checkoutsvc.CommitResult{Reference: "dl-test"}, nil
}
func (stubCheckout) AwaitPayment(context.Context, string) (*checkoutsvc.AwaitResult, error) {
	return &checkoutsvc.AwaitResult{Reference: "dl-test"}, nil
}

type stubOrders struct{}

func (stubOrders) Status(context.Context, string) (*orders.StatusView, error) {
	return &orders.StatusView{Reference: "dl-test"}, nil
}
func (stubOrders) DownloadURL(context.Context, string) (*orders.DownloadView, error) {
	return &orders.DownloadView{Reference: "dl-test"}, nil
}

type stubWebhooks struct{}

func (stubWebhooks) Process(context.Context, mpwebhook.Notification) (*mpwebhook.Result, error) {
	return &mpwebhook.Result{Ignored: true}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Params{
		Config:          &config.Config{App: config.AppConfig{Env: "test"}},
		DB:              stubPinger{},
		Redis:           stubPinger{},
		GCS:             stubPinger{},
		Payments:        stubPinger{},
		Leads:           stubLeads{},
		Checkout:        stubCheckout{},
		Orders:          stubOrders{},
		Webhooks:        stubWebhooks{},
		MetricsRegistry: prometheus.NewRegistry(),
	})
}

func TestRouterMountsExpectedRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/leads", "", http.StatusOK},
		{http.MethodGet, "/api/v1/leads/facets", "", http.StatusOK},
		{http.MethodGet, "/api/v1/leads/summary", "", http.StatusOK},
		{http.MethodPost, "/api/v1/quotes", `{"filters": {}}`, http.StatusOK},
		{http.MethodPost, "/api/v1/checkout", `{"filters": {}, "email": "a@b.com", "email_confirmation": "a@b.com"}`, http.StatusCreated},
		{http.MethodPost, "/api/v1/checkout/dl-test/refresh-link", "", http.StatusOK},
		{http.MethodPost, "/api/v1/checkout/dl-test/await", "", http.StatusOK},
		{http.MethodGet, "/api/v1/orders/dl-test", "", http.StatusOK},
		{http.MethodGet, "/api/v1/orders/dl-test/download", "", http.StatusOK},
		{http.MethodPost, "/api/v1/webhooks/mercadopago", `{"type": "test"}`, http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		} else {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "test", rec.Header().Get("X-DiskLeads-Env"))
}

func TestRouterEchoesProvidedRequestID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-Id"))
}
