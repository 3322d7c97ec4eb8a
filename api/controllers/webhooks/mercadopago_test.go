package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mpwebhook "github.com/diskleads/leadmarket-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
)

type stubWebhookService struct {
	result        *mpwebhook.Result
	err           error
	notifications []mpwebhook.Notification
}

func (s *stubWebhookService) Process(_ context.Context, n mpwebhook.Notification) (*mpwebhook.Result, error) {
	s.notifications = append(s.notifications, n)
	return s.result, s.err
}

func TestMercadoPagoWebhookBodyNotification(t *testing.T) {
	t.Parallel()

	svc := &stubWebhookService{result: &mpwebhook.Result{Reference: "dl-abc", Paid: true}}
	body := `{"id": 55, "type": "payment", "action": "payment.updated", "data": {"id": "987"}, "live_mode": true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", strings.NewReader(body))
	rec := httptest.NewRecorder()

	MercadoPagoWebhook(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.notifications, 1)
	assert.Equal(t, "payment", svc.notifications[0].Type)
	assert.Equal(t, "987", svc.notifications[0].Data.ID)
}

func TestMercadoPagoWebhookQueryFallback(t *testing.T) {
	t.Parallel()

	svc := &stubWebhookService{result: &mpwebhook.Result{Ignored: true}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago?topic=payment&id=987", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	MercadoPagoWebhook(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.notifications, 1)
	assert.Equal(t, "payment", svc.notifications[0].Type)
	assert.Equal(t, "987", svc.notifications[0].Data.ID)
}

func TestMercadoPagoWebhookServiceErrorPropagates(t *testing.T) {
	t.Parallel()

	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "provider unavailable")}
	body := `{"id": 55, "type": "payment", "data": {"id": "987"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", strings.NewReader(body))
	rec := httptest.NewRecorder()

	MercadoPagoWebhook(svc, nil)(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMercadoPagoWebhookInvalidBody(t *testing.T) {
	t.Parallel()

	svc := &stubWebhookService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/mercadopago", strings.NewReader("not-json"))
	rec := httptest.NewRecorder()

	MercadoPagoWebhook(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.notifications)
}
