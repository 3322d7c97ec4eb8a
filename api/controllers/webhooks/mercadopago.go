package webhooks

import (
	"encoding/json"
	"net/http"

	"github.com/diskleads/leadmarket-backend/api/responses"
	mpwebhook "github.com/diskleads/leadmarket-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
)

// MercadoPagoWebhook receives payment notifications. The provider retries on
// any non-2xx response, so ignorable events still answer 200.
func MercadoPagoWebhook(svc mpwebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		var notification mpwebhook.Notification
		// provider payloads carry fields beyond the ones acted on, so the
		// decoder stays lenient here
		if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification body"))
			return
		}

		// legacy notifications put the event under query parameters
		if notification.Type == "" {
			notification.Type = r.URL.Query().Get("type")
			if notification.Type == "" {
				notification.Type = r.URL.Query().Get("topic")
			}
		}
		if notification.Data.ID == "" {
			notification.Data.ID = r.URL.Query().Get("data.id")
			if notification.Data.ID == "" {
				notification.Data.ID = r.URL.Query().Get("id")
			}
		}

		result, err := svc.Process(ctx, notification)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
