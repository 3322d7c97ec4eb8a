package controllers

import (
	"net/http"

	"github.com/diskleads/leadmarket-backend/api/responses"
	"github.com/diskleads/leadmarket-backend/api/validators"
	checkoutsvc "github.com/diskleads/leadmarket-backend/internal/checkout"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
)

type quoteRequest struct {
	Filters filterPayload `json:"filters"`
}

// QuotePreview prices the current selection without creating anything.
func QuotePreview(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), payload.Filters.toSnapshot())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
