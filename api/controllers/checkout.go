package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/diskleads/leadmarket-backend/api/responses"
	"github.com/diskleads/leadmarket-backend/api/validators"
	checkoutsvc "github.com/diskleads/leadmarket-backend/internal/checkout"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
)

type commitRequest struct {
	Filters           filterPayload `json:"filters"`
	Email             string        `json:"email" validate:"required,email"`
	EmailConfirmation string        `json:"email_confirmation" validate:"required,eqfield=Email"`
}

// CheckoutCommit locks the selection, exports it, and opens a payment link.
func CheckoutCommit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload commitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Commit(r.Context(), checkoutsvc.CommitInput{
			Filters:           payload.Filters.toSnapshot(),
			Email:             payload.Email,
			EmailConfirmation: payload.EmailConfirmation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutRefreshLink retries link creation for an order stuck without one.
func CheckoutRefreshLink(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		reference, err := referenceParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RefreshLink(r.Context(), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CheckoutAwait blocks for the configured window until payment confirms. An
// exhausted window responds 200 with paid=false.
func CheckoutAwait(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		reference, err := referenceParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AwaitPayment(r.Context(), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func referenceParam(r *http.Request) (string, error) {
	reference := strings.TrimSpace(chi.URLParam(r, "reference"))
	if reference == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}
	return reference, nil
}
