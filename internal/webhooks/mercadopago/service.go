package mercadopago

import (
	"context"
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
	mp "github.com/diskleads/leadmarket-backend/pkg/mercadopago"
)

const (
	eventTypePayment = "payment"

	idempotencyScope      = "payment-webhook"
	defaultIdempotencyTTL = 24 * time.Hour
)

type paymentSource interface {
	GetPayment(ctx context.Context, paymentID string) (*mp.Payment, error)
}

type orderMarker interface {
	MarkPaid(ctx context.Context, reference string) (bool, error)
}

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Service reconciles provider payment notifications into order state. It is
// the only writer that moves an order to paid.
type Service interface {
	Process(ctx context.Context, notification Notification) (*Result, error)
}

type service struct {
	payments    paymentSource
	orders      orderMarker
	idempotency idempotencyStore
	logg        *logger.Logger
	ttl         time.Duration
}

// Params wires the webhook service. Idempotency is optional; without it every
// redelivered event hits the provider API again.
type Params struct {
	Payments       paymentSource
	Orders         orderMarker
	Idempotency    idempotencyStore
	Logger         *logger.Logger
	IdempotencyTTL time.Duration
}

func NewService(params Params) (Service, error) {
	if params.Payments == nil {
		return nil, fmt.Errorf("payment source required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order marker required")
	}
	ttl := params.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "payment-webhook"})
	}
	return &service{
		payments:    params.Payments,
		orders:      params.Orders,
		idempotency: params.Idempotency,
		logg:        logg,
		ttl:         ttl,
	}, nil
}

func (s *service) Process(ctx context.Context, notification Notification) (*Result, error) {
	if notification.Type != eventTypePayment {
		return &Result{Ignored: true}, nil
	}
	if notification.Data.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment notification missing data.id")
	}

	eventKey, claimed, err := s.claimEvent(ctx, notification)
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.logg.Info(ctx, "payment event already processed; skipping")
		return &Result{Duplicate: true}, nil
	}

	payment, err := s.payments.GetPayment(ctx, notification.Data.ID)
	if err != nil {
		s.releaseEvent(ctx, eventKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch payment from provider")
	}

	if !payment.Approved() {
		// a non-approved status is not terminal; the notification that
		// arrives once the same payment settles must be able to claim again
		s.releaseEvent(ctx, eventKey)
		s.logg.Info(ctx, fmt.Sprintf("payment %d is %s; nothing to reconcile", payment.ID, payment.Status))
		return &Result{Status: payment.Status}, nil
	}
	if payment.ExternalReference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved payment carries no external reference")
	}

	ctx = s.logg.WithReference(ctx, payment.ExternalReference)
	flipped, err := s.orders.MarkPaid(ctx, payment.ExternalReference)
	if err != nil {
		s.releaseEvent(ctx, eventKey)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to mark order paid")
	}
	if flipped {
		s.logg.Info(ctx, "order marked paid from payment webhook")
	} else {
		s.logg.Info(ctx, "order already settled; webhook had no effect")
	}

	return &Result{
		Reference: payment.ExternalReference,
		Status:    payment.Status,
		Paid:      flipped,
	}, nil
}

// claimEvent reserves the notification id so redeliveries become no-ops.
func (s *service) claimEvent(ctx context.Context, notification Notification) (string, bool, error) {
	if s.idempotency == nil {
		return "", true, nil
	}
	eventID := strconv.FormatInt(notification.ID, 10)
	if notification.ID == 0 {
		eventID = notification.Data.ID
	}
	key := s.idempotency.IdempotencyKey(idempotencyScope, eventID)
	ok, err := s.idempotency.SetNX(ctx, key, "1", s.ttl)
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to reserve webhook event")
	}
	return key, ok, nil
}

// releaseEvent frees the reservation after a processing failure so the
// provider's retry is not swallowed.
func (s *service) releaseEvent(ctx context.Context, key string) {
	if s.idempotency == nil || key == "" {
		return
	}
	if err := s.idempotency.Del(ctx, key); err != nil {
		s.logg.Error(ctx, "failed to release webhook event reservation", err)
	}
}
