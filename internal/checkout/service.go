package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/internal/exports"
	"github.com/diskleads/leadmarket-backend/internal/orders"
	"github.com/diskleads/leadmarket-backend/internal/pricing"
	"github.com/diskleads/leadmarket-backend/pkg/db"
	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/enums"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
	"github.com/diskleads/leadmarket-backend/pkg/mercadopago"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

type leadSource interface {
	Count(ctx context.Context, filters types.FilterSnapshot) (int64, error)
	ListAll(ctx context.Context, filters types.FilterSnapshot) ([]models.Lead, error)
}

type artifactStore interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, payload []byte) error
	PublicObjectURL(bucket, object string) string
}

type paymentLinker interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
}

// Service drives a checkout session from filtered selection to awaited
// payment.
type Service interface {
	Quote(ctx context.Context, filters types.FilterSnapshot) (*QuoteView, error)
	Commit(ctx context.Context, input CommitInput) (*CommitResult, error)
	RefreshLink(ctx context.Context, reference string) (*CommitResult, error)
	AwaitPayment(ctx context.Context, reference string) (*AwaitResult, error)
}

type service struct {
	leads        leadSource
	ordersRepo   orders.Repository
	store        artifactStore
	payments     paymentLinker
	engine       *pricing.Engine
	logg         *logger.Logger
	bucket       string
	exportPrefix string
	currency     string
	pollInterval time.Duration
	pollAttempts int
}

// Params wires the checkout service.
type Params struct {
	Leads        leadSource
	Orders       orders.Repository
	Store        artifactStore
	Payments     paymentLinker
	Engine       *pricing.Engine
	Logger       *logger.Logger
	Bucket       string
	ExportPrefix string
	Currency     string
	PollInterval time.Duration
	PollAttempts int
}

func NewService(params Params) Service {
	interval := params.PollInterval
	if interval <= 0 {
		interval = 2500 * time.Millisecond
	}
	attempts := params.PollAttempts
	if attempts <= 0 {
		attempts = 60
	}
	currency := params.Currency
	if currency == "" {
		currency = "BRL"
	}
	engine := params.Engine
	if engine == nil {
		engine = pricing.DefaultEngine()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "checkout"})
	}
	return &service{
		leads:        params.Leads,
		ordersRepo:   params.Orders,
		store:        params.Store,
		payments:     params.Payments,
		engine:       engine,
		logg:         logg,
		bucket:       params.Bucket,
		exportPrefix: params.ExportPrefix,
		currency:     currency,
		pollInterval: interval,
		pollAttempts: attempts,
	}
}

func (s *service) Quote(ctx context.Context, filters types.FilterSnapshot) (*QuoteView, error) {
	count, err := s.leads.Count(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting selection")
	}
	quote, err := s.engine.Quote(count)
	if err != nil {
		return nil, err
	}
	view := s.quoteView(quote)
	return &view, nil
}

// Commit locks the price for the current selection, persists the artifact,
// then creates the pending order and its checkout link. The artifact must be
// durably stored before any order row exists; payment is never requested for
// an export that failed to persist.
func (s *service) Commit(ctx context.Context, input CommitInput) (*CommitResult, error) {
	if err := validateEmails(input.Email, input.EmailConfirmation); err != nil {
		return nil, err
	}

	rows, err := s.leads.ListAll(ctx, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading selection")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selection is empty, adjust the filters")
	}

	// the charged count and the exported rows come from the same read
	count := int64(len(rows))
	quote, err := s.engine.Quote(count)
	if err != nil {
		return nil, err
	}

	payload, err := exports.MarshalCSV(rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building export")
	}

	reference := newReference()
	object := exports.ObjectName(s.exportPrefix, reference)

	if err := s.store.UploadObject(ctx, s.bucket, object, exports.ContentType, payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing export artifact")
	}

	snapshot := input.Filters
	snapshot.Version = types.FilterSnapshotVersion

	order := &models.Order{
		Reference:      reference,
		Status:         enums.OrderStatusPending,
		CustomerEmail:  strings.TrimSpace(input.Email),
		LeadCount:      count,
		UnitPrice:      quote.UnitPrice,
		Amount:         quote.Total,
		Currency:       s.currency,
		ArtifactObject: object,
		ArtifactURL:    s.store.PublicObjectURL(s.bucket, object),
		Filters:        &snapshot,
	}
	if _, err := s.ordersRepo.Create(ctx, order); err != nil {
		if db.IsUniqueViolation(err, "ux_orders_reference") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order reference already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	ctx = s.logg.WithReference(ctx, reference)
	s.logg.Info(ctx, "order created, requesting checkout link")

	result := &CommitResult{
		Reference: reference,
		LeadCount: count,
		Amount:    quote.Total,
		Currency:  s.currency,
		Quote:     s.quoteView(quote),
	}

	link, err := s.createLink(ctx, order, quote)
	if err != nil {
		// the pending order and its artifact survive; the buyer retries the
		// link by reference instead of repeating the whole commit
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr.WithDetails(map[string]string{"reference": reference})
		}
		return nil, err
	}
	result.CheckoutURL = link
	return result, nil
}

// RefreshLink requests a new checkout link for an order whose first link
// request failed or expired.
func (s *service) RefreshLink(ctx context.Context, reference string) (*CommitResult, error) {
	order, err := s.findOrder(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer awaiting payment")
	}

	quote, err := s.engine.Quote(order.LeadCount)
	if err != nil {
		return nil, err
	}
	// the charged amount stays locked at commit time
	quote.Total = order.Amount
	quote.UnitPrice = order.UnitPrice

	result := &CommitResult{
		Reference: order.Reference,
		LeadCount: order.LeadCount,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Quote:     s.quoteView(quote),
	}

	link, err := s.createLink(ctx, order, quote)
	if err != nil {
		return nil, err
	}
	result.CheckoutURL = link
	return result, nil
}

func (s *service) createLink(ctx context.Context, order *models.Order, quote pricing.Quote) (string, error) {
	pref, err := s.payments.CreatePreference(ctx, mercadopago.PreferenceRequest{
		Title:             fmt.Sprintf("Base %d Leads", order.LeadCount),
		Quantity:          1,
		UnitPrice:         order.Amount,
		ExternalReference: order.Reference,
		PayerEmail:        order.CustomerEmail,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "requesting checkout link")
	}

	if err := s.ordersRepo.UpdateCheckoutLink(ctx, order.ID, pref.InitPoint, pref.ID); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing checkout link")
	}
	return pref.InitPoint, nil
}

// AwaitPayment polls the order until the webhook flips it to paid or the
// bounded window elapses. Exhausting the window leaves the order pending and
// returns the stored link for a manual retry.
func (s *service) AwaitPayment(ctx context.Context, reference string) (*AwaitResult, error) {
	order, err := s.findOrder(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusPaid {
		return &AwaitResult{Reference: reference, Paid: true}, nil
	}

	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		order, err = s.findOrder(ctx, reference)
		if err != nil {
			return nil, err
		}
		if order.Status == enums.OrderStatusPaid {
			return &AwaitResult{Reference: reference, Paid: true, Attempts: attempt}, nil
		}

		timer.Reset(s.pollInterval)
	}

	return &AwaitResult{
		Reference:   reference,
		Paid:        false,
		Attempts:    s.pollAttempts,
		CheckoutURL: order.CheckoutURL,
	}, nil
}

func (s *service) findOrder(ctx context.Context, reference string) (*models.Order, error) {
	order, err := s.ordersRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) quoteView(quote pricing.Quote) QuoteView {
	return QuoteView{
		Count:             quote.Count,
		UnitPrice:         quote.UnitPrice,
		Total:             quote.Total,
		AnchorTotal:       quote.AnchorTotal,
		DiscountPercent:   quote.DiscountPercent,
		TierLabel:         quote.TierLabel,
		NextTierThreshold: quote.NextTierThreshold,
		NextTierUnitPrice: quote.NextTierUnitPrice,
		Currency:          s.currency,
	}
}

func validateEmails(email, confirmation string) error {
	email = strings.TrimSpace(email)
	confirmation = strings.TrimSpace(confirmation)
	if !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery email is invalid")
	}
	if email != confirmation {
		return pkgerrors.New(pkgerrors.CodeValidation, "email confirmation does not match")
	}
	return nil
}

func newReference() string {
	return "dl-" + uuid.NewString()
}
