package checkout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/internal/orders"
	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/enums"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/mercadopago"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

type fakeLeads struct {
	count int64
	rows  []models.Lead
}

func (f *fakeLeads) Count(context.Context, types.FilterSnapshot) (int64, error) {
	return f.count, nil
}

func (f *fakeLeads) ListAll(context.Context, types.FilterSnapshot) ([]models.Lead, error) {
	return f.rows, nil
}

type fakeStore struct {
	mu       sync.Mutex
	uploads  []string
	failNext bool
}

func (f *fakeStore) UploadObject(_ context.Context, _, object, _ string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return assert.AnError
	}
	f.uploads = append(f.uploads, object)
	return nil
}

func (f *fakeStore) PublicObjectURL(bucket, object string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + object
}

type fakePayments struct {
	failNext bool
	requests []mercadopago.PreferenceRequest
}

func (f *fakePayments) CreatePreference(_ context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	if f.failNext {
		return nil, assert.AnError
	}
	f.requests = append(f.requests, req)
	return &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mpago.la/" + req.ExternalReference}, nil
}

// memOrders is an in-memory stand-in for the orders repository.
type memOrders struct {
	mu           sync.Mutex
	byReference  map[string]*models.Order
	createCalls  int
	findsByRef   int
	paidAfterGet int // flip the order to paid once this many finds have happened
}

func newMemOrders() *memOrders {
	return &memOrders{byReference: map[string]*models.Order{}}
}

func (m *memOrders) WithTx(*gorm.DB) orders.Repository { return m }

func (m *memOrders) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	m.byReference[order.Reference] = &clone
	return order, nil
}

func (m *memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.byReference {
		if order.ID == id {
			clone := *order
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrders) FindByReference(_ context.Context, reference string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byReference[reference]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.findsByRef++
	if m.paidAfterGet > 0 && m.findsByRef >= m.paidAfterGet {
		order.Status = enums.OrderStatusPaid
	}
	clone := *order
	return &clone, nil
}

func (m *memOrders) UpdateCheckoutLink(_ context.Context, id uuid.UUID, checkoutURL, preferenceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.byReference {
		if order.ID == id {
			order.CheckoutURL = checkoutURL
			order.PreferenceID = preferenceID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memOrders) MarkPaid(_ context.Context, reference string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.byReference[reference]
	if !ok || order.Status != enums.OrderStatusPending {
		return false, nil
	}
	order.Status = enums.OrderStatusPaid
	return true, nil
}

func (m *memOrders) FindPaidUndelivered(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, order := range m.byReference {
		if order.Status == enums.OrderStatusPaid && !order.Delivered {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memOrders) ClaimDelivery(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.byReference {
		if order.ID == id && !order.Delivered {
			order.Delivered = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memOrders) ReleaseDeliveryClaim(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.byReference {
		if order.ID == id {
			order.Delivered = false
		}
	}
	return nil
}

type fixture struct {
	svc      Service
	leads    *fakeLeads
	store    *fakeStore
	payments *fakePayments
	orders   *memOrders
}

func newFixture(count int64) *fixture {
	f := &fixture{
		leads:    &fakeLeads{count: count, rows: make([]models.Lead, count)},
		store:    &fakeStore{},
		payments: &fakePayments{},
		orders:   newMemOrders(),
	}
	f.svc = NewService(Params{
		Leads:        f.leads,
		Orders:       f.orders,
		Store:        f.store,
		Payments:     f.payments,
		Bucket:       "leadmarket",
		ExportPrefix: "exports",
		Currency:     "BRL",
		PollInterval: time.Millisecond,
		PollAttempts: 5,
	})
	return f
}

func validInput() CommitInput {
	return CommitInput{
		Filters:           types.FilterSnapshot{Segments: []string{"Alimentação"}},
		Email:             "cliente@example.com",
		EmailConfirmation: "cliente@example.com",
	}
}

func TestCommitHappyPath(t *testing.T) {
	f := newFixture(150)

	result, err := f.svc.Commit(context.Background(), validInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Reference, "dl-"))
	assert.Equal(t, int64(150), result.LeadCount)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("45.00")), "amount %s", result.Amount)
	assert.Equal(t, "https://mpago.la/"+result.Reference, result.CheckoutURL)
	assert.Equal(t, 0, result.Quote.DiscountPercent)

	// artifact stored before the order, named after the reference
	require.Len(t, f.store.uploads, 1)
	assert.Equal(t, "exports/"+result.Reference+".csv", f.store.uploads[0])

	order, err := f.orders.FindByReference(context.Background(), result.Reference)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "cliente@example.com", order.CustomerEmail)
	assert.Equal(t, result.CheckoutURL, order.CheckoutURL)
	require.NotNil(t, order.Filters)
	assert.Equal(t, types.FilterSnapshotVersion, order.Filters.Version)

	require.Len(t, f.payments.requests, 1)
	assert.Equal(t, "Base 150 Leads", f.payments.requests[0].Title)
	assert.Equal(t, result.Reference, f.payments.requests[0].ExternalReference)
}

func TestCommitMismatchedEmailsCreatesNothing(t *testing.T) {
	f := newFixture(150)

	input := validInput()
	input.Email = "a@x.com"
	input.EmailConfirmation = "b@x.com"

	_, err := f.svc.Commit(context.Background(), input)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	assert.Zero(t, f.orders.createCalls, "no order row may be persisted")
	assert.Empty(t, f.store.uploads)
	assert.Empty(t, f.payments.requests)
}

func TestCommitRejectsMissingAtSign(t *testing.T) {
	f := newFixture(150)

	input := validInput()
	input.Email = "not-an-email"
	input.EmailConfirmation = "not-an-email"

	_, err := f.svc.Commit(context.Background(), input)
	require.Error(t, err)
	assert.Zero(t, f.orders.createCalls)
}

func TestCommitChargesForExportedRows(t *testing.T) {
	// the catalog count drifting away from the export read must not leak
	// into the charged amount
	f := newFixture(150)
	f.leads.count = 9999

	result, err := f.svc.Commit(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(150), result.LeadCount)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("45.00")), "amount %s", result.Amount)

	order, err := f.orders.FindByReference(context.Background(), result.Reference)
	require.NoError(t, err)
	assert.Equal(t, int64(150), order.LeadCount)
	assert.True(t, order.Amount.Equal(result.Amount))
}

func TestCommitEmptySelection(t *testing.T) {
	f := newFixture(0)

	_, err := f.svc.Commit(context.Background(), validInput())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Empty(t, f.store.uploads)
}

func TestCommitUploadFailureBlocksOrder(t *testing.T) {
	f := newFixture(150)
	f.store.failNext = true

	_, err := f.svc.Commit(context.Background(), validInput())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())

	assert.Zero(t, f.orders.createCalls, "payment must never be requested for a failed artifact")
	assert.Empty(t, f.payments.requests)
}

func TestCommitLinkFailureKeepsOrderForRetry(t *testing.T) {
	f := newFixture(150)
	f.payments.failNext = true

	_, err := f.svc.Commit(context.Background(), validInput())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())

	details, ok := appErr.Details().(map[string]string)
	require.True(t, ok)
	reference := details["reference"]
	require.NotEmpty(t, reference)

	// the pending order and artifact survive the provider failure
	order, err := f.orders.FindByReference(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Empty(t, order.CheckoutURL)

	// a later retry attaches the link without a second upload
	f.payments.failNext = false
	result, err := f.svc.RefreshLink(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, "https://mpago.la/"+reference, result.CheckoutURL)
	assert.Len(t, f.store.uploads, 1)
}

func TestRefreshLinkRejectsPaidOrder(t *testing.T) {
	f := newFixture(150)

	result, err := f.svc.Commit(context.Background(), validInput())
	require.NoError(t, err)
	_, err = f.orders.MarkPaid(context.Background(), result.Reference)
	require.NoError(t, err)

	_, err = f.svc.RefreshLink(context.Background(), result.Reference)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestAwaitPaymentObservesTransition(t *testing.T) {
	f := newFixture(150)

	result, err := f.svc.Commit(context.Background(), validInput())
	require.NoError(t, err)

	// the webhook lands after a couple of polls
	f.orders.paidAfterGet = f.orders.findsByRef + 3

	await, err := f.svc.AwaitPayment(context.Background(), result.Reference)
	require.NoError(t, err)
	assert.True(t, await.Paid)
	assert.GreaterOrEqual(t, await.Attempts, 1)
}

func TestAwaitPaymentWindowExhausted(t *testing.T) {
	f := newFixture(150)

	result, err := f.svc.Commit(context.Background(), validInput())
	require.NoError(t, err)

	await, err := f.svc.AwaitPayment(context.Background(), result.Reference)
	require.NoError(t, err, "an unresolved wait is not a failure")
	assert.False(t, await.Paid)
	assert.Equal(t, 5, await.Attempts)
	assert.Equal(t, result.CheckoutURL, await.CheckoutURL)
}

func TestAwaitPaymentUnknownReference(t *testing.T) {
	f := newFixture(150)

	_, err := f.svc.AwaitPayment(context.Background(), "dl-missing")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestAwaitPaymentHonorsContextCancel(t *testing.T) {
	f := newFixture(150)
	result, err := f.svc.Commit(context.Background(), validInput())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.svc.AwaitPayment(ctx, result.Reference)
	require.ErrorIs(t, err, context.Canceled)
}

func TestQuoteUsesSelectionCount(t *testing.T) {
	f := newFixture(201)

	// scenario tiers live in the pricing package; the default table applies here
	view, err := f.svc.Quote(context.Background(), types.FilterSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, int64(201), view.Count)
	assert.True(t, view.UnitPrice.Equal(decimal.RequireFromString("0.30")))
	assert.Equal(t, "BRL", view.Currency)
	require.NotNil(t, view.NextTierThreshold)
	assert.Equal(t, int64(501), *view.NextTierThreshold)
}
