package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/internal/orders"
	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/enums"
	"github.com/diskleads/leadmarket-backend/pkg/mailer"
)

func setupDeliveryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  customer_email TEXT NOT NULL,
  lead_count INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'BRL',
  artifact_object TEXT NOT NULL,
  artifact_url TEXT NOT NULL,
  checkout_url TEXT,
  preference_id TEXT,
  filters TEXT,
  delivered INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM orders").Error)

	return db
}

func seedOrder(t *testing.T, repo orders.Repository, reference, email string, paid bool) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:             uuid.New(),
		Reference:      reference,
		Status:         enums.OrderStatusPending,
		CustomerEmail:  email,
		LeadCount:      100,
		UnitPrice:      decimal.RequireFromString("0.30"),
		Amount:         decimal.RequireFromString("30.00"),
		ArtifactObject: "exports/" + reference + ".csv",
		ArtifactURL:    "https://storage.googleapis.com/leadmarket/exports/" + reference + ".csv",
	}
	_, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	if paid {
		flipped, err := repo.MarkPaid(context.Background(), reference)
		require.NoError(t, err)
		require.True(t, flipped)
	}
	return order
}

// selectiveSender fails for the configured recipients and records the rest.
type selectiveSender struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []string
}

func (s *selectiveSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func newTestWatcher(t *testing.T, repo orders.Repository, sender mailer.Sender) *Watcher {
	t.Helper()
	w, err := NewWatcher(WatcherParams{Orders: repo, Sender: sender})
	require.NoError(t, err)
	return w
}

func TestRunOnceDeliversPaidOrders(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := orders.NewRepository(db)
	sender := mailer.NewInMemorySender()
	w := newTestWatcher(t, repo, sender)
	ctx := context.Background()

	seedOrder(t, repo, "dl-paid", "cliente@example.com", true)
	seedOrder(t, repo, "dl-unpaid", "outro@example.com", false)

	require.NoError(t, w.RunOnce(ctx))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "cliente@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "dl-paid")
	assert.Contains(t, string(sent[0].Body), "exports/dl-paid.csv")

	order, err := repo.FindByReference(ctx, "dl-paid")
	require.NoError(t, err)
	assert.True(t, order.Delivered)
	require.NotNil(t, order.DeliveredAt)
}

func TestRunOnceIsIdempotentAcrossPasses(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := orders.NewRepository(db)
	sender := mailer.NewInMemorySender()
	w := newTestWatcher(t, repo, sender)
	ctx := context.Background()

	seedOrder(t, repo, "dl-once", "cliente@example.com", true)

	require.NoError(t, w.RunOnce(ctx))
	require.NoError(t, w.RunOnce(ctx))

	assert.Len(t, sender.Sent(), 1, "a delivered order must never be re-sent")
}

func TestRunOnceReleasesClaimOnSendFailure(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := orders.NewRepository(db)
	sender := &selectiveSender{failFor: map[string]bool{"cliente@example.com": true}}
	w := newTestWatcher(t, repo, sender)
	ctx := context.Background()

	seedOrder(t, repo, "dl-retry", "cliente@example.com", true)

	err := w.RunOnce(ctx)
	require.Error(t, err)

	order, findErr := repo.FindByReference(ctx, "dl-retry")
	require.NoError(t, findErr)
	assert.False(t, order.Delivered, "failed send must stay eligible for retry")

	// transport recovers; the next interval delivers
	sender.failFor = map[string]bool{}
	require.NoError(t, w.RunOnce(ctx))

	order, findErr = repo.FindByReference(ctx, "dl-retry")
	require.NoError(t, findErr)
	assert.True(t, order.Delivered)
	assert.Equal(t, []string{"cliente@example.com"}, sender.sent)
}

func TestRunOnceOneFailureDoesNotBlockOthers(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := orders.NewRepository(db)
	sender := &selectiveSender{failFor: map[string]bool{"quebrado@example.com": true}}
	w := newTestWatcher(t, repo, sender)
	ctx := context.Background()

	seedOrder(t, repo, "dl-bad", "quebrado@example.com", true)
	seedOrder(t, repo, "dl-good", "funciona@example.com", true)

	err := w.RunOnce(ctx)
	require.Error(t, err, "the failing order is reported")
	assert.Contains(t, err.Error(), "dl-bad")

	assert.Equal(t, []string{"funciona@example.com"}, sender.sent, "healthy orders still deliver")

	good, findErr := repo.FindByReference(ctx, "dl-good")
	require.NoError(t, findErr)
	assert.True(t, good.Delivered)
}

type stubLock struct {
	held     bool
	acquires int
	releases int
}

func (s *stubLock) Acquire(context.Context) (bool, error) {
	s.acquires++
	return !s.held, nil
}

func (s *stubLock) Release(context.Context) error {
	s.releases++
	return nil
}

func TestRunPassSkipsWhenLockHeld(t *testing.T) {
	db := setupDeliveryTestDB(t)
	repo := orders.NewRepository(db)
	sender := mailer.NewInMemorySender()
	lock := &stubLock{held: true}

	w, err := NewWatcher(WatcherParams{Orders: repo, Sender: sender, Lock: lock})
	require.NoError(t, err)

	seedOrder(t, repo, "dl-locked", "cliente@example.com", true)

	require.NoError(t, w.runPass(context.Background()))
	assert.Empty(t, sender.Sent())
	assert.Equal(t, 1, lock.acquires)
	assert.Zero(t, lock.releases)

	lock.held = false
	require.NoError(t, w.runPass(context.Background()))
	assert.Len(t, sender.Sent(), 1)
	assert.Equal(t, 1, lock.releases)
}

func TestNewWatcherValidation(t *testing.T) {
	_, err := NewWatcher(WatcherParams{Sender: mailer.NopSender{}})
	require.Error(t, err)

	_, err = NewWatcher(WatcherParams{Orders: orders.NewRepository(nil)})
	require.Error(t, err)
}
