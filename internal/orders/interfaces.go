package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	UpdateCheckoutLink(ctx context.Context, id uuid.UUID, checkoutURL, preferenceID string) error
	MarkPaid(ctx context.Context, reference string) (bool, error)
	FindPaidUndelivered(ctx context.Context) ([]models.Order, error)
	ClaimDelivery(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseDeliveryClaim(ctx context.Context, id uuid.UUID) error
}

// ArtifactLinker resolves stored export artifacts into retrievable URLs.
type ArtifactLinker interface {
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	PublicObjectURL(bucket, object string) string
}
