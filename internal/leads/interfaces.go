package leads

import (
	"context"

	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/pagination"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

// Repository defines catalog reads over the leads table. Every method scopes
// its query by the buyer's filter snapshot.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filters types.FilterSnapshot, params pagination.Params) (*LeadList, error)
	ListAll(ctx context.Context, filters types.FilterSnapshot) ([]models.Lead, error)
	Count(ctx context.Context, filters types.FilterSnapshot) (int64, error)
	Summary(ctx context.Context, filters types.FilterSnapshot) (*SelectionSummary, error)
	Facets(ctx context.Context, filters types.FilterSnapshot) (*Facets, error)
}
