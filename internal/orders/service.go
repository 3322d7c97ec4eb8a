package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/enums"
	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
)

// AccessModeSigned issues expiring links; anything else falls back to the
// bucket's public URL.
const AccessModeSigned = "signed"

// Service exposes buyer-facing order reads.
type Service interface {
	Status(ctx context.Context, reference string) (*StatusView, error)
	DownloadURL(ctx context.Context, reference string) (*DownloadView, error)
}

type service struct {
	repo       Repository
	linker     ArtifactLinker
	bucket     string
	accessMode string
	linkTTL    time.Duration
}

// ServiceParams wires the order read service.
type ServiceParams struct {
	Repo       Repository
	Linker     ArtifactLinker
	Bucket     string
	AccessMode string
	LinkTTL    time.Duration
}

func NewService(params ServiceParams) Service {
	ttl := params.LinkTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{
		repo:       params.Repo,
		linker:     params.Linker,
		bucket:     params.Bucket,
		accessMode: strings.ToLower(params.AccessMode),
		linkTTL:    ttl,
	}
}

func (s *service) Status(ctx context.Context, reference string) (*StatusView, error) {
	order, err := s.find(ctx, reference)
	if err != nil {
		return nil, err
	}
	return statusViewFrom(order), nil
}

func (s *service) DownloadURL(ctx context.Context, reference string) (*DownloadView, error) {
	order, err := s.find(ctx, reference)
	if err != nil {
		return nil, err
	}

	if order.Status != enums.OrderStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodePaymentPending, "order has not been paid")
	}

	expiresAt := time.Now().Add(s.linkTTL)
	if s.accessMode == AccessModeSigned {
		url, err := s.linker.SignedReadURL(s.bucket, order.ArtifactObject, s.linkTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "signing artifact url")
		}
		return &DownloadView{Reference: order.Reference, URL: url, ExpiresAt: expiresAt}, nil
	}

	return &DownloadView{
		Reference: order.Reference,
		URL:       s.linker.PublicObjectURL(s.bucket, order.ArtifactObject),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *service) find(ctx context.Context, reference string) (*models.Order, error) {
	order, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}
