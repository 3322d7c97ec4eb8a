package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/diskleads/leadmarket-backend/pkg/enums"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

// Order is the reconciliation unit of work for one checkout. Status is moved
// to paid only by the payment webhook; delivered flips true exactly once via a
// conditional claim.
type Order struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference      string                `gorm:"column:reference;not null;uniqueIndex:ux_orders_reference"`
	Status         enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	CustomerEmail  string                `gorm:"column:customer_email;not null"`
	LeadCount      int64                 `gorm:"column:lead_count;not null"`
	UnitPrice      decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Amount         decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency       string                `gorm:"column:currency;not null;default:'BRL'"`
	ArtifactObject string                `gorm:"column:artifact_object;not null"`
	ArtifactURL    string                `gorm:"column:artifact_url;not null"`
	CheckoutURL    string                `gorm:"column:checkout_url"`
	PreferenceID   string                `gorm:"column:preference_id"`
	Filters        *types.FilterSnapshot `gorm:"column:filters;type:jsonb;serializer:json"`
	Delivered      bool                  `gorm:"column:delivered;not null;default:false"`
	PaidAt         *time.Time            `gorm:"column:paid_at"`
	DeliveredAt    *time.Time            `gorm:"column:delivered_at"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
