package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/enums"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

// StatusView is the buyer-facing snapshot of one order.
type StatusView struct {
	Reference   string                `json:"reference"`
	Status      enums.OrderStatus     `json:"status"`
	Delivered   bool                  `json:"delivered"`
	LeadCount   int64                 `json:"lead_count"`
	Amount      decimal.Decimal       `json:"amount"`
	Currency    string                `json:"currency"`
	CheckoutURL string                `json:"checkout_url,omitempty"`
	Filters     *types.FilterSnapshot `json:"filters,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	PaidAt      *time.Time            `json:"paid_at,omitempty"`
	DeliveredAt *time.Time            `json:"delivered_at,omitempty"`
}

// DownloadView carries the artifact link released after payment.
type DownloadView struct {
	Reference string    `json:"reference"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func statusViewFrom(order *models.Order) *StatusView {
	return &StatusView{
		Reference:   order.Reference,
		Status:      order.Status,
		Delivered:   order.Delivered,
		LeadCount:   order.LeadCount,
		Amount:      order.Amount,
		Currency:    order.Currency,
		CheckoutURL: order.CheckoutURL,
		Filters:     order.Filters,
		CreatedAt:   order.CreatedAt,
		PaidAt:      order.PaidAt,
		DeliveredAt: order.DeliveredAt,
	}
}
