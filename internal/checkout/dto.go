package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/diskleads/leadmarket-backend/pkg/types"
)

// QuoteView prices the current selection for display before commit.
type QuoteView struct {
	Count             int64            `json:"count"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	Total             decimal.Decimal  `json:"total"`
	AnchorTotal       decimal.Decimal  `json:"anchor_total"`
	DiscountPercent   int              `json:"discount_percent"`
	TierLabel         string           `json:"tier_label"`
	NextTierThreshold *int64           `json:"next_tier_threshold,omitempty"`
	NextTierUnitPrice *decimal.Decimal `json:"next_tier_unit_price,omitempty"`
	Currency          string           `json:"currency"`
}

// CommitInput is the buyer's commitment to purchase the filtered selection.
type CommitInput struct {
	Filters           types.FilterSnapshot
	Email             string
	EmailConfirmation string
}

// CommitResult describes the order created at commit time. The price is
// locked here; later catalog changes do not reprice the order.
type CommitResult struct {
	Reference   string          `json:"reference"`
	CheckoutURL string          `json:"checkout_url"`
	LeadCount   int64           `json:"lead_count"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Quote       QuoteView       `json:"quote"`
}

// AwaitResult reports the outcome of the bounded payment wait. An exhausted
// window is not an error; the buyer keeps the checkout link.
type AwaitResult struct {
	Reference   string `json:"reference"`
	Paid        bool   `json:"paid"`
	Attempts    int    `json:"attempts"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}
