package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/diskleads/leadmarket-backend/pkg/errors"
)

// NoUpperBound marks the final tier, which matches any count.
const NoUpperBound = int64(math.MaxInt64)

// Tier maps an inclusive upper bound on lead count to a unit price.
type Tier struct {
	UpperBound int64
	UnitPrice  decimal.Decimal
	Label      string
}

// Quote is the priced evaluation of a selection. Values are computed fresh per
// call and never mutated.
type Quote struct {
	Count             int64
	UnitPrice         decimal.Decimal
	Total             decimal.Decimal
	AnchorTotal       decimal.Decimal
	DiscountPercent   int
	TierLabel         string
	NextTierThreshold *int64
	NextTierUnitPrice *decimal.Decimal
}

// Engine resolves counts against an ordered tier table. The table is fixed at
// construction; quoting is pure computation with no I/O.
type Engine struct {
	tiers  []Tier
	anchor decimal.Decimal
}

// NewEngine validates the tier table and builds an engine. Tiers must be in
// ascending bound order and the final tier must be unbounded.
func NewEngine(tiers []Tier, anchorUnitPrice decimal.Decimal) (*Engine, error) {
	if len(tiers) == 0 {
		return nil, errors.New(errors.CodeValidation, "at least one tier is required")
	}
	if anchorUnitPrice.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "anchor unit price cannot be negative")
	}

	var prevBound int64
	for i, tier := range tiers {
		if tier.UnitPrice.IsNegative() {
			return nil, errors.New(errors.CodeValidation, "tier unit price cannot be negative")
		}
		last := i == len(tiers)-1
		if last {
			if tier.UpperBound != NoUpperBound {
				return nil, errors.New(errors.CodeValidation, "final tier must be unbounded")
			}
			continue
		}
		if tier.UpperBound <= 0 {
			return nil, errors.New(errors.CodeValidation, "tier upper bound must be positive")
		}
		if i > 0 && tier.UpperBound <= prevBound {
			return nil, errors.New(errors.CodeValidation, "tier upper bounds must be strictly ascending")
		}
		prevBound = tier.UpperBound
	}

	out := &Engine{
		tiers:  make([]Tier, len(tiers)),
		anchor: anchorUnitPrice,
	}
	copy(out.tiers, tiers)
	return out, nil
}

// DefaultEngine returns the production tier table in BRL.
func DefaultEngine() *Engine {
	engine, err := NewEngine([]Tier{
		{UpperBound: 500, UnitPrice: decimal.RequireFromString("0.30"), Label: "inicial"},
		{UpperBound: 2000, UnitPrice: decimal.RequireFromString("0.20"), Label: "avancado"},
		{UpperBound: NoUpperBound, UnitPrice: decimal.RequireFromString("0.12"), Label: "escala"},
	}, decimal.RequireFromString("0.30"))
	if err != nil {
		// the static table above is valid by construction
		panic(err)
	}
	return engine
}

// Quote prices a selection of count leads. Boundaries are inclusive on the
// upper end: a count equal to a bound stays in that tier.
func (e *Engine) Quote(count int64) (Quote, error) {
	if count < 0 {
		return Quote{}, errors.New(errors.CodeValidation, "count cannot be negative")
	}

	idx := 0
	for i, tier := range e.tiers {
		if count <= tier.UpperBound {
			idx = i
			break
		}
	}

	selected := e.tiers[idx]
	countDec := decimal.NewFromInt(count)
	total := countDec.Mul(selected.UnitPrice)
	anchorTotal := countDec.Mul(e.anchor)

	discount := 0
	if anchorTotal.IsPositive() && selected.UnitPrice.LessThan(e.anchor) {
		// floor(100 * savings / anchor); IntPart truncates toward zero,
		// which is floor for the non-negative operand here
		discount = int(anchorTotal.Sub(total).Mul(decimal.NewFromInt(100)).Div(anchorTotal).IntPart())
	}

	quote := Quote{
		Count:           count,
		UnitPrice:       selected.UnitPrice,
		Total:           total,
		AnchorTotal:     anchorTotal,
		DiscountPercent: discount,
		TierLabel:       selected.Label,
	}

	if idx < len(e.tiers)-1 {
		threshold := selected.UpperBound + 1
		next := e.tiers[idx+1].UnitPrice
		quote.NextTierThreshold = &threshold
		quote.NextTierUnitPrice = &next
	}

	return quote, nil
}

// Tiers returns a copy of the engine's tier table for display surfaces.
func (e *Engine) Tiers() []Tier {
	out := make([]Tier, len(e.tiers))
	copy(out, e.tiers)
	return out
}

// AnchorUnitPrice returns the fixed reference rate used for savings display.
func (e *Engine) AnchorUnitPrice() decimal.Decimal {
	return e.anchor
}
