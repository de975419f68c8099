// Package commission provides pluggable commission models applied to each
// fill of a position transition.
package commission

import (
	"github.com/shopspring/decimal"
)

// Model computes the commission charged for one fill.
type Model interface {
	// Fee returns the commission for filling the given share count at the
	// given price.
	Fee(shares, price float64) float64
}

// Zero charges nothing. Used when no commission parameters are supplied.
type Zero struct{}

// NewZero creates a no-commission model.
func NewZero() Model {
	return &Zero{}
}

// Fee implements Model.
func (z *Zero) Fee(_, _ float64) float64 {
	return 0
}

// Fixed charges a flat amount per fill regardless of notional.
type Fixed struct {
	amount decimal.Decimal
}

// NewFixed creates a flat-per-fill commission model.
func NewFixed(amount float64) Model {
	return &Fixed{amount: decimal.NewFromFloat(amount)}
}

// Fee implements Model.
func (f *Fixed) Fee(_, _ float64) float64 {
	fee, _ := f.amount.Float64()
	return fee
}

// Percent charges a percentage of the fill notional.
type Percent struct {
	rate decimal.Decimal
}

// NewPercent creates a percent-of-notional commission model. The rate is
// expressed in percent, e.g. 0.1 for ten basis points.
func NewPercent(rate float64) Model {
	return &Percent{rate: decimal.NewFromFloat(rate)}
}

// Fee implements Model.
func (p *Percent) Fee(shares, price float64) float64 {
	notional := decimal.NewFromFloat(shares).Mul(decimal.NewFromFloat(price))
	fee, _ := notional.Mul(p.rate).Div(decimal.NewFromInt(100)).Float64()

	return fee
}
