// Package folio implements the portal's computational core: investment
// total reconciliation, duplicate-transaction linkage, price series
// alignment, and the list filter predicate. Everything here is a pure
// function over already-fetched data; nothing performs I/O and nothing
// panics on malformed numeric input.
package folio

import (
	"math"

	"github.com/shopspring/decimal"
)

// Float returns a pointer to v. Convenience for building optional amounts.
func Float(v float64) *float64 { return &v }

// finite reports whether p points at a usable number.
func finite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

// RoundAmount rounds a monetary amount to 2 decimal places, half away
// from zero.
func RoundAmount(v float64) float64 {
	r, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return r
}

// ReconcileTotal derives the total investment amount from quantity and
// price: round(qty*price, 2) when both factors are finite numbers, nil
// otherwise. The total is never left stale when a factor is missing; the
// editor renders it read-only so it cannot diverge from its inputs.
func ReconcileTotal(qty, price *float64) *float64 {
	if !finite(qty) || !finite(price) {
		return nil
	}
	total, _ := decimal.NewFromFloat(*qty).
		Mul(decimal.NewFromFloat(*price)).
		Round(2).
		Float64()
	return &total
}
