package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ReduceLadder removes shares from the oldest lots first. It returns the cost
// of the removed shares and a new ladder; the lot at which the removal is
// covered keeps its uncovered remainder at its original price. The input is
// not modified
func ReduceLadder(shares decimal.Decimal, ladder []Lot) (decimal.Decimal, []Lot, error) {
	if !shares.IsPositive() {
		return decimal.Zero, nil, fmt.Errorf("%w %v", errNonPositiveQuantity, shares)
	}
	total := ladderQuantity(ladder)
	if shares.GreaterThan(total) {
		return decimal.Zero, nil, fmt.Errorf("%w: removing %v from ladder holding %v", ErrInsufficientLots, shares, total)
	}
	var cost, covered decimal.Decimal
	for i := range ladder {
		lotCost := ladder[i].Quantity.Mul(ladder[i].Price)
		if covered.Add(ladder[i].Quantity).LessThan(shares) {
			covered = covered.Add(ladder[i].Quantity)
			cost = cost.Add(lotCost)
			continue
		}
		needed := shares.Sub(covered)
		cost = cost.Add(needed.Mul(ladder[i].Price))
		remainder := ladder[i].Quantity.Sub(needed)
		resp := make([]Lot, 0, len(ladder)-i)
		if remainder.IsPositive() {
			resp = append(resp, Lot{Quantity: remainder, Price: ladder[i].Price})
		}
		resp = append(resp, ladder[i+1:]...)
		return cost, resp, nil
	}
	return cost, []Lot{}, nil
}

func ladderQuantity(ladder []Lot) decimal.Decimal {
	var q decimal.Decimal
	for i := range ladder {
		q = q.Add(ladder[i].Quantity)
	}
	return q
}

func copyLadder(ladder []Lot) []Lot {
	resp := make([]Lot, len(ladder))
	copy(resp, ladder)
	return resp
}
