package service

import (
	"sort"
	"strings"

	"portfolio_tracker/internal/domain/entity"
)

// The derived view pipeline: pure, synchronous, recomputed from scratch
// whenever any input changes. Fixed step order: filter, then sort, then
// paginate. Summary totals are computed over the filtered set, not the
// paginated slice.

// FilterPositions keeps positions whose token symbol, name or address
// contains the query as a case-insensitive substring. An empty query
// keeps everything.
func FilterPositions(positions []entity.Position, query string) []entity.Position {
	q := strings.ToLower(query)
	out := make([]entity.Position, 0, len(positions))
	for _, pos := range positions {
		if q == "" ||
			strings.Contains(strings.ToLower(pos.Token.Symbol), q) ||
			strings.Contains(strings.ToLower(pos.Token.Name), q) ||
			strings.Contains(strings.ToLower(pos.Token.Address), q) {
			out = append(out, pos)
		}
	}
	return out
}

// SortPositions orders a copy of the slice by the given key. Sorting by
// token compares the token's symbol; every other key is a numeric field
// comparison. Equal keys keep the incoming order.
func SortPositions(positions []entity.Position, key entity.SortKey, dir entity.SortDirection) []entity.Position {
	out := make([]entity.Position, len(positions))
	copy(out, positions)

	less := func(a, b entity.Position) bool {
		if key == entity.SortKeyToken {
			return a.Token.Symbol < b.Token.Symbol
		}
		return sortValue(a, key) < sortValue(b, key)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if dir == entity.SortDesc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func sortValue(p entity.Position, key entity.SortKey) float64 {
	switch key {
	case entity.SortKeyPrice:
		return p.Price
	case entity.SortKeyQuantity:
		return p.Quantity
	case entity.SortKeyInvested:
		return p.Invested
	case entity.SortKeyValue:
		return p.Value
	case entity.SortKeyBuyPrice:
		return p.BuyPrice
	default:
		return p.PnLPercent
	}
}

// Paginate takes the first n items of the sorted-filtered list.
func Paginate(positions []entity.Position, n int) []entity.Position {
	if n < 0 {
		n = 0
	}
	if n > len(positions) {
		n = len(positions)
	}
	return positions[:n]
}

// ComputeTotals aggregates the summary-card values over the filtered
// set. P&L percent is 0 when nothing is invested.
func ComputeTotals(positions []entity.Position) entity.Totals {
	var t entity.Totals
	for _, pos := range positions {
		t.Invested += pos.Invested
		t.Value += pos.Value
	}
	t.PnL = t.Value - t.Invested
	if t.Invested > 0 {
		t.PnLPercent = t.PnL / t.Invested * 100
	}
	return t
}

// NextSort applies the column-click toggle rules: clicking the current
// key while ascending flips to descending; anything else (a new key, or
// the current key while descending) yields ascending.
func NextSort(curKey entity.SortKey, curDir entity.SortDirection, clicked entity.SortKey) (entity.SortKey, entity.SortDirection) {
	if curKey == clicked && curDir == entity.SortAsc {
		return clicked, entity.SortDesc
	}
	return clicked, entity.SortAsc
}
