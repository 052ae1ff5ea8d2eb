package portfolio

import "sort"

// Update replaces the view with the given holdings
func (v *View) Update(holdings []Holding) {
	v.holdings = make([]Holding, len(holdings))
	copy(v.holdings, holdings)
	sort.Slice(v.holdings, func(i, j int) bool {
		return v.holdings[i].Symbol < v.holdings[j].Symbol
	})
	v.index = make(map[string]int, len(v.holdings))
	for i := range v.holdings {
		v.index[v.holdings[i].Symbol] = i
	}
}

// Symbols returns the held symbols in sorted order
func (v *View) Symbols() []string {
	resp := make([]string, len(v.holdings))
	for i := range v.holdings {
		resp[i] = v.holdings[i].Symbol
	}
	return resp
}

// Holds reports whether the symbol has an open position
func (v *View) Holds(symbol string) bool {
	_, ok := v.index[symbol]
	return ok
}

// Holding returns the summary for a symbol
func (v *View) Holding(symbol string) (Holding, bool) {
	i, ok := v.index[symbol]
	if !ok {
		return Holding{}, false
	}
	return v.holdings[i], true
}

// Holdings returns a copy of every holding in symbol order
func (v *View) Holdings() []Holding {
	resp := make([]Holding, len(v.holdings))
	copy(resp, v.holdings)
	return resp
}

// Len returns the number of open positions
func (v *View) Len() int {
	return len(v.holdings)
}

// IsLong reports whether the holding is a long position
func (h *Holding) IsLong() bool {
	return h.Quantity.IsPositive()
}
