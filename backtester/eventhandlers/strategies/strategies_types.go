package strategies

import "github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"

// Handler defines all functions required to run a strategy. OnBegin is
// called at the open phase and OnEnd at the close phase of every date from
// the strategy start onwards
type Handler interface {
	Name() string
	Description() string
	OnBegin(base.Context) error
	OnEnd(base.Context) error
	SetCustomSettings(map[string]any) error
	SetDefaults()
}

// LookbackRequirer is implemented by strategies which need a minimum
// number of bars before they can act
type LookbackRequirer interface {
	RequiredLookback() int
}
