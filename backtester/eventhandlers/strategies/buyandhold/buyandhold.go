package buyandhold

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

const (
	// Name is the strategy name
	Name          = "buyandhold"
	allocationKey = "allocation"
	description   = `Buy and hold spends a share of available cash on each symbol the first time it becomes eligible, split equally between the symbols joining on that date. Positions are held until the end of the run or until the symbol is delisted`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	allocation decimal.Decimal
	bought     map[string]bool
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnBegin buys every newly eligible symbol at the open
func (s *Strategy) OnBegin(ctx base.Context) error {
	if ctx == nil {
		return base.ErrNilContext
	}
	if s.bought == nil {
		s.bought = make(map[string]bool)
	}
	var candidates []string
	for _, sym := range ctx.EligibleSymbols() {
		if s.bought[sym] || ctx.View().Holds(sym) {
			continue
		}
		candidates = append(candidates, sym)
	}
	if len(candidates) == 0 {
		return nil
	}
	budget := ctx.Cash().Mul(s.allocation).Div(decimal.NewFromInt(int64(len(candidates))))
	var errs error
	for _, sym := range candidates {
		s.bought[sym] = true
		price, err := ctx.Price(sym)
		if err != nil {
			errs = libcommon.AppendError(errs, err)
			continue
		}
		if !price.IsPositive() {
			continue
		}
		quantity := budget.Div(price).Floor()
		if quantity.IsZero() {
			log.Debugf(common.SubLoggers[common.Strategy], "%v budget %v too small to buy %v at %v", Name, budget, sym, price)
			continue
		}
		if _, err = ctx.PlaceMarketOrder(sym, quantity, common.Open); err != nil {
			errs = libcommon.AppendError(errs, fmt.Errorf("%v %w", sym, err))
		}
	}
	return errs
}

// SetCustomSettings allows the allocation ratio to be set in the config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		switch k {
		case allocationKey:
			allocation, err := base.FloatSetting(k, v)
			if err != nil {
				return err
			}
			if allocation <= 0 || allocation > 1 {
				return fmt.Errorf("%w allocation must be above 0 and at most 1, received %v", base.ErrInvalidCustomSettings, v)
			}
			s.allocation = decimal.NewFromFloat(allocation)
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v with value %v. Cannot apply", base.ErrInvalidCustomSettings, k, v)
		}
	}
	if len(customSettings) > 0 {
		s.MarkCustomSettingsApplied()
	}
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.allocation = decimal.NewFromInt(1)
	s.bought = make(map[string]bool)
}
