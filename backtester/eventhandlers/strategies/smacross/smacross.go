package smacross

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
	"github.com/thrasher-corp/gct-ta/indicators"
)

const (
	// Name is the strategy name
	Name = "smacross"
	// FastPeriodKey is the custom setting for the fast moving average period
	FastPeriodKey = "fast-period"
	// SlowPeriodKey is the custom setting for the slow moving average period
	SlowPeriodKey   = "slow-period"
	positionSizeKey = "position-size"
	allowShortKey   = "allow-short"
	description     = `The simple moving average crossover compares a fast and a slow moving average of closing prices after each close. When the fast average is above the slow one the strategy targets a long position of a fixed size for the next open, otherwise it targets flat or, when shorting is allowed, a short position of the same size`
)

// Strategy is an implementation of the Handler interface
type Strategy struct {
	base.Strategy
	fastPeriod   int
	slowPeriod   int
	positionSize decimal.Decimal
	allowShort   bool
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnEnd compares the averages once the close is known and queues the
// rebalancing order for the next open
func (s *Strategy) OnEnd(ctx base.Context) error {
	if ctx == nil {
		return base.ErrNilContext
	}
	var errs error
	for _, sym := range ctx.EligibleSymbols() {
		target, ok, err := s.target(ctx, sym)
		if err != nil {
			errs = libcommon.AppendError(errs, fmt.Errorf("%v %w", sym, err))
			continue
		}
		if !ok {
			continue
		}
		var current decimal.Decimal
		if pos, held := ctx.Position(sym); held {
			current = pos.SignedQuantity()
		}
		delta := target.Sub(current)
		if delta.IsZero() {
			continue
		}
		if _, err = ctx.PlaceMarketOrder(sym, delta, common.Open); err != nil {
			errs = libcommon.AppendError(errs, fmt.Errorf("%v %w", sym, err))
		}
	}
	return errs
}

// target returns the desired signed position. ok is false when there is not
// yet enough history for the slow average
func (s *Strategy) target(ctx base.Context, symbol string) (decimal.Decimal, bool, error) {
	bars, err := ctx.Window(symbol)
	if err != nil {
		return decimal.Zero, false, err
	}
	longest := s.slowPeriod
	if s.fastPeriod > longest {
		longest = s.fastPeriod
	}
	if len(bars) < longest {
		return decimal.Zero, false, nil
	}
	closes := base.Closes(bars)
	fast := indicators.SMA(closes, s.fastPeriod)
	slow := indicators.SMA(closes, s.slowPeriod)
	if len(fast) == 0 || len(slow) == 0 {
		return decimal.Zero, false, nil
	}
	latestFast := fast[len(fast)-1]
	latestSlow := slow[len(slow)-1]
	log.Debugf(common.SubLoggers[common.Strategy], "%v %v %v fast SMA %v slow SMA %v",
		ctx.Date().Format(libcommon.DateFormat), Name, symbol, latestFast, latestSlow)
	switch {
	case latestFast > latestSlow:
		return s.positionSize, true, nil
	case s.allowShort && latestFast < latestSlow:
		return s.positionSize.Neg(), true, nil
	default:
		return decimal.Zero, true, nil
	}
}

// SetCustomSettings allows a user to modify the averaging periods and sizing
// in their config or through a parameter sweep
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		switch k {
		case FastPeriodKey:
			period, err := base.PositiveIntSetting(k, v)
			if err != nil {
				return err
			}
			s.fastPeriod = period
		case SlowPeriodKey:
			period, err := base.PositiveIntSetting(k, v)
			if err != nil {
				return err
			}
			s.slowPeriod = period
		case positionSizeKey:
			size, err := base.FloatSetting(k, v)
			if err != nil {
				return err
			}
			if size <= 0 {
				return fmt.Errorf("%w %v must be positive, received %v", base.ErrInvalidCustomSettings, k, v)
			}
			s.positionSize = decimal.NewFromFloat(size)
		case allowShortKey:
			allow, err := base.BoolSetting(k, v)
			if err != nil {
				return err
			}
			s.allowShort = allow
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
	s.fastPeriod = 10
	s.slowPeriod = 30
	s.positionSize = decimal.NewFromInt(100)
	s.allowShort = false
}

// RequiredLookback returns how many bars the strategy needs to act
func (s *Strategy) RequiredLookback() int {
	if s.fastPeriod > s.slowPeriod {
		return s.fastPeriod
	}
	return s.slowPeriod
}
