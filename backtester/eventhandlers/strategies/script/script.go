package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/orderbook"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/log"
)

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnBegin runs the script at the open
func (s *Strategy) OnBegin(ctx base.Context) error {
	return s.run(ctx)
}

// OnEnd runs the script at the close
func (s *Strategy) OnEnd(ctx base.Context) error {
	return s.run(ctx)
}

// SetCustomSettings takes the script source and passes any other keys to
// the script as params
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		switch k {
		case SourceKey:
			src, ok := v.(string)
			if !ok || src == "" {
				return fmt.Errorf("%w %v must be a non empty string", base.ErrInvalidCustomSettings, k)
			}
			s.source = []byte(src)
		case PathKey:
			path, ok := v.(string)
			if !ok || path == "" {
				return fmt.Errorf("%w %v must be a non empty string", base.ErrInvalidCustomSettings, k)
			}
			s.path = path
		case timeoutKey:
			seconds, err := base.FloatSetting(k, v)
			if err != nil {
				return err
			}
			if seconds <= 0 {
				return fmt.Errorf("%w %v must be positive", base.ErrInvalidCustomSettings, k)
			}
			s.timeout = time.Duration(seconds * float64(time.Second))
		default:
			switch val := v.(type) {
			case int:
				s.params[k] = int64(val)
			case decimal.Decimal:
				s.params[k] = val.InexactFloat64()
			default:
				s.params[k] = v
			}
		}
	}
	if len(customSettings) > 0 {
		s.MarkCustomSettingsApplied()
	}
	s.compiled = nil
	return nil
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.source = nil
	s.path = ""
	s.timeout = 5 * time.Second
	s.params = make(map[string]interface{})
	s.compiled = nil
}

// Compile loads and compiles the script. It is called on first use if not
// called beforehand
func (s *Strategy) Compile() error {
	src := s.source
	if len(src) == 0 {
		if s.path == "" {
			return errNoScript
		}
		path := s.path
		if filepath.Ext(path) == "" {
			path += fileExt
		}
		var err error
		src, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%v %w", Name, err)
		}
	}
	sc := tengo.NewScript(src)
	sc.SetImports(stdlib.GetModuleMap("math", "text", "times", "fmt"))
	globals := map[string]interface{}{
		"date":      "",
		"phase":     "",
		"symbols":   []interface{}{},
		"cash":      float64(0),
		"equity":    float64(0),
		"positions": map[string]interface{}{},
		"bars":      map[string]interface{}{},
		"params":    s.params,
	}
	for k, v := range globals {
		if err := sc.Add(k, v); err != nil {
			return fmt.Errorf("%v %w", Name, err)
		}
	}
	if err := sc.Add("order", &tengo.UserFunction{Name: "order", Value: s.order}); err != nil {
		return fmt.Errorf("%v %w", Name, err)
	}
	if err := sc.Add("price", &tengo.UserFunction{Name: "price", Value: s.price}); err != nil {
		return fmt.Errorf("%v %w", Name, err)
	}
	compiled, err := sc.Compile()
	if err != nil {
		return fmt.Errorf("%v compile %w", Name, err)
	}
	s.compiled = compiled
	return nil
}

func (s *Strategy) run(ctx base.Context) error {
	if ctx == nil {
		return base.ErrNilContext
	}
	if s.compiled == nil {
		if err := s.Compile(); err != nil {
			return err
		}
	}
	if err := s.setGlobals(ctx); err != nil {
		return err
	}
	s.current = ctx
	defer func() { s.current = nil }()
	runCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.compiled.RunContext(runCtx); err != nil {
		return fmt.Errorf("%v %v %v run %w", Name, ctx.Date().Format(libcommon.DateFormat), ctx.Phase(), err)
	}
	return nil
}

func (s *Strategy) setGlobals(ctx base.Context) error {
	eligible := ctx.EligibleSymbols()
	symbols := make([]interface{}, len(eligible))
	bars := make(map[string]interface{}, len(eligible))
	var errs error
	for i := range eligible {
		symbols[i] = eligible[i]
		window, err := ctx.Window(eligible[i])
		if err != nil {
			errs = libcommon.AppendError(errs, err)
			continue
		}
		rows := make([]interface{}, len(window))
		for j := range window {
			rows[j] = map[string]interface{}{
				"date":   window[j].Date.Format(libcommon.DateFormat),
				"open":   window[j].Open.InexactFloat64(),
				"high":   window[j].High.InexactFloat64(),
				"low":    window[j].Low.InexactFloat64(),
				"close":  window[j].Close.InexactFloat64(),
				"volume": window[j].Volume.InexactFloat64(),
			}
		}
		bars[eligible[i]] = rows
	}
	if errs != nil {
		return errs
	}
	positions := make(map[string]interface{})
	for _, h := range ctx.View().Holdings() {
		positions[h.Symbol] = h.Quantity.InexactFloat64()
	}
	values := map[string]interface{}{
		"date":      ctx.Date().Format(libcommon.DateFormat),
		"phase":     ctx.Phase().String(),
		"symbols":   symbols,
		"cash":      ctx.Cash().InexactFloat64(),
		"equity":    ctx.Equity().InexactFloat64(),
		"positions": positions,
		"bars":      bars,
	}
	for k, v := range values {
		if err := s.compiled.Set(k, v); err != nil {
			return fmt.Errorf("%v set %v %w", Name, k, err)
		}
	}
	return nil
}

// order is exposed to scripts as order(symbol, quantity[, phase]). Rejected
// orders are returned to the script as error values. Execution failures stop
// the script and the run
func (s *Strategy) order(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, tengo.ErrWrongNumArguments
	}
	if s.current == nil {
		return nil, errScriptNotReady
	}
	symbol, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "symbol", Expected: "string", Found: args[0].TypeName()}
	}
	quantity, ok := tengo.ToFloat64(args[1])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "quantity", Expected: "float", Found: args[1].TypeName()}
	}
	phase := s.current.Phase()
	if len(args) == 3 {
		p, ok := tengo.ToString(args[2])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "phase", Expected: "string", Found: args[2].TypeName()}
		}
		var err error
		if phase, err = common.ParsePhase(p); err != nil {
			return scriptError(err), nil
		}
	}
	id, err := s.current.PlaceMarketOrder(symbol, decimal.NewFromFloat(quantity), phase)
	switch {
	case errors.Is(err, orderbook.ErrOrderRejected):
		log.Warnf(common.SubLoggers[common.Strategy], "%v order %v %v rejected: %v", Name, symbol, quantity, err)
		return scriptError(err), nil
	case err != nil:
		return nil, err
	}
	return &tengo.Int{Value: int64(id)}, nil
}

// price is exposed to scripts as price(symbol) and returns the current
// phase price
func (s *Strategy) price(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	if s.current == nil {
		return nil, errScriptNotReady
	}
	symbol, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "symbol", Expected: "string", Found: args[0].TypeName()}
	}
	p, err := s.current.Price(symbol)
	if err != nil {
		return scriptError(err), nil
	}
	return &tengo.Float{Value: p.InexactFloat64()}, nil
}

func scriptError(err error) tengo.Object {
	return &tengo.Error{Value: &tengo.String{Value: err.Error()}}
}
