package base

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/data"
)

// OnEnd is a no-op for strategies that only act at the open
func (s *Strategy) OnEnd(Context) error {
	return nil
}

// OnBegin is a no-op for strategies that only act at the close
func (s *Strategy) OnBegin(Context) error {
	return nil
}

// MarkCustomSettingsApplied records that the config supplied overrides
func (s *Strategy) MarkCustomSettingsApplied() {
	s.customSettingsApplied = true
}

// CustomSettingsApplied returns whether config overrides were used
func (s *Strategy) CustomSettingsApplied() bool {
	return s.customSettingsApplied
}

// Closes returns the close prices of bars as floats for indicator libraries
func Closes(bars []data.Bar) []float64 {
	resp := make([]float64, len(bars))
	for i := range bars {
		resp[i] = bars[i].Close.InexactFloat64()
	}
	return resp
}

// FloatSetting parses a custom setting value. Values decoded from JSON
// arrive as float64 while sweeps may pass ints or strings
func FloatSetting(key string, v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case decimal.Decimal:
		return val.InexactFloat64(), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w provided %v value could not be parsed: %v", ErrInvalidCustomSettings, key, v)
}

// PositiveIntSetting parses a custom setting which must be a whole number
// above zero
func PositiveIntSetting(key string, v any) (int, error) {
	f, err := FloatSetting(key, v)
	if err != nil {
		return 0, err
	}
	if f <= 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("%w %v must be a positive whole number, received %v", ErrInvalidCustomSettings, key, v)
	}
	return int(f), nil
}

// BoolSetting parses a boolean custom setting
func BoolSetting(key string, v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("%w provided %v value could not be parsed: %v", ErrInvalidCustomSettings, key, v)
}
