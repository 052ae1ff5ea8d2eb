package strategies

import (
	"fmt"
	"strings"

	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/buyandhold"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/script"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/smacross"
)

// LoadStrategyByName returns a fresh strategy with its defaults set
func LoadStrategyByName(name string) (Handler, error) {
	strats := GetStrategies()
	for i := range strats {
		if !strings.EqualFold(name, strats[i].Name()) {
			continue
		}
		strats[i].SetDefaults()
		return strats[i], nil
	}
	return nil, fmt.Errorf("strategy '%v' %w", name, base.ErrStrategyNotFound)
}

// GetStrategies returns a new instance of every known strategy
func GetStrategies() []Handler {
	return []Handler{
		new(buyandhold.Strategy),
		new(smacross.Strategy),
		new(script.Strategy),
	}
}
