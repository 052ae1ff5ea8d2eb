package config

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies"
	"github.com/thrasher-corp/barsim/backtester/eventhandlers/strategies/base"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/common/file"
	"github.com/thrasher-corp/barsim/log"
)

// ReadConfigFromFile will take a config from a path. Environment variables
// prefixed with EnvPrefix override values found in the file
func ReadConfigFromFile(path string) (*Config, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("%w %v", libcommon.ErrFileNotFound, path)
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadConfig unmarshalls json byte data into a config struct
func LoadConfig(b []byte) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
		dc.Squash = true
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			decimalHook,
			dateHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func decimalHook(_, t reflect.Type, d interface{}) (interface{}, error) {
	if t != decimalType {
		return d, nil
	}
	switch val := d.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(val))
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	}
	return d, nil
}

func dateHook(f, t reflect.Type, d interface{}) (interface{}, error) {
	if t != timeType || f.Kind() != reflect.String {
		return d, nil
	}
	s := strings.TrimSpace(d.(string))
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{libcommon.DateFormat, time.RFC3339, libcommon.SimpleTimeFormat} {
		if tt, err := time.Parse(layout, s); err == nil {
			return data.NormaliseDate(tt), nil
		}
	}
	return nil, fmt.Errorf("cannot parse date %q, expected %v", s, libcommon.DateFormat)
}

// Validate checks all config settings
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w config", libcommon.ErrNilPointer)
	}
	if err := c.validateStrategySettings(); err != nil {
		return err
	}
	if !c.FundingSettings.InitialCash.IsPositive() {
		return fmt.Errorf("%w, received %v", errBadInitialCash, c.FundingSettings.InitialCash)
	}
	if err := c.validateDataSettings(); err != nil {
		return err
	}
	return c.validateSweepSettings()
}

func (c *Config) validateStrategySettings() error {
	strats := strategies.GetStrategies()
	for i := range strats {
		if strings.EqualFold(strats[i].Name(), c.StrategySettings.Name) {
			return nil
		}
	}
	return fmt.Errorf("strategy %v %w", c.StrategySettings.Name, base.ErrStrategyNotFound)
}

func (c *Config) validateDataSettings() error {
	d := &c.DataSettings
	if _, err := data.ParseInterval(d.Interval); err != nil {
		return err
	}
	switch {
	case d.CSVData == nil && d.DatabaseData == nil:
		return errNoDataSource
	case d.CSVData != nil && d.DatabaseData != nil:
		return errMultipleDataSources
	case d.CSVData != nil && d.CSVData.Path == "":
		return errNoCSVPath
	case d.DatabaseData != nil && d.DatabaseData.Table == "":
		return errNoTable
	}
	if d.Lookback < 0 {
		return fmt.Errorf("%w, received %v", errNegativeLookback, d.Lookback)
	}
	if !d.StartDate.IsZero() && !d.EndDate.IsZero() && !d.StartDate.Before(d.EndDate) {
		return fmt.Errorf("%w, received %v and %v", errBadDate,
			d.StartDate.Format(libcommon.DateFormat), d.EndDate.Format(libcommon.DateFormat))
	}
	return nil
}

func (c *Config) validateSweepSettings() error {
	s := c.SweepSettings
	if s == nil {
		return nil
	}
	for _, p := range []SweepParameter{s.ParameterA, s.ParameterB} {
		if p.Name == "" {
			return errSweepParameterUnset
		}
		if len(p.Values) == 0 {
			return fmt.Errorf("%w %v", errSweepParameterNoRange, p.Name)
		}
	}
	if strings.EqualFold(s.ParameterA.Name, s.ParameterB.Name) {
		return fmt.Errorf("%w, received %v twice", errSweepParametersEqual, s.ParameterA.Name)
	}
	if s.Workers < 0 {
		return errNegativeWorkers
	}
	return nil
}

// Interval returns the parsed data interval
func (c *Config) Interval() (data.Interval, error) {
	return data.ParseInterval(c.DataSettings.Interval)
}

// PrintSetting prints relevant settings to the console for easy reading
func (c *Config) PrintSetting() {
	log.Info(common.SubLoggers[common.Config], common.CMDColours.H1+"------------------Backtester Settings------------------------"+common.CMDColours.Default)
	log.Info(common.SubLoggers[common.Config], common.CMDColours.H2+"------------------Strategy Settings--------------------------"+common.CMDColours.Default)
	if c.Nickname != "" {
		log.Infof(common.SubLoggers[common.Config], "Nickname: %s", c.Nickname)
	}
	if c.Goal != "" {
		log.Infof(common.SubLoggers[common.Config], "Goal: %s", c.Goal)
	}
	log.Infof(common.SubLoggers[common.Config], "Strategy: %s", c.StrategySettings.Name)
	if len(c.StrategySettings.CustomSettings) > 0 {
		log.Info(common.SubLoggers[common.Config], "Custom strategy variables:")
		for k, v := range c.StrategySettings.CustomSettings {
			if k == "script" {
				v = "<inline script>"
			}
			log.Infof(common.SubLoggers[common.Config], "%s %v", common.FitStringToLimit(k+":", " ", 20, false), v)
		}
	} else {
		log.Info(common.SubLoggers[common.Config], "Custom strategy variables: unset")
	}
	log.Info(common.SubLoggers[common.Config], common.CMDColours.H2+"------------------Funding Settings---------------------------"+common.CMDColours.Default)
	log.Infof(common.SubLoggers[common.Config], "Initial cash: %v", c.FundingSettings.InitialCash)

	log.Info(common.SubLoggers[common.Config], common.CMDColours.H2+"------------------Data Settings------------------------------"+common.CMDColours.Default)
	log.Infof(common.SubLoggers[common.Config], "Interval: %v", c.DataSettings.Interval)
	log.Infof(common.SubLoggers[common.Config], "Lookback: %v", c.DataSettings.Lookback)
	if !c.DataSettings.StartDate.IsZero() {
		log.Infof(common.SubLoggers[common.Config], "Start date: %v", c.DataSettings.StartDate.Format(libcommon.DateFormat))
	}
	if !c.DataSettings.EndDate.IsZero() {
		log.Infof(common.SubLoggers[common.Config], "End date: %v", c.DataSettings.EndDate.Format(libcommon.DateFormat))
	}
	if c.DataSettings.CSVData != nil {
		log.Infof(common.SubLoggers[common.Config], "CSV path: %v", c.DataSettings.CSVData.Path)
	}
	if c.DataSettings.DatabaseData != nil {
		log.Infof(common.SubLoggers[common.Config], "Database driver: %v", c.DataSettings.DatabaseData.Config.Driver)
		log.Infof(common.SubLoggers[common.Config], "Database: %v", c.DataSettings.DatabaseData.Config.Database)
		log.Infof(common.SubLoggers[common.Config], "Table: %v", c.DataSettings.DatabaseData.Table)
	}
	if c.SweepSettings != nil {
		log.Info(common.SubLoggers[common.Config], common.CMDColours.H2+"------------------Sweep Settings-----------------------------"+common.CMDColours.Default)
		log.Infof(common.SubLoggers[common.Config], "%v: %v", c.SweepSettings.ParameterA.Name, c.SweepSettings.ParameterA.Values)
		log.Infof(common.SubLoggers[common.Config], "%v: %v", c.SweepSettings.ParameterB.Name, c.SweepSettings.ParameterB.Values)
		log.Infof(common.SubLoggers[common.Config], "Workers: %v", c.SweepSettings.Workers)
	}
}
