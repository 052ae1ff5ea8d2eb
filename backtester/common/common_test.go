package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/barsim/log"
)

func TestPhase(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "close", Close.String())
	assert.Equal(t, "unknown", Phase(7).String())
	assert.True(t, Open < Close)
	assert.False(t, Phase(7).Valid())

	p, err := ParsePhase("Close")
	require.NoError(t, err)
	assert.Equal(t, Close, p)
	p, err = ParsePhase("begin")
	require.NoError(t, err)
	assert.Equal(t, Open, p)
	_, err = ParsePhase("midday")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestFitStringToLimit(t *testing.T) {
	t.Parallel()
	for _, ti := range []struct {
		str      string
		sep      string
		limit    int
		expected string
		upper    bool
	}{
		{str: "good", sep: " ", limit: 5, expected: "GOOD ", upper: true},
		{str: "negative limit", sep: " ", limit: -1, expected: "negative limit"},
		{str: "long spacer", sep: "--", limit: 14, expected: "long spacer---"},
		{str: "zero limit", sep: "--", limit: 0, expected: ""},
		{str: "over limit", sep: "--", limit: 6, expected: "ove..."},
		{str: "hi", sep: " ", limit: 1, expected: "h"},
	} {
		test := ti
		t.Run(test.str, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, FitStringToLimit(test.str, test.sep, test.limit, test.upper))
		})
	}
}

func TestGenerateFileName(t *testing.T) {
	t.Parallel()
	_, err := GenerateFileName("", "")
	assert.ErrorIs(t, err, errCannotGenerateFileName)
	_, err = GenerateFileName("hello", "")
	assert.ErrorIs(t, err, errCannotGenerateFileName)
	_, err = GenerateFileName("", "moto")
	assert.ErrorIs(t, err, errCannotGenerateFileName)
	_, err = GenerateFileName("...", "json")
	assert.ErrorIs(t, err, errCannotGenerateFileName)

	name, err := GenerateFileName("......HELL0.  +  _", "moto.")
	require.NoError(t, err)
	assert.Equal(t, "hell0_.moto", name)
}

func TestRegisterBacktesterSubLoggers(t *testing.T) {
	t.Parallel()
	require.NoError(t, RegisterBacktesterSubLoggers())
	assert.NotNil(t, SubLoggers[Engine])
	assert.ErrorIs(t, RegisterBacktesterSubLoggers(), log.ErrSubLoggerAlreadyRegistered)
}
