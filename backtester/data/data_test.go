package data

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/barsim/backtester/common"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func bar(d int, price int64) Bar {
	p := decimal.NewFromInt(price)
	return Bar{
		Date:   day(d),
		Open:   p,
		High:   p.Add(decimal.NewFromInt(1)),
		Low:    p.Sub(decimal.NewFromInt(1)),
		Close:  p.Add(decimal.NewFromInt(2)),
		Volume: decimal.NewFromInt(100),
	}
}

func testHolder(t *testing.T) *Holder {
	t.Helper()
	h, err := NewHolder(map[string][]Bar{
		"AAA": {bar(4, 13), bar(2, 11), bar(3, 12)},
		"BBB": {bar(3, 20), bar(5, 22)},
	})
	require.NoError(t, err)
	return h
}

func TestParseInterval(t *testing.T) {
	t.Parallel()
	i, err := ParseInterval("1w")
	require.NoError(t, err)
	assert.Equal(t, OneWeek, i)
	i, err = ParseInterval("")
	require.NoError(t, err)
	assert.Equal(t, OneDay, i)
	_, err = ParseInterval("5min")
	assert.ErrorIs(t, err, ErrUnsupportedInterval)
}

func TestNewHolder(t *testing.T) {
	t.Parallel()
	_, err := NewHolder(nil)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = NewHolder(map[string][]Bar{"AAA": {bar(2, 1), bar(2, 1)}})
	assert.ErrorIs(t, err, errDuplicateDate)
	bad := bar(2, 5)
	bad.High = decimal.NewFromInt(1)
	_, err = NewHolder(map[string][]Bar{"AAA": {bad}})
	assert.ErrorIs(t, err, errInvalidBar)

	h := testHolder(t)
	assert.Equal(t, []string{"AAA", "BBB"}, h.Symbols())
	assert.Equal(t, []time.Time{day(2), day(3), day(4), day(5)}, h.DateIndex())
}

func TestPrice(t *testing.T) {
	t.Parallel()
	h := testHolder(t)
	p, err := h.Price("AAA", day(3), common.Open)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(12)))
	p, err = h.Price("AAA", day(3).Add(time.Hour*15), common.Close)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(14)))

	_, err = h.Price("BBB", day(4), common.Open)
	assert.ErrorIs(t, err, common.ErrNoDataForDate)
	_, err = h.Price("CCC", day(4), common.Open)
	assert.ErrorIs(t, err, common.ErrUnknownSymbol)
	_, err = h.Price("AAA", day(4), common.Phase(9))
	assert.ErrorIs(t, err, common.ErrInvalidPhase)
}

func TestBarsAvailable(t *testing.T) {
	t.Parallel()
	h := testHolder(t)
	assert.Equal(t, 0, h.BarsAvailable("AAA", day(1)))
	assert.Equal(t, 2, h.BarsAvailable("AAA", day(3)))
	assert.Equal(t, 3, h.BarsAvailable("AAA", day(9)))
	assert.Equal(t, 1, h.BarsAvailable("BBB", day(4)))
	assert.Equal(t, 0, h.BarsAvailable("CCC", day(4)))
	assert.True(t, h.HasBar("BBB", day(5)))
	assert.False(t, h.HasBar("BBB", day(4)))
}

func TestWindow(t *testing.T) {
	t.Parallel()
	h := testHolder(t)
	_, err := h.Window("AAA", day(4), 0, common.Open)
	assert.ErrorIs(t, err, errInvalidLookback)
	_, err = h.Window("CCC", day(4), 2, common.Open)
	assert.ErrorIs(t, err, common.ErrUnknownSymbol)

	w, err := h.Window("AAA", day(4), 2, common.Close)
	require.NoError(t, err)
	require.Len(t, w, 2)
	assert.Equal(t, day(3), w[0].Date)
	assert.True(t, w[1].Close.Equal(decimal.NewFromInt(15)))

	w, err = h.Window("AAA", day(4), 5, common.Open)
	require.NoError(t, err)
	require.Len(t, w, 3)
	assert.True(t, w[2].Open.Equal(decimal.NewFromInt(13)))
	assert.True(t, w[2].Close.IsZero(), "close must not be visible at the open")
	assert.True(t, w[1].Close.Equal(decimal.NewFromInt(14)))
}
