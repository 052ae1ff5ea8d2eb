package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceNilHandling(t *testing.T) {
	t.Parallel()
	var i *Instance
	assert.ErrorIs(t, i.SetConfig(&Config{}), errNilInstance)
	assert.ErrorIs(t, i.Ping(), errNilInstance)
	assert.False(t, i.IsConnected())
	_, err := i.GetSQL()
	assert.ErrorIs(t, err, errNilInstance)

	i = &Instance{}
	assert.ErrorIs(t, i.SetConfig(nil), errNilConfig)
	assert.ErrorIs(t, i.Ping(), errNilSQL)
	_, err = i.GetSQL()
	assert.ErrorIs(t, err, errNilSQL)
	assert.ErrorIs(t, i.SetSQLiteConnection(nil), errNilSQL)
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	i := &Instance{}
	assert.NoError(t, i.SetConfig(&Config{Driver: DBSQLite3}))
	assert.Equal(t, "?, ?, ?", i.placeholders(3))
	assert.NoError(t, i.SetConfig(&Config{Driver: DBPostgreSQL}))
	assert.Equal(t, "$1, $2", i.placeholders(2))
}

func TestQuoteIdentifier(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `"bars"`, quoteIdentifier("bars"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
