package database

import "strings"

// Bars are stored as text so decimal values round trip without float loss
const (
	barSchema = `CREATE TABLE IF NOT EXISTS %s (
		date text NOT NULL,
		symbol text NOT NULL,
		open text NOT NULL,
		high text NOT NULL,
		low text NOT NULL,
		close text NOT NULL,
		volume text NOT NULL,
		PRIMARY KEY (date, symbol)
	);`
	insertBar  = `INSERT INTO %s (date, symbol, open, high, low, close, volume) VALUES (%s)`
	selectBars = `SELECT date, symbol, open, high, low, close, volume FROM %s ORDER BY date ASC, symbol ASC`
)

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
