package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/barsim/backtester/common"
	"github.com/thrasher-corp/barsim/backtester/data"
	libcommon "github.com/thrasher-corp/barsim/common"
	"github.com/thrasher-corp/barsim/common/file"
	"github.com/thrasher-corp/barsim/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const expectedColumns = 7

var errInvalidRow = errors.New("invalid csv row")

// LoadData reads date,symbol,open,high,low,close,volume rows from a file.
// A header row is skipped. Dates may be YYYY-MM-DD or unix seconds
func LoadData(path string) (map[string][]data.Bar, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("%w %v", libcommon.ErrFileNotFound, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Errorln(common.SubLoggers[common.Data], closeErr)
		}
	}()
	resp, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%v %w", path, err)
	}
	log.Infof(common.SubLoggers[common.Data], "loaded %d symbols from %v", len(resp), path)
	return resp, nil
}

// Parse reads bars from any csv stream. A UTF-8 or UTF-16 byte order mark is
// honoured so spreadsheet exports load unchanged
func Parse(r io.Reader) (map[string][]data.Bar, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = expectedColumns
	reader.TrimLeadingSpace = true
	resp := make(map[string][]data.Bar)
	line := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		line++
		if line == 1 && strings.EqualFold(row[0], "date") {
			continue
		}
		symbol, bar, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d %w", line, err)
		}
		resp[symbol] = append(resp[symbol], bar)
	}
	if len(resp) == 0 {
		return nil, data.ErrNoData
	}
	return resp, nil
}

func parseRow(row []string) (string, data.Bar, error) {
	var b data.Bar
	date, err := parseDate(row[0])
	if err != nil {
		return "", b, err
	}
	b.Date = date
	symbol := strings.TrimSpace(row[1])
	if symbol == "" {
		return "", b, fmt.Errorf("%w empty symbol", errInvalidRow)
	}
	fields := []*decimal.Decimal{&b.Open, &b.High, &b.Low, &b.Close, &b.Volume}
	for i := range fields {
		*fields[i], err = decimal.NewFromString(strings.TrimSpace(row[i+2]))
		if err != nil {
			return "", b, fmt.Errorf("%w column %d: %v", errInvalidRow, i+3, err)
		}
	}
	return symbol, b, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(libcommon.DateFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(libcommon.SimpleTimeFormat, s); err == nil {
		return data.NormaliseDate(t), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w date '%v'", errInvalidRow, s)
	}
	t := time.Unix(v, 0).UTC()
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w invalid timestamp '%v'", errInvalidRow, s)
	}
	return data.NormaliseDate(t), nil
}
