// Package currency provides historical exchange rate lookups backed by the
// ECB daily reference rate dataset. All rates are relative to EUR.
package currency

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRateNotFound indicates no rate row exists within the lookback window.
var ErrRateNotFound = errors.New("exchange rate not found")

// lookbackDays is the maximum number of daily rows consulted for one lookup,
// including the requested date itself. Weekends and ECB holidays leave gaps
// in the dataset; a week covers the longest run of them.
const lookbackDays = 7

const dateLayout = "2006-01-02"

// baseCurrency is the dataset's implicit base; it never appears as a column
// and always resolves to a rate of 1.0.
const baseCurrency = "EUR"

// Table holds daily exchange rates for a fixed, ordered list of currencies.
// Immutable once loaded for a run.
type Table struct {
	rates      map[string][]float64
	currencies []string
}

// NewTable builds a table from an ordered currency list and per-date rate rows
// keyed by ISO date (2006-01-02). Each row must follow the currency order.
func NewTable(currencies []string, rates map[string][]float64) *Table {
	return &Table{currencies: currencies, rates: rates}
}

// Currencies returns the tracked currency codes in column order.
func (t *Table) Currencies() []string {
	return t.currencies
}

// Days returns the number of dated rows loaded.
func (t *Table) Days() int {
	return len(t.rates)
}

// Rate returns the multiplier converting an amount in source into dest as of
// the nearest available date at or before the requested date.
//
// Matching is case-insensitive. Starting at date, rows are consulted one day
// backward at a time for at most lookbackDays attempts; if none is found the
// result is ErrRateNotFound.
func (t *Table) Rate(date time.Time, source, dest string) (float64, error) {
	if strings.EqualFold(source, dest) {
		return 1.0, nil
	}

	row, err := t.rowFor(date)
	if err != nil {
		return 0, err
	}

	sourceRate, err := t.rateIn(row, source)
	if err != nil {
		return 0, err
	}
	destRate, err := t.rateIn(row, dest)
	if err != nil {
		return 0, err
	}

	return destRate / sourceRate, nil
}

func (t *Table) rowFor(date time.Time) ([]float64, error) {
	day := date.UTC()
	for i := 0; i < lookbackDays; i++ {
		if row, ok := t.rates[day.Format(dateLayout)]; ok {
			return row, nil
		}
		day = day.AddDate(0, 0, -1)
	}
	return nil, fmt.Errorf("%w: no row within %d days of %s",
		ErrRateNotFound, lookbackDays, date.UTC().Format(dateLayout))
}

func (t *Table) rateIn(row []float64, code string) (float64, error) {
	if strings.EqualFold(code, baseCurrency) {
		return 1.0, nil
	}
	for i, c := range t.currencies {
		if strings.EqualFold(c, code) {
			if i >= len(row) {
				return 0, fmt.Errorf("%w: no column for %s", ErrRateNotFound, code)
			}
			return row[i], nil
		}
	}
	return 0, fmt.Errorf("%w: unknown currency %s", ErrRateNotFound, code)
}
