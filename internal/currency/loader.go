package currency

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LunNova/import-ynab/internal/common"
)

// DefaultDatasetURL is the ECB historical daily reference rate archive.
const DefaultDatasetURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.zip"

// Loader downloads and parses the exchange rate dataset once per run.
type Loader struct {
	httpClient *http.Client
	url        string
	retryOpts  common.RetryOptions
}

// NewLoader creates a loader for the given dataset URL. An empty URL selects
// the ECB default.
func NewLoader(url string) *Loader {
	if url == "" {
		url = DefaultDatasetURL
	}
	return &Loader{
		url: url,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     15 * time.Second,
		},
	}
}

// Load fetches the zipped dataset and parses its first entry into a Table.
// The download is retried on transient failure; parse errors are not.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	var body []byte

	err := common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		resp, err := l.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to download rate dataset: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("rate dataset fetch returned %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read rate dataset: %w", err)
		}
		return nil
	}, l.retryOpts)
	if err != nil {
		return nil, err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open rate archive: %w", err)
	}
	if len(archive.File) == 0 {
		return nil, fmt.Errorf("rate archive is empty")
	}

	entry, err := archive.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open rate archive entry: %w", err)
	}
	defer func() { _ = entry.Close() }()

	table, err := ParseTable(entry)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded exchange rate table",
		"currencies", len(table.Currencies()),
		"days", table.Days())

	return table, nil
}

// ParseTable reads the dataset CSV: a header row of "Date" followed by
// currency codes, then one row per date with EUR-relative rates.
//
// Unparsable rate cells load as 0.0 rather than aborting; the dataset carries
// "N/A" for currencies before their tracking started. A 0.0 rate makes any
// conversion involving that currency nonsensical, so lookups touching those
// cells should be treated with suspicion. Rows with fewer than two fields are
// skipped.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read rate header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("rate header has no currency columns")
	}

	currencies := make([]string, 0, len(header)-1)
	for _, code := range header[1:] {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		currencies = append(currencies, code)
	}

	rates := make(map[string][]float64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rate row: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		date, err := time.Parse(dateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate date %q: %w", record[0], err)
		}

		row := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			rate, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				rate = 0.0
			}
			row = append(row, rate)
		}
		rates[date.Format(dateLayout)] = row
	}

	return NewTable(currencies, rates), nil
}
