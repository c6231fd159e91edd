package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"swingtrader/internal/models"
)

// candleRow is the CSV layout for daily candle imports, matching the usual
// Date,Open,High,Low,Close,Volume export shape with an optional Symbol
// column.
type candleRow struct {
	Symbol string  `csv:"Symbol,omitempty"`
	Date   string  `csv:"Date"`
	Open   float64 `csv:"Open"`
	High   float64 `csv:"High"`
	Low    float64 `csv:"Low"`
	Close  float64 `csv:"Close"`
	Volume int64   `csv:"Volume"`
}

// ImportCSV reads daily candles from a CSV file into the store. Rows
// without a Symbol column take the fallback symbol.
func ImportCSV(ctx context.Context, ds DataStore, path, fallbackSymbol string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []*candleRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for i, row := range rows {
		symbol := row.Symbol
		if symbol == "" {
			symbol = fallbackSymbol
		}
		if symbol == "" {
			return 0, fmt.Errorf("row %d of %s has no symbol and no fallback was given", i+1, path)
		}

		ts, err := parseDate(row.Date)
		if err != nil {
			return 0, fmt.Errorf("row %d of %s: %w", i+1, path, err)
		}

		candles = append(candles, models.Candle{
			Symbol:    symbol,
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}

	if err := ds.SaveCandles(ctx, candles); err != nil {
		return 0, fmt.Errorf("saving candles: %w", err)
	}

	return len(candles), nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
