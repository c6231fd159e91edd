// Package signal produces candidate entry signals from daily price history.
package signal

import (
	"context"
	"time"

	"swingtrader/internal/models"
)

// Provider returns at most one candidate entry per symbol per day. A nil
// signal with a nil error means no entry; a NoData error means the symbol
// has no usable price data for that day and should be skipped.
type Provider interface {
	Scan(ctx context.Context, symbol string, date time.Time) (*models.Signal, error)
}
