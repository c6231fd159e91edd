// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Standard sentinel errors
var (
	ErrNoData             = errors.New("no price data")
	ErrNonViableSizing    = errors.New("non-viable position sizing")
	ErrInvariantViolation = errors.New("portfolio invariant violation")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
)

// NoDataError reports a missing symbol or an empty date range. It is
// recoverable: the simulator skips the symbol for the day and moves on.
type NoDataError struct {
	Symbol string
	Date   time.Time
}

func (e *NoDataError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("no price data for %s", e.Symbol)
	}
	return fmt.Sprintf("no price data for %s on %s", e.Symbol, e.Date.Format("2006-01-02"))
}

func (e *NoDataError) Unwrap() error {
	return ErrNoData
}

// NewNoDataError creates a new NoDataError.
func NewNoDataError(symbol string, date time.Time) *NoDataError {
	return &NoDataError{Symbol: symbol, Date: date}
}

// SizingError reports that risk or capital constraints could not be
// satisfied for a candidate entry. Recoverable: the entry is skipped.
type SizingError struct {
	Symbol string
	Reason string
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("sizing rejected for %s: %s", e.Symbol, e.Reason)
}

func (e *SizingError) Unwrap() error {
	return ErrNonViableSizing
}

// NewSizingError creates a new SizingError.
func NewSizingError(symbol, reason string) *SizingError {
	return &SizingError{Symbol: symbol, Reason: reason}
}

// InvariantError reports a broken ledger invariant, e.g. a duplicate open
// position or a cash debit beyond the available balance. It is a programming
// error and must abort the simulation; it is never swallowed.
type InvariantError struct {
	Invariant string
	Symbol    string
	Detail    string
}

func (e *InvariantError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("invariant violation [%s] %s: %s", e.Invariant, e.Symbol, e.Detail)
	}
	return fmt.Sprintf("invariant violation [%s]: %s", e.Invariant, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// NewInvariantError creates a new InvariantError.
func NewInvariantError(invariant, symbol, detail string) *InvariantError {
	return &InvariantError{Invariant: invariant, Symbol: symbol, Detail: detail}
}

// IsNoData reports whether err is a recoverable missing-data error.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// IsNonViable reports whether err is a recoverable sizing rejection.
func IsNonViable(err error) bool {
	return errors.Is(err, ErrNonViableSizing)
}

// IsInvariant reports whether err is a fatal invariant violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
