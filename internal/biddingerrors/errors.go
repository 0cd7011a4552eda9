package biddingerrors

import (
	"errors"
	"fmt"
)

// Data-model errors, caller-correctable
var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrUnknownCurrency  = errors.New("unknown currency")
)

// business rule rejections
var (
	ErrLotNotOpen        = errors.New("lot not open")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrInvalidTransition = errors.New("invalid lot state transition")
	ErrOutsideWindow     = errors.New("outside auction window")
	ErrInvalidAuction    = errors.New("invalid auction")
	ErrInvalidLot        = errors.New("invalid lot")
	ErrNoBids            = errors.New("no bids found for lot")
	ErrNoWinningBid      = errors.New("lot closed without a winning bid")
)

// Repository-level errors
var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrConflict            = errors.New("concurrent modification conflict")
	ErrSchemaNotReady      = errors.New("schema not ready")
)

// Startup integrity errors
var (
	ErrMigrationChecksumMismatch = errors.New("migration checksum mismatch")
	ErrMigrationFailed           = errors.New("migration failed")
)

// MigrationFailedError carries the version that could not be applied.
type MigrationFailedError struct {
	Version int
	Cause   error
}

func (e *MigrationFailedError) Error() string {
	return fmt.Sprintf("migration %d failed: %v", e.Version, e.Cause)
}

func (e *MigrationFailedError) Unwrap() []error {
	return []error{ErrMigrationFailed, e.Cause}
}

// ChecksumMismatchError reports an applied migration whose script changed after it shipped.
type ChecksumMismatchError struct {
	Version  int
	Recorded string
	Computed string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("migration %d checksum mismatch: recorded %s, computed %s", e.Version, e.Recorded, e.Computed)
}

func (e *ChecksumMismatchError) Unwrap() error {
	return ErrMigrationChecksumMismatch
}

// IsRejection reports whether err is a business-rule rejection that is recorded
// as a Rejected bid and surfaced to the end user rather than logged as a fault.
func IsRejection(err error) bool {
	return errors.Is(err, ErrLotNotOpen) ||
		errors.Is(err, ErrBidTooLow) ||
		errors.Is(err, ErrCurrencyMismatch)
}

// IsRetryable reports whether the caller may retry the operation unchanged.
// Conflicts only surface once internal retries are exhausted.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSchemaNotReady)
}
