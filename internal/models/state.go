package models

import (
	"fmt"

	"philabid/internal/biddingerrors"
)

// LotState is the lifecycle state of a lot
type LotState string

const (
	LotDraft     LotState = "draft"
	LotOpen      LotState = "open"
	LotClosed    LotState = "closed"
	LotSettled   LotState = "settled"
	LotCancelled LotState = "cancelled"
)

// Valid reports whether s is a known state
func (s LotState) Valid() bool {
	switch s {
	case LotDraft, LotOpen, LotClosed, LotSettled, LotCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition leaves s
func (s LotState) Terminal() bool {
	return s == LotSettled || s == LotCancelled
}

// Transition validates s -> to. Every pair without a defined edge is rejected,
// including self-transitions; callers that want idempotency check for it first.
func (s LotState) Transition(to LotState) error {
	ok := false
	switch s {
	case LotDraft:
		ok = to == LotOpen || to == LotCancelled
	case LotOpen:
		ok = to == LotClosed || to == LotCancelled
	case LotClosed:
		ok = to == LotSettled
	case LotSettled, LotCancelled:
		ok = false
	default:
		return fmt.Errorf("unknown lot state %q: %w", s, biddingerrors.ErrInvalidTransition)
	}
	if !ok {
		return fmt.Errorf("%s -> %s: %w", s, to, biddingerrors.ErrInvalidTransition)
	}
	return nil
}

// BidStatus is the audit outcome of a bid
type BidStatus string

const (
	BidAccepted   BidStatus = "accepted"
	BidRejected   BidStatus = "rejected"
	BidSuperseded BidStatus = "superseded"
)

// Reason is the audit code stored with a rejected bid
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonLotNotOpen       Reason = "lot_not_open"
	ReasonBidTooLow        Reason = "bid_too_low"
	ReasonCurrencyMismatch Reason = "currency_mismatch"
)

// Err maps a rejection reason to the error surfaced to the caller
func (r Reason) Err() error {
	switch r {
	case ReasonLotNotOpen:
		return biddingerrors.ErrLotNotOpen
	case ReasonBidTooLow:
		return biddingerrors.ErrBidTooLow
	case ReasonCurrencyMismatch:
		return biddingerrors.ErrCurrencyMismatch
	default:
		return nil
	}
}
