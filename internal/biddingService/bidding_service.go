package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"philabid/internal/biddingerrors"
	"philabid/internal/models"
	"philabid/internal/money"
	"philabid/internal/repository"
	"philabid/utils"
)

// DefaultConflictRetries bounds how often a placement is re-validated after
// losing a write race on the same lot.
const DefaultConflictRetries = 3

// BidLedger validates bids against a lot's persisted state and records every
// outcome. Leading-bid state lives only in the store; the ledger holds none.
type BidLedger struct {
	repo       repository.AuctionDB
	now        func() time.Time
	maxRetries int
}

// Option configures a BidLedger
type Option func(*BidLedger)

// WithClock replaces the wall clock used for window checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *BidLedger) { l.now = now }
}

// WithConflictRetries sets how many times a lost race is re-validated.
func WithConflictRetries(n int) Option {
	return func(l *BidLedger) {
		if n >= 0 {
			l.maxRetries = n
		}
	}
}

// NewBidLedger creates a new BidLedger instance
func NewBidLedger(repo repository.AuctionDB, opts ...Option) *BidLedger {
	l := &BidLedger{
		repo:       repo,
		now:        func() time.Time { return time.Now().UTC() },
		maxRetries: DefaultConflictRetries,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PlaceBid validates and records a bid on a lot.
//
// An accepted bid supersedes the previous leader in the same transaction.
// A bid failing a business rule is stored as Rejected with its reason code and
// returned together with the matching error (ErrLotNotOpen, ErrBidTooLow or
// ErrCurrencyMismatch). Storage faults are returned unchanged and never retried.
func (l *BidLedger) PlaceBid(ctx context.Context, lotID, bidderID string, amount money.Money) (models.Bid, error) {
	if lotID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("ledger: %w - missing lotID or bidderID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsValid() {
		return models.Bid{}, fmt.Errorf("ledger: %w - bid amount unset", biddingerrors.ErrInvalidAmount)
	}

	var (
		bid models.Bid
		err error
	)
	for attempt := 0; ; attempt++ {
		bid, err = l.placeOnce(ctx, lotID, bidderID, amount)
		if !errors.Is(err, biddingerrors.ErrConflict) || attempt >= l.maxRetries {
			break
		}
		utils.Warn("bid lost a write race, revalidating", map[string]any{
			"lot_id":  lotID,
			"attempt": attempt + 1,
		})
	}

	switch {
	case err == nil:
		utils.Info("bid accepted", map[string]any{
			"lot_id":    lotID,
			"bid_id":    bid.BidID,
			"bidder_id": bidderID,
			"amount":    amount.String(),
		})
		return bid, nil
	case bid.Status == models.BidRejected:
		utils.Info("bid rejected", map[string]any{
			"lot_id":    lotID,
			"bid_id":    bid.BidID,
			"bidder_id": bidderID,
			"amount":    amount.String(),
			"reason":    string(bid.Reason),
		})
		return bid, err
	case errors.Is(err, biddingerrors.ErrStorageUnavailable):
		utils.Error("bid placement storage failure", map[string]any{
			"lot_id": lotID,
			"error":  err.Error(),
		})
	}
	return models.Bid{}, err
}

// placeOnce runs one validate-and-write pass inside a single transaction
func (l *BidLedger) placeOnce(ctx context.Context, lotID, bidderID string, amount money.Money) (models.Bid, error) {
	bid := models.Bid{
		BidID:    utils.GenerateID(),
		LotID:    lotID,
		BidderID: bidderID,
		Amount:   amount,
	}

	err := l.repo.InTx(ctx, func(tx repository.AuctionDB) error {
		now := l.now()
		bid.PlacedAt = now

		lot, err := tx.LoadLot(ctx, lotID)
		if err != nil {
			return fmt.Errorf("ledger: load lot %s: %w", lotID, err)
		}
		auction, err := tx.LoadAuction(ctx, lot.AuctionID)
		if err != nil {
			return fmt.Errorf("ledger: load auction %s: %w", lot.AuctionID, err)
		}
		if lot, err = l.closeIfElapsed(ctx, tx, lot, auction, now); err != nil {
			return err
		}

		leading, reason, err := l.validate(ctx, tx, lot, auction, amount, now)
		if err != nil {
			return err
		}

		if reason != models.ReasonNone {
			bid.Status = models.BidRejected
			bid.Reason = reason
			if err := tx.RecordBid(ctx, bid); err != nil {
				return fmt.Errorf("ledger: record rejected bid: %w", err)
			}
			return nil
		}

		bid.Status = models.BidAccepted
		if leading != nil {
			if err := tx.SupersedeBid(ctx, leading.BidID); err != nil {
				return fmt.Errorf("ledger: supersede bid %s: %w", leading.BidID, err)
			}
		}
		if err := tx.RecordBid(ctx, bid); err != nil {
			return fmt.Errorf("ledger: record accepted bid: %w", err)
		}
		if err := tx.SetLeadingBid(ctx, lot.LotID, lot.Version, bid.BidID); err != nil {
			return fmt.Errorf("ledger: advance lot %s: %w", lot.LotID, err)
		}
		return nil
	})
	if err != nil {
		return models.Bid{}, err
	}

	if bid.Status == models.BidRejected {
		return bid, fmt.Errorf("ledger: bid %s on lot %s: %w", amount, lotID, bid.Reason.Err())
	}
	return bid, nil
}

// validate returns the current leader (if any) and the rejection reason, or
// ReasonNone when amount may become the new leading bid.
func (l *BidLedger) validate(ctx context.Context, tx repository.AuctionDB, lot models.Lot, auction models.Auction, amount money.Money, now time.Time) (*models.Bid, models.Reason, error) {
	if lot.State != models.LotOpen || !auction.Active(now) {
		return nil, models.ReasonLotNotOpen, nil
	}

	if amount.Currency() != lot.Currency() {
		return nil, models.ReasonCurrencyMismatch, nil
	}

	floor := lot.ReservePrice
	var leading *models.Bid
	current, err := tx.LoadLeadingBid(ctx, lot.LotID)
	switch {
	case err == nil:
		leading = &current
		if floor, err = money.Max(floor, current.Amount); err != nil {
			return nil, models.ReasonNone, fmt.Errorf("ledger: leading bid %s: %w", current.BidID, err)
		}
	case !errors.Is(err, biddingerrors.ErrNoBids):
		return nil, models.ReasonNone, fmt.Errorf("ledger: load leading bid: %w", err)
	}

	higher, err := amount.GreaterThan(floor)
	if err != nil {
		return nil, models.ReasonNone, fmt.Errorf("ledger: compare with floor: %w", err)
	}
	if !higher {
		return leading, models.ReasonBidTooLow, nil
	}
	return leading, models.ReasonNone, nil
}

// closeIfElapsed moves an Open lot whose auction window has ended to Closed
func (l *BidLedger) closeIfElapsed(ctx context.Context, tx repository.AuctionDB, lot models.Lot, auction models.Auction, now time.Time) (models.Lot, error) {
	if lot.State != models.LotOpen || !auction.Ended(now) {
		return lot, nil
	}
	if err := tx.UpdateLotState(ctx, lot.LotID, lot.Version, models.LotClosed); err != nil {
		return lot, fmt.Errorf("ledger: close elapsed lot %s: %w", lot.LotID, err)
	}
	utils.Info("lot closed on access, auction window elapsed", map[string]any{
		"lot_id":     lot.LotID,
		"auction_id": lot.AuctionID,
		"ends_at":    auction.EndsAt,
	})
	lot.State = models.LotClosed
	lot.Version++
	return lot, nil
}

// CloseLot transitions an Open lot to Closed and freezes its leading bid as the
// winner. Closing a Closed or Settled lot changes nothing and returns the same outcome.
func (l *BidLedger) CloseLot(ctx context.Context, lotID string) (models.LotOutcome, error) {
	if lotID == "" {
		return models.LotOutcome{}, fmt.Errorf("ledger: %w - empty lot ID", biddingerrors.ErrInvalidLot)
	}

	var (
		outcome models.LotOutcome
		err     error
	)
	for attempt := 0; ; attempt++ {
		outcome, err = l.closeOnce(ctx, lotID)
		if !errors.Is(err, biddingerrors.ErrConflict) || attempt >= l.maxRetries {
			break
		}
	}
	if err != nil {
		return models.LotOutcome{}, err
	}
	return outcome, nil
}

func (l *BidLedger) closeOnce(ctx context.Context, lotID string) (models.LotOutcome, error) {
	var outcome models.LotOutcome
	err := l.repo.InTx(ctx, func(tx repository.AuctionDB) error {
		lot, err := tx.LoadLot(ctx, lotID)
		if err != nil {
			return fmt.Errorf("ledger: load lot %s: %w", lotID, err)
		}

		switch lot.State {
		case models.LotClosed, models.LotSettled:
		default:
			if err := lot.State.Transition(models.LotClosed); err != nil {
				return fmt.Errorf("ledger: close lot %s: %w", lotID, err)
			}
			if err := tx.UpdateLotState(ctx, lotID, lot.Version, models.LotClosed); err != nil {
				return fmt.Errorf("ledger: close lot %s: %w", lotID, err)
			}
			if lot, err = tx.LoadLot(ctx, lotID); err != nil {
				return fmt.Errorf("ledger: reload lot %s: %w", lotID, err)
			}
			utils.Info("lot closed", map[string]any{"lot_id": lotID})
		}

		outcome.Lot = lot
		winner, err := tx.LoadLeadingBid(ctx, lotID)
		switch {
		case err == nil:
			outcome.WinningBid = &winner
		case !errors.Is(err, biddingerrors.ErrNoBids):
			return fmt.Errorf("ledger: load winning bid: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.LotOutcome{}, err
	}
	return outcome, nil
}

// LeadingBid returns the current leading bid, or ErrNoBids
func (l *BidLedger) LeadingBid(ctx context.Context, lotID string) (models.Bid, error) {
	if lotID == "" {
		return models.Bid{}, fmt.Errorf("ledger: %w - empty lot ID", biddingerrors.ErrInvalidLot)
	}
	if _, err := l.repo.LoadLot(ctx, lotID); err != nil {
		return models.Bid{}, fmt.Errorf("ledger: load lot %s: %w", lotID, err)
	}
	bid, err := l.repo.LoadLeadingBid(ctx, lotID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("ledger: leading bid for lot %s: %w", lotID, err)
	}
	return bid, nil
}

// BidsForLot returns every bid recorded on a lot, rejected ones included
func (l *BidLedger) BidsForLot(ctx context.Context, lotID string) ([]models.Bid, error) {
	if lotID == "" {
		return nil, fmt.Errorf("ledger: %w - empty lot ID", biddingerrors.ErrInvalidLot)
	}
	if _, err := l.repo.LoadLot(ctx, lotID); err != nil {
		return nil, fmt.Errorf("ledger: load lot %s: %w", lotID, err)
	}
	bids, err := l.repo.ListBids(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list bids for lot %s: %w", lotID, err)
	}
	return bids, nil
}
