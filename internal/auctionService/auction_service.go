package auction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bidding "philabid/internal/biddingService"
	"philabid/internal/biddingerrors"
	"philabid/internal/models"
	"philabid/internal/money"
	"philabid/internal/repository"
	"philabid/utils"
)

// AuctionService orchestrates auction and lot lifecycle. It is the only
// entry point the presentation layer uses.
type AuctionService struct {
	repo   repository.AuctionDB
	ledger *bidding.BidLedger
	now    func() time.Time
}

// Option configures an AuctionService
type Option func(*AuctionService)

// WithClock replaces the wall clock used for window checks.
func WithClock(now func() time.Time) Option {
	return func(s *AuctionService) { s.now = now }
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB, ledger *bidding.BidLedger, opts ...Option) *AuctionService {
	s := &AuctionService{
		repo:   repo,
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenAuction schedules a new auction over [startsAt, endsAt)
func (s *AuctionService) OpenAuction(ctx context.Context, name string, startsAt, endsAt time.Time) (models.Auction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction name", biddingerrors.ErrInvalidAuction)
	}
	if !endsAt.After(startsAt) {
		return models.Auction{}, fmt.Errorf("service: %w - window ends at or before it starts", biddingerrors.ErrInvalidAuction)
	}

	auction := models.Auction{
		AuctionID: utils.GenerateID(),
		Name:      name,
		StartsAt:  startsAt.UTC(),
		EndsAt:    endsAt.UTC(),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("auction scheduled", map[string]any{
		"auction_id": auction.AuctionID,
		"starts_at":  auction.StartsAt,
		"ends_at":    auction.EndsAt,
	})
	return auction, nil
}

// GetAuction returns an auction by ID
func (s *AuctionService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrInvalidAuction)
	}
	auction, err := s.repo.LoadAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// CreateLot adds a Draft lot to an auction that has not yet ended. The
// reserve price fixes the lot's currency for good.
func (s *AuctionService) CreateLot(ctx context.Context, auctionID, description string, reserve money.Money) (models.Lot, error) {
	description = strings.TrimSpace(description)
	if auctionID == "" || description == "" {
		return models.Lot{}, fmt.Errorf("service: %w - missing auctionID or description", biddingerrors.ErrInvalidLot)
	}
	if !reserve.IsValid() {
		return models.Lot{}, fmt.Errorf("service: %w - reserve price unset", biddingerrors.ErrInvalidAmount)
	}

	auction, err := s.repo.LoadAuction(ctx, auctionID)
	if err != nil {
		return models.Lot{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	now := s.now()
	if auction.Ended(now) {
		return models.Lot{}, fmt.Errorf("service: %w - auction %s ended at %s", biddingerrors.ErrOutsideWindow, auctionID, auction.EndsAt.Format(time.RFC3339))
	}

	lot := models.Lot{
		LotID:        utils.GenerateID(),
		AuctionID:    auctionID,
		Description:  description,
		ReservePrice: reserve,
		State:        models.LotDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateLot(ctx, lot); err != nil {
		return models.Lot{}, fmt.Errorf("service: failed to create lot: %w", err)
	}
	return lot, nil
}

// GetLot returns a lot by ID
func (s *AuctionService) GetLot(ctx context.Context, lotID string) (models.Lot, error) {
	if lotID == "" {
		return models.Lot{}, fmt.Errorf("service: %w - empty lot ID", biddingerrors.ErrInvalidLot)
	}
	lot, err := s.repo.LoadLot(ctx, lotID)
	if err != nil {
		return models.Lot{}, fmt.Errorf("service: failed to get lot %s: %w", lotID, err)
	}
	return lot, nil
}

// OpenLot moves a Draft lot to Open. The auction window must be active.
func (s *AuctionService) OpenLot(ctx context.Context, lotID string) (models.Lot, error) {
	return s.transition(ctx, lotID, func(tx repository.AuctionDB, lot models.Lot, auction models.Auction) (models.Lot, error) {
		if !auction.Active(s.now()) {
			return lot, fmt.Errorf("service: %w - auction %s runs %s to %s", biddingerrors.ErrOutsideWindow,
				auction.AuctionID, auction.StartsAt.Format(time.RFC3339), auction.EndsAt.Format(time.RFC3339))
		}
		return s.moveTo(ctx, tx, lot, models.LotOpen)
	})
}

// CancelLot withdraws a Draft or Open lot. Recorded bids stay in the audit trail.
func (s *AuctionService) CancelLot(ctx context.Context, lotID string) (models.Lot, error) {
	return s.transition(ctx, lotID, func(tx repository.AuctionDB, lot models.Lot, _ models.Auction) (models.Lot, error) {
		return s.moveTo(ctx, tx, lot, models.LotCancelled)
	})
}

// SettleLot marks a Closed lot Settled, recording the winning amount as the
// final price owed. A lot whose window elapsed while Open is closed first.
func (s *AuctionService) SettleLot(ctx context.Context, lotID string) (models.Lot, error) {
	return s.transition(ctx, lotID, func(tx repository.AuctionDB, lot models.Lot, auction models.Auction) (models.Lot, error) {
		var err error
		if lot.State == models.LotOpen && auction.Ended(s.now()) {
			if lot, err = s.moveTo(ctx, tx, lot, models.LotClosed); err != nil {
				return lot, err
			}
		}
		if err := lot.State.Transition(models.LotSettled); err != nil {
			return lot, fmt.Errorf("service: settle lot %s: %w", lot.LotID, err)
		}

		winner, err := tx.LoadLeadingBid(ctx, lot.LotID)
		if errors.Is(err, biddingerrors.ErrNoBids) {
			return lot, fmt.Errorf("service: settle lot %s: %w", lot.LotID, biddingerrors.ErrNoWinningBid)
		}
		if err != nil {
			return lot, fmt.Errorf("service: settle lot %s: %w", lot.LotID, err)
		}

		if err := tx.SettleLot(ctx, lot.LotID, lot.Version, winner.Amount); err != nil {
			return lot, fmt.Errorf("service: settle lot %s: %w", lot.LotID, err)
		}
		utils.Info("lot settled", map[string]any{
			"lot_id":      lot.LotID,
			"bid_id":      winner.BidID,
			"bidder_id":   winner.BidderID,
			"final_price": winner.Amount.String(),
		})
		return tx.LoadLot(ctx, lot.LotID)
	})
}

// ArchiveLot stamps a Settled or Cancelled lot as archived. Lots are never
// deleted; archiving an archived lot returns it unchanged.
func (s *AuctionService) ArchiveLot(ctx context.Context, lotID string) (models.Lot, error) {
	return s.transition(ctx, lotID, func(tx repository.AuctionDB, lot models.Lot, _ models.Auction) (models.Lot, error) {
		if lot.ArchivedAt != nil {
			return lot, nil
		}
		if !lot.State.Terminal() {
			return lot, fmt.Errorf("service: archive lot %s in state %s: %w", lot.LotID, lot.State, biddingerrors.ErrInvalidTransition)
		}
		if err := tx.ArchiveLot(ctx, lot.LotID, lot.Version, s.now()); err != nil {
			return lot, fmt.Errorf("service: archive lot %s: %w", lot.LotID, err)
		}
		return tx.LoadLot(ctx, lot.LotID)
	})
}

// PlaceBid delegates to the bid ledger
func (s *AuctionService) PlaceBid(ctx context.Context, lotID, bidderID string, amount money.Money) (models.Bid, error) {
	return s.ledger.PlaceBid(ctx, lotID, bidderID, amount)
}

// CloseLot delegates to the bid ledger
func (s *AuctionService) CloseLot(ctx context.Context, lotID string) (models.LotOutcome, error) {
	return s.ledger.CloseLot(ctx, lotID)
}

// GetLeadingBid returns the current highest accepted bid for a lot
func (s *AuctionService) GetLeadingBid(ctx context.Context, lotID string) (models.Bid, error) {
	return s.ledger.LeadingBid(ctx, lotID)
}

// ListBids returns a lot's bid history in placement order
func (s *AuctionService) ListBids(ctx context.Context, lotID string) ([]models.Bid, error) {
	return s.ledger.BidsForLot(ctx, lotID)
}

// CloseExpiredLots closes every Open lot whose auction window has elapsed.
// Failures on one lot do not stop the sweep; they are joined into the result.
func (s *AuctionService) CloseExpiredLots(ctx context.Context) ([]models.LotOutcome, error) {
	open, err := s.repo.ListLotsByState(ctx, models.LotOpen)
	if err != nil {
		return nil, fmt.Errorf("service: list open lots: %w", err)
	}

	now := s.now()
	auctions := make(map[string]models.Auction)
	var (
		closed []models.LotOutcome
		errs   []error
	)
	for _, lot := range open {
		auction, ok := auctions[lot.AuctionID]
		if !ok {
			if auction, err = s.repo.LoadAuction(ctx, lot.AuctionID); err != nil {
				errs = append(errs, fmt.Errorf("lot %s: %w", lot.LotID, err))
				continue
			}
			auctions[lot.AuctionID] = auction
		}
		if !auction.Ended(now) {
			continue
		}

		outcome, err := s.ledger.CloseLot(ctx, lot.LotID)
		if err != nil {
			errs = append(errs, fmt.Errorf("lot %s: %w", lot.LotID, err))
			continue
		}
		closed = append(closed, outcome)
	}

	if len(closed) > 0 {
		utils.Info("expired lots closed", map[string]any{"count": len(closed)})
	}
	return closed, errors.Join(errs...)
}

// RunSweeper calls CloseExpiredLots every interval until ctx is done.
func (s *AuctionService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("sweeper interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.CloseExpiredLots(ctx); err != nil {
				utils.Error("expired lot sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

type lotStep func(tx repository.AuctionDB, lot models.Lot, auction models.Auction) (models.Lot, error)

// transition loads a lot and its auction in one transaction and applies step
func (s *AuctionService) transition(ctx context.Context, lotID string, step lotStep) (models.Lot, error) {
	if lotID == "" {
		return models.Lot{}, fmt.Errorf("service: %w - empty lot ID", biddingerrors.ErrInvalidLot)
	}

	var result models.Lot
	err := s.repo.InTx(ctx, func(tx repository.AuctionDB) error {
		lot, err := tx.LoadLot(ctx, lotID)
		if err != nil {
			return fmt.Errorf("service: load lot %s: %w", lotID, err)
		}
		auction, err := tx.LoadAuction(ctx, lot.AuctionID)
		if err != nil {
			return fmt.Errorf("service: load auction %s: %w", lot.AuctionID, err)
		}
		result, err = step(tx, lot, auction)
		return err
	})
	if err != nil {
		return models.Lot{}, err
	}
	return result, nil
}

// moveTo validates and persists one lifecycle edge
func (s *AuctionService) moveTo(ctx context.Context, tx repository.AuctionDB, lot models.Lot, to models.LotState) (models.Lot, error) {
	if err := lot.State.Transition(to); err != nil {
		return lot, fmt.Errorf("service: lot %s: %w", lot.LotID, err)
	}
	if err := tx.UpdateLotState(ctx, lot.LotID, lot.Version, to); err != nil {
		return lot, fmt.Errorf("service: lot %s -> %s: %w", lot.LotID, to, err)
	}
	utils.Info("lot state changed", map[string]any{
		"lot_id": lot.LotID,
		"from":   string(lot.State),
		"to":     string(to),
	})
	lot.State = to
	lot.Version++
	lot.UpdatedAt = s.now()
	return lot, nil
}
