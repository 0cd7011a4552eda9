package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"philabid/internal/biddingerrors"
	"philabid/internal/migrate"
	"philabid/internal/models"
	"philabid/internal/money"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	windowStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
)

// Helper to open a migrated store in a temp dir
func newTestRepo(t *testing.T) (*SQLRepo, *gorm.DB) {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "philabid.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	migrations, err := migrate.Embedded()
	require.NoError(t, err)
	migrator := migrate.New(db, migrations)
	_, err = migrator.Run(context.Background())
	require.NoError(t, err)

	return NewSQLRepo(db, migrator, 5*time.Second), db
}

// Helper to seed an auction with one lot
func seedLot(t *testing.T, repo *SQLRepo, lotID string, reserve money.Money, state models.LotState) models.Lot {
	t.Helper()
	ctx := context.Background()

	auctionID := "auction-" + lotID
	require.NoError(t, repo.CreateAuction(ctx, models.Auction{
		AuctionID: auctionID,
		Name:      "Spring sale",
		StartsAt:  windowStart,
		EndsAt:    windowEnd,
		CreatedAt: windowStart,
	}))

	lot := models.Lot{
		LotID:        lotID,
		AuctionID:    auctionID,
		Description:  "Penny Black, plate 1a",
		ReservePrice: reserve,
		State:        state,
		CreatedAt:    windowStart,
		UpdatedAt:    windowStart,
	}
	require.NoError(t, repo.CreateLot(ctx, lot))
	return lot
}

// Helper to create a new Bid
func newBid(bidID, lotID, bidderID string, amount money.Money, status models.BidStatus, placedAt time.Time) models.Bid {
	return models.Bid{
		BidID:    bidID,
		LotID:    lotID,
		BidderID: bidderID,
		Amount:   amount,
		Status:   status,
		PlacedAt: placedAt,
	}
}

func TestSQLRepo_SchemaNotReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gate := NewMockSchemaGate(ctrl)
	gate.EXPECT().Ready().Return(false).AnyTimes()

	db, err := Open(filepath.Join(t.TempDir(), "philabid.db"), Options{})
	require.NoError(t, err)
	defer Close(db)

	repo := NewSQLRepo(db, gate, time.Second)
	ctx := context.Background()

	_, err = repo.LoadLot(ctx, "lot1")
	require.ErrorIs(t, err, biddingerrors.ErrSchemaNotReady)

	err = repo.InTx(ctx, func(tx AuctionDB) error {
		t.Fatal("transaction body must not run before migrations")
		return nil
	})
	require.ErrorIs(t, err, biddingerrors.ErrSchemaNotReady)
}

func TestSQLRepo_LotRoundTrip(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()

	lot := seedLot(t, repo, "lot1", money.MustNew("50.00", "USD"), models.LotDraft)

	got, err := repo.LoadLot(ctx, "lot1")
	require.NoError(t, err)
	require.Equal(t, lot.LotID, got.LotID)
	require.Equal(t, "USD", got.Currency())
	require.True(t, got.ReservePrice.Equal(lot.ReservePrice))
	require.Equal(t, models.LotDraft, got.State)
	require.Equal(t, int64(0), got.Version)
	require.Nil(t, got.FinalPrice)

	auction, err := repo.LoadAuction(ctx, lot.AuctionID)
	require.NoError(t, err)
	require.True(t, auction.StartsAt.Equal(windowStart))
	require.True(t, auction.EndsAt.Equal(windowEnd))

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name:    "unknown_lot",
			call:    func() error { _, err := repo.LoadLot(ctx, "missing"); return err },
			wantErr: biddingerrors.ErrNotFound,
		},
		{
			name:    "unknown_auction",
			call:    func() error { _, err := repo.LoadAuction(ctx, "missing"); return err },
			wantErr: biddingerrors.ErrNotFound,
		},
		{
			name:    "no_leading_bid",
			call:    func() error { _, err := repo.LoadLeadingBid(ctx, "lot1"); return err },
			wantErr: biddingerrors.ErrNoBids,
		},
		{
			name: "lot_for_unknown_auction",
			call: func() error {
				return repo.CreateLot(ctx, models.Lot{
					LotID:        "orphan",
					AuctionID:    "missing",
					ReservePrice: money.MustNew("1", "USD"),
					State:        models.LotDraft,
				})
			},
			wantErr: biddingerrors.ErrConstraintViolation,
		},
		{
			name: "duplicate_lot_id",
			call: func() error {
				return repo.CreateLot(ctx, lot)
			},
			wantErr: biddingerrors.ErrConstraintViolation,
		},
		{
			name: "inverted_auction_window",
			call: func() error {
				return repo.CreateAuction(ctx, models.Auction{
					AuctionID: "backwards",
					Name:      "Backwards",
					StartsAt:  windowEnd,
					EndsAt:    windowStart,
				})
			},
			wantErr: biddingerrors.ErrConstraintViolation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.wantErr), "expected error: %v, got: %v", tc.wantErr, err)
		})
	}
}

func TestSQLRepo_RecordBid(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()
	seedLot(t, repo, "lot1", money.MustNew("50.00", "USD"), models.LotOpen)

	at := windowStart.Add(time.Hour)

	tests := []struct {
		name    string
		bid     models.Bid
		wantErr error
	}{
		{
			name: "accepted_bid",
			bid:  newBid("bid1", "lot1", "alice", money.MustNew("60", "USD"), models.BidAccepted, at),
		},
		{
			name:    "second_accepted_bid_on_same_lot",
			bid:     newBid("bid2", "lot1", "bob", money.MustNew("70", "USD"), models.BidAccepted, at),
			wantErr: biddingerrors.ErrConflict,
		},
		{
			name: "rejected_bid_is_recorded",
			bid: func() models.Bid {
				b := newBid("bid3", "lot1", "carol", money.MustNew("55", "USD"), models.BidRejected, at)
				b.Reason = models.ReasonBidTooLow
				return b
			}(),
		},
		{
			name: "rejected_foreign_currency_bid_is_recorded",
			bid: func() models.Bid {
				b := newBid("bid4", "lot1", "dave", money.MustNew("80", "EUR"), models.BidRejected, at)
				b.Reason = models.ReasonCurrencyMismatch
				return b
			}(),
		},
		{
			name:    "accepted_foreign_currency_bid",
			bid:     newBid("bid5", "lot1", "erin", money.MustNew("90", "EUR"), models.BidAccepted, at),
			wantErr: biddingerrors.ErrConstraintViolation,
		},
		{
			name:    "unknown_lot",
			bid:     newBid("bid6", "missing", "frank", money.MustNew("90", "USD"), models.BidRejected, at),
			wantErr: biddingerrors.ErrConstraintViolation,
		},
		{
			name:    "amount_unset",
			bid:     newBid("bid7", "lot1", "gina", money.Money{}, models.BidRejected, at),
			wantErr: biddingerrors.ErrConstraintViolation,
		},
	}

	// subtests run in order: later cases depend on the leader recorded by the first
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.RecordBid(ctx, tc.bid)
			if tc.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantErr), "expected error: %v, got: %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
		})
	}

	leading, err := repo.LoadLeadingBid(ctx, "lot1")
	require.NoError(t, err)
	require.Equal(t, "bid1", leading.BidID)
	require.Equal(t, "60.00 USD", leading.Amount.String())

	bids, err := repo.ListBids(ctx, "lot1")
	require.NoError(t, err)
	require.Len(t, bids, 3)
	require.Equal(t, models.ReasonBidTooLow, bids[1].Reason)
	require.Equal(t, "EUR", bids[2].Amount.Currency())
}

func TestSQLRepo_BidsAreAppendOnly(t *testing.T) {
	t.Parallel()

	repo, db := newTestRepo(t)
	ctx := context.Background()
	seedLot(t, repo, "lot1", money.MustNew("50.00", "USD"), models.LotOpen)

	at := windowStart.Add(time.Hour)
	require.NoError(t, repo.RecordBid(ctx, newBid("bid1", "lot1", "alice", money.MustNew("60", "USD"), models.BidAccepted, at)))

	t.Run("delete_forbidden", func(t *testing.T) {
		err := classify("delete bid", db.Exec("DELETE FROM bids WHERE id = ?", "bid1").Error)
		require.ErrorIs(t, err, biddingerrors.ErrConstraintViolation)
	})

	t.Run("amount_update_forbidden", func(t *testing.T) {
		err := classify("edit bid", db.Exec("UPDATE bids SET amount = '1.00' WHERE id = ?", "bid1").Error)
		require.ErrorIs(t, err, biddingerrors.ErrConstraintViolation)
	})

	t.Run("lot_with_bids_cannot_be_deleted", func(t *testing.T) {
		err := classify("delete lot", db.Exec("DELETE FROM lots WHERE id = ?", "lot1").Error)
		require.ErrorIs(t, err, biddingerrors.ErrConstraintViolation)
	})

	t.Run("lot_currency_fixed", func(t *testing.T) {
		err := classify("edit lot", db.Exec("UPDATE lots SET currency = 'EUR' WHERE id = ?", "lot1").Error)
		require.ErrorIs(t, err, biddingerrors.ErrConstraintViolation)
	})

	t.Run("supersede_once", func(t *testing.T) {
		require.NoError(t, repo.SupersedeBid(ctx, "bid1"))
		err := repo.SupersedeBid(ctx, "bid1")
		require.ErrorIs(t, err, biddingerrors.ErrConflict)

		_, err = repo.LoadLeadingBid(ctx, "lot1")
		require.ErrorIs(t, err, biddingerrors.ErrNoBids)
	})
}

func TestSQLRepo_OptimisticLotUpdates(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()
	seedLot(t, repo, "lot1", money.MustNew("50.00", "USD"), models.LotDraft)

	require.NoError(t, repo.UpdateLotState(ctx, "lot1", 0, models.LotOpen))

	err := repo.UpdateLotState(ctx, "lot1", 0, models.LotClosed)
	require.ErrorIs(t, err, biddingerrors.ErrConflict)

	err = repo.UpdateLotState(ctx, "missing", 0, models.LotClosed)
	require.ErrorIs(t, err, biddingerrors.ErrNotFound)

	err = repo.UpdateLotState(ctx, "lot1", 1, models.LotState("sold"))
	require.ErrorIs(t, err, biddingerrors.ErrConstraintViolation)

	require.NoError(t, repo.SetLeadingBid(ctx, "lot1", 1, "bid1"))
	require.NoError(t, repo.UpdateLotState(ctx, "lot1", 2, models.LotClosed))
	require.NoError(t, repo.SettleLot(ctx, "lot1", 3, money.MustNew("75", "USD")))

	settledAt := windowEnd.Add(time.Hour)
	require.NoError(t, repo.ArchiveLot(ctx, "lot1", 4, settledAt))

	lot, err := repo.LoadLot(ctx, "lot1")
	require.NoError(t, err)
	require.Equal(t, models.LotSettled, lot.State)
	require.Equal(t, int64(5), lot.Version)
	require.Equal(t, "bid1", lot.LeadingBidID)
	require.NotNil(t, lot.FinalPrice)
	require.Equal(t, "75.00 USD", lot.FinalPrice.String())
	require.NotNil(t, lot.ArchivedAt)
	require.True(t, lot.ArchivedAt.Equal(settledAt))

	// archived lots drop out of state listings
	settled, err := repo.ListLotsByState(ctx, models.LotSettled)
	require.NoError(t, err)
	require.Empty(t, settled)
}

func TestSQLRepo_InTxRollsBack(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()
	seedLot(t, repo, "lot1", money.MustNew("50.00", "USD"), models.LotOpen)

	at := windowStart.Add(time.Hour)
	boom := errors.New("boom")

	err := repo.InTx(ctx, func(tx AuctionDB) error {
		require.NoError(t, tx.RecordBid(ctx, newBid("bid1", "lot1", "alice", money.MustNew("60", "USD"), models.BidAccepted, at)))
		require.NoError(t, tx.SetLeadingBid(ctx, "lot1", 0, "bid1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	bids, err := repo.ListBids(ctx, "lot1")
	require.NoError(t, err)
	require.Empty(t, bids)

	lot, err := repo.LoadLot(ctx, "lot1")
	require.NoError(t, err)
	require.Empty(t, lot.LeadingBidID)
	require.Equal(t, int64(0), lot.Version)
}

// concurrent writers on one lot: the unique leader index admits exactly one
func TestSQLRepo_ConcurrentLeaders(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx := context.Background()
	seedLot(t, repo, "lot1", money.MustNew("50.00", "USD"), models.LotOpen)

	at := windowStart.Add(time.Hour)
	writers := 20

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		lost     int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.InTx(ctx, func(tx AuctionDB) error {
				lot, err := tx.LoadLot(ctx, "lot1")
				if err != nil {
					return err
				}
				id := fmt.Sprintf("bid-%d", i)
				if err := tx.RecordBid(ctx, newBid(id, "lot1", fmt.Sprintf("bidder-%d", i), money.MustNew("100", "USD"), models.BidAccepted, at)); err != nil {
					return err
				}
				return tx.SetLeadingBid(ctx, "lot1", lot.Version, id)
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, biddingerrors.ErrConflict):
				lost++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, accepted)
	require.Equal(t, writers-1, lost)

	bids, err := repo.ListBids(ctx, "lot1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
}

func TestSQLRepo_StorageTimeout(t *testing.T) {
	t.Parallel()

	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.LoadLot(ctx, "lot1")
	require.Error(t, err)
	require.True(t, biddingerrors.IsRetryable(err), "cancelled storage call should be retryable, got: %v", err)
}

func TestSQLRepo_StorageTimeoutInsideTx(t *testing.T) {
	t.Parallel()

	base, db := newTestRepo(t)
	seedLot(t, base, "lot1", money.MustNew("50.00", "USD"), models.LotOpen)

	repo := NewSQLRepo(db, base.gate, 50*time.Millisecond)
	ctx := context.Background()

	err := repo.InTx(ctx, func(tx AuctionDB) error {
		time.Sleep(150 * time.Millisecond)
		_, err := tx.LoadLot(ctx, "lot1")
		return err
	})
	require.ErrorIs(t, err, biddingerrors.ErrStorageUnavailable)
	require.True(t, biddingerrors.IsRetryable(err))

	// a slow callback that swallows the statement error still reports the timeout
	err = repo.InTx(ctx, func(tx AuctionDB) error {
		time.Sleep(150 * time.Millisecond)
		_, _ = tx.LoadLot(ctx, "lot1")
		return errors.New("gave up")
	})
	require.ErrorIs(t, err, biddingerrors.ErrStorageUnavailable)

	// business errors from the callback pass through untouched
	err = repo.InTx(ctx, func(tx AuctionDB) error {
		return biddingerrors.ErrBidTooLow
	})
	require.ErrorIs(t, err, biddingerrors.ErrBidTooLow)
	require.NotErrorIs(t, err, biddingerrors.ErrStorageUnavailable)
}

func TestClassify_ConnectionFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "Tx_Done", err: sql.ErrTxDone, want: biddingerrors.ErrStorageUnavailable},
		{name: "Conn_Done", err: sql.ErrConnDone, want: biddingerrors.ErrStorageUnavailable},
		{name: "Bad_Conn", err: fmt.Errorf("exec: %w", driver.ErrBadConn), want: biddingerrors.ErrStorageUnavailable},
		{name: "Deadline", err: context.DeadlineExceeded, want: biddingerrors.ErrStorageUnavailable},
		{name: "Record_Not_Found", err: gorm.ErrRecordNotFound, want: biddingerrors.ErrNotFound},
		{name: "Domain_Error", err: biddingerrors.ErrLotNotOpen, want: biddingerrors.ErrLotNotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			require.ErrorIs(t, err, tt.want)
		})
	}

	require.False(t, biddingerrors.IsRetryable(classify("op", errors.New("unexpected failure"))))
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantPath string
	}{
		{name: "Plain", path: "data/philabid.db", wantPath: "data/philabid.db"},
		{name: "Query_Mark", path: "data/lots?mode=memory.db", wantPath: "data/lots%3Fmode=memory.db"},
		{name: "Fragment", path: "data/lots#1.db", wantPath: "data/lots%231.db"},
		{name: "Percent", path: "data/100%.db", wantPath: "data/100%25.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := DSN(tt.path, 2*time.Second)
			path, rawQuery, found := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
			require.True(t, found)
			require.Equal(t, tt.wantPath, path)

			q, err := url.ParseQuery(rawQuery)
			require.NoError(t, err)
			require.Equal(t, "immediate", q.Get("_txlock"))
			require.Equal(t, "on", q.Get("_foreign_keys"))
			require.Equal(t, "2000", q.Get("_busy_timeout"))
			require.NotContains(t, q, "mode")
		})
	}
}
