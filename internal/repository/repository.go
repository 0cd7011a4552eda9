package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"philabid/internal/biddingerrors"
	"philabid/internal/models"
	"philabid/internal/money"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the durable store for auctions, lots and bids. It is the
// single writer boundary: every mutation of persisted state goes through it.
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction models.Auction) error
	CreateLot(ctx context.Context, lot models.Lot) error
	LoadAuction(ctx context.Context, auctionID string) (models.Auction, error)
	LoadLot(ctx context.Context, lotID string) (models.Lot, error)
	LoadLeadingBid(ctx context.Context, lotID string) (models.Bid, error)
	ListBids(ctx context.Context, lotID string) ([]models.Bid, error)
	ListLotsByState(ctx context.Context, state models.LotState) ([]models.Lot, error)
	RecordBid(ctx context.Context, bid models.Bid) error
	SupersedeBid(ctx context.Context, bidID string) error
	SetLeadingBid(ctx context.Context, lotID string, version int64, bidID string) error
	UpdateLotState(ctx context.Context, lotID string, version int64, state models.LotState) error
	SettleLot(ctx context.Context, lotID string, version int64, final money.Money) error
	ArchiveLot(ctx context.Context, lotID string, version int64, at time.Time) error
	// InTx runs fn inside one IMMEDIATE transaction. The AuctionDB passed to fn
	// is bound to that transaction; fn returning an error rolls everything back.
	InTx(ctx context.Context, fn func(tx AuctionDB) error) error
}

// SchemaGate reports whether migrations have completed
type SchemaGate interface {
	Ready() bool
}

// SQLRepo is the SQLite-backed implementation of AuctionDB
type SQLRepo struct {
	db      *gorm.DB
	gate    SchemaGate
	timeout time.Duration
	inTx    bool
	// txCtx carries the transaction's deadline to statements run inside it
	txCtx   context.Context
	tracer  trace.Tracer
	now     func() time.Time
}

// NewSQLRepo creates a repository. Every call fails with ErrSchemaNotReady until gate is ready.
// timeout bounds each standalone call or transaction; zero disables it.
func NewSQLRepo(db *gorm.DB, gate SchemaGate, timeout time.Duration) *SQLRepo {
	return &SQLRepo{
		db:      db,
		gate:    gate,
		timeout: timeout,
		tracer:  otel.Tracer("philabid/repository"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// begin checks the schema gate, applies the storage timeout and opens a span
func (r *SQLRepo) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error), error) {
	if r.gate == nil || !r.gate.Ready() {
		return ctx, func(error) {}, fmt.Errorf("%s: %w", op, biddingerrors.ErrSchemaNotReady)
	}

	cancel := context.CancelFunc(func() {})
	switch {
	case r.inTx && r.txCtx != nil:
		if deadline, ok := r.txCtx.Deadline(); ok {
			ctx, cancel = context.WithDeadline(ctx, deadline)
		}
	case r.timeout > 0 && !r.inTx:
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	ctx, span := r.tracer.Start(ctx, "repository."+op, trace.WithAttributes(attrs...))
	span.SetAttributes(attribute.Bool("in_tx", r.inTx))

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		cancel()
	}, nil
}

func (r *SQLRepo) CreateAuction(ctx context.Context, auction models.Auction) (err error) {
	ctx, end, err := r.begin(ctx, "create_auction", attribute.String("auction.id", auction.AuctionID))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	row := auctionToRow(auction)
	return classify("create auction", r.db.WithContext(ctx).Create(&row).Error)
}

func (r *SQLRepo) CreateLot(ctx context.Context, lot models.Lot) (err error) {
	ctx, end, err := r.begin(ctx, "create_lot", attribute.String("lot.id", lot.LotID))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	if !lot.ReservePrice.IsValid() {
		return fmt.Errorf("create lot %s: reserve price unset: %w", lot.LotID, biddingerrors.ErrConstraintViolation)
	}
	row := lotToRow(lot)
	return classify("create lot", r.db.WithContext(ctx).Create(&row).Error)
}

func (r *SQLRepo) LoadAuction(ctx context.Context, auctionID string) (_ models.Auction, err error) {
	ctx, end, err := r.begin(ctx, "load_auction", attribute.String("auction.id", auctionID))
	if err != nil {
		return models.Auction{}, err
	}
	defer func() { end(err) }()

	var row auctionRow
	if err := r.db.WithContext(ctx).Where("id = ?", auctionID).Take(&row).Error; err != nil {
		return models.Auction{}, classify("load auction "+auctionID, err)
	}
	return row.toModel(), nil
}

func (r *SQLRepo) LoadLot(ctx context.Context, lotID string) (_ models.Lot, err error) {
	ctx, end, err := r.begin(ctx, "load_lot", attribute.String("lot.id", lotID))
	if err != nil {
		return models.Lot{}, err
	}
	defer func() { end(err) }()

	var row lotRow
	if err := r.db.WithContext(ctx).Where("id = ?", lotID).Take(&row).Error; err != nil {
		return models.Lot{}, classify("load lot "+lotID, err)
	}
	return row.toModel()
}

func (r *SQLRepo) LoadLeadingBid(ctx context.Context, lotID string) (_ models.Bid, err error) {
	ctx, end, err := r.begin(ctx, "load_leading_bid", attribute.String("lot.id", lotID))
	if err != nil {
		return models.Bid{}, err
	}
	defer func() { end(err) }()

	var row bidRow
	err = r.db.WithContext(ctx).
		Where("lot_id = ? AND status = ?", lotID, string(models.BidAccepted)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Bid{}, fmt.Errorf("load leading bid for lot %s: %w", lotID, biddingerrors.ErrNoBids)
	}
	if err != nil {
		return models.Bid{}, classify("load leading bid "+lotID, err)
	}
	return row.toModel()
}

// ListBids returns the full audit trail of a lot in placement order
func (r *SQLRepo) ListBids(ctx context.Context, lotID string) (_ []models.Bid, err error) {
	ctx, end, err := r.begin(ctx, "list_bids", attribute.String("lot.id", lotID))
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	var rows []bidRow
	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("placed_at ASC").Order("rowid ASC").
		Find(&rows).Error; err != nil {
		return nil, classify("list bids "+lotID, err)
	}

	bids := make([]models.Bid, 0, len(rows))
	for _, row := range rows {
		b, err := row.toModel()
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}

func (r *SQLRepo) ListLotsByState(ctx context.Context, state models.LotState) (_ []models.Lot, err error) {
	ctx, end, err := r.begin(ctx, "list_lots_by_state", attribute.String("lot.state", string(state)))
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	var rows []lotRow
	if err := r.db.WithContext(ctx).
		Where("state = ? AND archived_at IS NULL", string(state)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, classify("list lots", err)
	}

	lots := make([]models.Lot, 0, len(rows))
	for _, row := range rows {
		l, err := row.toModel()
		if err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, nil
}

// RecordBid appends a bid. Accepted bids must match the lot currency and be the
// only accepted bid on the lot; the schema enforces both.
func (r *SQLRepo) RecordBid(ctx context.Context, bid models.Bid) (err error) {
	ctx, end, err := r.begin(ctx, "record_bid",
		attribute.String("lot.id", bid.LotID),
		attribute.String("bid.id", bid.BidID),
		attribute.String("bid.status", string(bid.Status)),
	)
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	if !bid.Amount.IsValid() {
		return fmt.Errorf("record bid %s: amount unset: %w", bid.BidID, biddingerrors.ErrConstraintViolation)
	}
	row := bidToRow(bid)
	return classify("record bid", r.db.WithContext(ctx).Create(&row).Error)
}

func (r *SQLRepo) SupersedeBid(ctx context.Context, bidID string) (err error) {
	ctx, end, err := r.begin(ctx, "supersede_bid", attribute.String("bid.id", bidID))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).
		Model(&bidRow{}).
		Where("id = ? AND status = ?", bidID, string(models.BidAccepted)).
		Update("status", string(models.BidSuperseded))
	if res.Error != nil {
		return classify("supersede bid "+bidID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("supersede bid %s: no longer leading: %w", bidID, biddingerrors.ErrConflict)
	}
	return nil
}

// updateLot applies fields when the lot is still at version, bumping the version
func (r *SQLRepo) updateLot(ctx context.Context, op, lotID string, version int64, fields map[string]any) error {
	fields["version"] = gorm.Expr("version + 1")
	fields["updated_at"] = r.now()

	res := r.db.WithContext(ctx).
		Model(&lotRow{}).
		Where("id = ? AND version = ?", lotID, version).
		Updates(fields)
	if res.Error != nil {
		return classify(op+" "+lotID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&lotRow{}).Where("id = ?", lotID).Count(&count).Error; err != nil {
			return classify(op+" "+lotID, err)
		}
		if count == 0 {
			return fmt.Errorf("%s %s: %w", op, lotID, biddingerrors.ErrNotFound)
		}
		return fmt.Errorf("%s %s: version %d is stale: %w", op, lotID, version, biddingerrors.ErrConflict)
	}
	return nil
}

func (r *SQLRepo) SetLeadingBid(ctx context.Context, lotID string, version int64, bidID string) (err error) {
	ctx, end, err := r.begin(ctx, "set_leading_bid", attribute.String("lot.id", lotID), attribute.String("bid.id", bidID))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	return r.updateLot(ctx, "set leading bid", lotID, version, map[string]any{"leading_bid_id": bidID})
}

func (r *SQLRepo) UpdateLotState(ctx context.Context, lotID string, version int64, state models.LotState) (err error) {
	ctx, end, err := r.begin(ctx, "update_lot_state", attribute.String("lot.id", lotID), attribute.String("lot.state", string(state)))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	if !state.Valid() {
		return fmt.Errorf("update lot %s: state %q: %w", lotID, state, biddingerrors.ErrConstraintViolation)
	}
	return r.updateLot(ctx, "update lot state", lotID, version, map[string]any{"state": string(state)})
}

func (r *SQLRepo) SettleLot(ctx context.Context, lotID string, version int64, final money.Money) (err error) {
	ctx, end, err := r.begin(ctx, "settle_lot", attribute.String("lot.id", lotID))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	return r.updateLot(ctx, "settle lot", lotID, version, map[string]any{
		"state":        string(models.LotSettled),
		"final_amount": final.Amount(),
	})
}

func (r *SQLRepo) ArchiveLot(ctx context.Context, lotID string, version int64, at time.Time) (err error) {
	ctx, end, err := r.begin(ctx, "archive_lot", attribute.String("lot.id", lotID))
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	return r.updateLot(ctx, "archive lot", lotID, version, map[string]any{"archived_at": at.UTC()})
}

func (r *SQLRepo) InTx(ctx context.Context, fn func(tx AuctionDB) error) (err error) {
	if r.inTx {
		return fn(r)
	}
	ctx, end, err := r.begin(ctx, "tx")
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bound := *r
		bound.db = tx
		bound.inTx = true
		bound.txCtx = ctx
		return fn(&bound)
	})
	if err != nil && ctx.Err() != nil && !errors.Is(err, biddingerrors.ErrStorageUnavailable) {
		// the deadline rolled the transaction back under fn
		return fmt.Errorf("transaction: %w: %v", biddingerrors.ErrStorageUnavailable, err)
	}
	return classify("transaction", err)
}
