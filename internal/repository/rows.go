package repository

import (
	"fmt"
	"time"

	"philabid/internal/models"
	"philabid/internal/money"
)

type auctionRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	StartsAt  time.Time `gorm:"column:starts_at"`
	EndsAt    time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

func (auctionRow) TableName() string { return "auctions" }

type lotRow struct {
	ID            string     `gorm:"column:id;primaryKey"`
	AuctionID     string     `gorm:"column:auction_id"`
	Description   string     `gorm:"column:description"`
	ReserveAmount string     `gorm:"column:reserve_amount"`
	Currency      string     `gorm:"column:currency"`
	State         string     `gorm:"column:state"`
	LeadingBidID  *string    `gorm:"column:leading_bid_id"`
	FinalAmount   *string    `gorm:"column:final_amount"`
	Version       int64      `gorm:"column:version"`
	ArchivedAt    *time.Time `gorm:"column:archived_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (lotRow) TableName() string { return "lots" }

type bidRow struct {
	ID       string    `gorm:"column:id;primaryKey"`
	LotID    string    `gorm:"column:lot_id"`
	BidderID string    `gorm:"column:bidder_id"`
	Amount   string    `gorm:"column:amount"`
	Currency string    `gorm:"column:currency"`
	Status   string    `gorm:"column:status"`
	Reason   string    `gorm:"column:reason"`
	PlacedAt time.Time `gorm:"column:placed_at"`
}

func (bidRow) TableName() string { return "bids" }

func auctionToRow(a models.Auction) auctionRow {
	return auctionRow{
		ID:        a.AuctionID,
		Name:      a.Name,
		StartsAt:  a.StartsAt.UTC(),
		EndsAt:    a.EndsAt.UTC(),
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func (r auctionRow) toModel() models.Auction {
	return models.Auction{
		AuctionID: r.ID,
		Name:      r.Name,
		StartsAt:  r.StartsAt.UTC(),
		EndsAt:    r.EndsAt.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func lotToRow(l models.Lot) lotRow {
	row := lotRow{
		ID:            l.LotID,
		AuctionID:     l.AuctionID,
		Description:   l.Description,
		ReserveAmount: l.ReservePrice.Amount(),
		Currency:      l.ReservePrice.Currency(),
		State:         string(l.State),
		Version:       l.Version,
		ArchivedAt:    l.ArchivedAt,
		CreatedAt:     l.CreatedAt.UTC(),
		UpdatedAt:     l.UpdatedAt.UTC(),
	}
	if l.LeadingBidID != "" {
		id := l.LeadingBidID
		row.LeadingBidID = &id
	}
	if l.FinalPrice != nil {
		amount := l.FinalPrice.Amount()
		row.FinalAmount = &amount
	}
	return row
}

func (r lotRow) toModel() (models.Lot, error) {
	reserve, err := money.New(r.ReserveAmount, r.Currency)
	if err != nil {
		return models.Lot{}, fmt.Errorf("lot %s reserve: %w", r.ID, err)
	}
	lot := models.Lot{
		LotID:        r.ID,
		AuctionID:    r.AuctionID,
		Description:  r.Description,
		ReservePrice: reserve,
		State:        models.LotState(r.State),
		Version:      r.Version,
		ArchivedAt:   r.ArchivedAt,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.LeadingBidID != nil {
		lot.LeadingBidID = *r.LeadingBidID
	}
	if r.FinalAmount != nil {
		final, err := money.New(*r.FinalAmount, r.Currency)
		if err != nil {
			return models.Lot{}, fmt.Errorf("lot %s final amount: %w", r.ID, err)
		}
		lot.FinalPrice = &final
	}
	return lot, nil
}

func bidToRow(b models.Bid) bidRow {
	return bidRow{
		ID:       b.BidID,
		LotID:    b.LotID,
		BidderID: b.BidderID,
		Amount:   b.Amount.Amount(),
		Currency: b.Amount.Currency(),
		Status:   string(b.Status),
		Reason:   string(b.Reason),
		PlacedAt: b.PlacedAt.UTC(),
	}
}

func (r bidRow) toModel() (models.Bid, error) {
	amount, err := money.New(r.Amount, r.Currency)
	if err != nil {
		return models.Bid{}, fmt.Errorf("bid %s amount: %w", r.ID, err)
	}
	return models.Bid{
		BidID:    r.ID,
		LotID:    r.LotID,
		BidderID: r.BidderID,
		Amount:   amount,
		Status:   models.BidStatus(r.Status),
		Reason:   models.Reason(r.Reason),
		PlacedAt: r.PlacedAt.UTC(),
	}, nil
}
