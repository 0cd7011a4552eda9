package models

import (
	"time"

	"philabid/internal/money"
)

// Auction groups lots under one scheduling window [StartsAt, EndsAt)
type Auction struct {
	AuctionID string    `json:"auction_id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether now falls inside the auction window
func (a Auction) Active(now time.Time) bool {
	return !now.Before(a.StartsAt) && now.Before(a.EndsAt)
}

// Ended reports whether the auction window has elapsed
func (a Auction) Ended(now time.Time) bool {
	return !now.Before(a.EndsAt)
}

// Lot represents a single philatelic item offered within an auction
type Lot struct {
	LotID        string      `json:"lot_id"`
	AuctionID    string      `json:"auction_id"`
	Description  string      `json:"description"`
	ReservePrice money.Money `json:"reserve_price"`
	State        LotState    `json:"state"`
	LeadingBidID string      `json:"leading_bid_id,omitempty"`
	// FinalPrice is set once the lot is settled
	FinalPrice *money.Money `json:"final_price,omitempty"`
	Version    int64        `json:"version"`
	ArchivedAt *time.Time   `json:"archived_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Currency is fixed at lot creation by the reserve price
func (l Lot) Currency() string {
	return l.ReservePrice.Currency()
}

// Bid represents a bidder's offer on a lot. Bids are append-only.
type Bid struct {
	BidID    string      `json:"bid_id"`
	LotID    string      `json:"lot_id"`
	BidderID string      `json:"bidder_id"`
	Amount   money.Money `json:"amount"`
	Status   BidStatus   `json:"status"`
	Reason   Reason      `json:"reason,omitempty"`
	PlacedAt time.Time   `json:"placed_at"`
}

// LotOutcome is the result of closing a lot
type LotOutcome struct {
	Lot        Lot  `json:"lot"`
	WinningBid *Bid `json:"winning_bid,omitempty"`
}

// SchemaVersion is one row of the applied-migration ledger
type SchemaVersion struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	Checksum  string    `json:"checksum"`
	AppliedAt time.Time `json:"applied_at"`
}
