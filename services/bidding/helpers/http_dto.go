package helpers

import (
	"time"

	"philabid/internal/models"
	"philabid/internal/money"
)

// Request/Response DTOs

// MoneyDTO carries an exact decimal literal; amounts never travel as floats
type MoneyDTO struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3,alpha"`
}

type OpenAuctionRequest struct {
	Name     string    `json:"name" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required,gtfield=StartsAt"`
}

type CreateLotRequest struct {
	Description  string   `json:"description" binding:"required"`
	ReservePrice MoneyDTO `json:"reserve_price" binding:"required"`
}

type PlaceBidRequest struct {
	BidderID string   `json:"bidder_id" binding:"required"`
	Amount   MoneyDTO `json:"amount" binding:"required"`
}

type AuctionResponse struct {
	AuctionID string `json:"auction_id"`
	Name      string `json:"name"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
}

type LotResponse struct {
	LotID        string    `json:"lot_id"`
	AuctionID    string    `json:"auction_id"`
	Description  string    `json:"description"`
	ReservePrice MoneyDTO  `json:"reserve_price"`
	State        string    `json:"state"`
	LeadingBidID string    `json:"leading_bid_id,omitempty"`
	FinalPrice   *MoneyDTO `json:"final_price,omitempty"`
	ArchivedAt   string    `json:"archived_at,omitempty"`
	UpdatedAt    string    `json:"updated_at"`
}

type BidResponse struct {
	BidID    string   `json:"bid_id"`
	LotID    string   `json:"lot_id"`
	BidderID string   `json:"bidder_id"`
	Amount   MoneyDTO `json:"amount"`
	Status   string   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	PlacedAt string   `json:"placed_at"`
}

type OutcomeResponse struct {
	Lot        LotResponse  `json:"lot"`
	WinningBid *BidResponse `json:"winning_bid,omitempty"`
}

// ToMoney parses the DTO into a currency-checked Money value
func (d MoneyDTO) ToMoney() (money.Money, error) {
	return money.New(d.Amount, d.Currency)
}

func NewMoneyDTO(m money.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Amount(), Currency: m.Currency()}
}

func NewAuctionResponse(a models.Auction) AuctionResponse {
	return AuctionResponse{
		AuctionID: a.AuctionID,
		Name:      a.Name,
		StartsAt:  a.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:    a.EndsAt.UTC().Format(time.RFC3339),
	}
}

func NewLotResponse(l models.Lot) LotResponse {
	resp := LotResponse{
		LotID:        l.LotID,
		AuctionID:    l.AuctionID,
		Description:  l.Description,
		ReservePrice: NewMoneyDTO(l.ReservePrice),
		State:        string(l.State),
		LeadingBidID: l.LeadingBidID,
		UpdatedAt:    l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.FinalPrice != nil {
		final := NewMoneyDTO(*l.FinalPrice)
		resp.FinalPrice = &final
	}
	if l.ArchivedAt != nil {
		resp.ArchivedAt = l.ArchivedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func NewBidResponse(b models.Bid) BidResponse {
	return BidResponse{
		BidID:    b.BidID,
		LotID:    b.LotID,
		BidderID: b.BidderID,
		Amount:   NewMoneyDTO(b.Amount),
		Status:   string(b.Status),
		Reason:   string(b.Reason),
		PlacedAt: b.PlacedAt.UTC().Format(time.RFC3339Nano),
	}
}

func NewOutcomeResponse(o models.LotOutcome) OutcomeResponse {
	resp := OutcomeResponse{Lot: NewLotResponse(o.Lot)}
	if o.WinningBid != nil {
		winner := NewBidResponse(*o.WinningBid)
		resp.WinningBid = &winner
	}
	return resp
}
