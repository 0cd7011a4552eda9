package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"philabid/internal/biddingerrors"
	"philabid/internal/models"
	"philabid/internal/money"
	"philabid/services/bidding/helpers"
	"philabid/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_handler.go -package=handler

// AuctionServiceInterface is the set of operations the HTTP adapter exposes
type AuctionServiceInterface interface {
	OpenAuction(ctx context.Context, name string, startsAt, endsAt time.Time) (models.Auction, error)
	GetAuction(ctx context.Context, auctionID string) (models.Auction, error)
	CreateLot(ctx context.Context, auctionID, description string, reserve money.Money) (models.Lot, error)
	GetLot(ctx context.Context, lotID string) (models.Lot, error)
	OpenLot(ctx context.Context, lotID string) (models.Lot, error)
	CloseLot(ctx context.Context, lotID string) (models.LotOutcome, error)
	SettleLot(ctx context.Context, lotID string) (models.Lot, error)
	CancelLot(ctx context.Context, lotID string) (models.Lot, error)
	ArchiveLot(ctx context.Context, lotID string) (models.Lot, error)
	PlaceBid(ctx context.Context, lotID, bidderID string, amount money.Money) (models.Bid, error)
	GetLeadingBid(ctx context.Context, lotID string) (models.Bid, error)
	ListBids(ctx context.Context, lotID string) ([]models.Bid, error)
}

type BiddingHandler struct {
	service AuctionServiceInterface
}

func NewBiddingHandler(service AuctionServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /lots/:lot_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	lotID := c.Param("lot_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}
	amount, err := req.Amount.ToMoney()
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{"lot_id": lotID})
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), lotID, req.BidderID, amount)
	if err != nil {
		fields := map[string]any{
			"lot_id":    lotID,
			"bidder_id": req.BidderID,
			"amount":    amount.String(),
		}
		// rejected bids are recorded; return the audit record with the error
		if bid.Status == models.BidRejected {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONErrorWithData(c, status, err, message, helpers.NewBidResponse(bid))
			helpers.LogFailure("PlaceBidHandler", status, err, fields)
			return
		}
		helpers.HandleServiceError(c, "PlaceBidHandler", err, fields)
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid accepted")
	helpers.LogSuccess("PlaceBidHandler", "bid accepted", map[string]any{
		"bid_id":    bid.BidID,
		"lot_id":    bid.LotID,
		"bidder_id": bid.BidderID,
		"amount":    bid.Amount.String(),
	})
}

// ListBidsHandler handles GET /lots/:lot_id/bids
func (h *BiddingHandler) ListBidsHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	bids, err := h.service.ListBids(c.Request.Context(), lotID)
	if err != nil {
		helpers.HandleServiceError(c, "ListBidsHandler", err, map[string]any{"lot_id": lotID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"lot_id": lotID,
		"count":  len(resp),
	})
}

// GetLeadingBidHandler handles GET /lots/:lot_id/leading
func (h *BiddingHandler) GetLeadingBidHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	bid, err := h.service.GetLeadingBid(c.Request.Context(), lotID)
	if err != nil {
		if errors.Is(err, biddingerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no leading bid found")
			utils.Info("GetLeadingBidHandler: no leading bid found", map[string]any{"lot_id": lotID})
			return
		}
		helpers.HandleServiceError(c, "GetLeadingBidHandler", err, map[string]any{"lot_id": lotID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "leading bid retrieved successfully")
	helpers.LogSuccess("GetLeadingBidHandler", "leading bid retrieved successfully", map[string]any{
		"bid_id": bid.BidID,
		"lot_id": bid.LotID,
		"amount": bid.Amount.String(),
	})
}
