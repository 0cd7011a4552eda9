package handler

import (
	"context"
	"net/http"

	"philabid/internal/models"
	"philabid/services/bidding/helpers"
	"philabid/utils"

	"github.com/gin-gonic/gin"
)

// OpenAuctionHandler handles POST /auctions
func (h *BiddingHandler) OpenAuctionHandler(c *gin.Context) {
	var req helpers.OpenAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "OpenAuctionHandler", err)
		return
	}

	auction, err := h.service.OpenAuction(c.Request.Context(), req.Name, req.StartsAt, req.EndsAt)
	if err != nil {
		helpers.HandleServiceError(c, "OpenAuctionHandler", err, map[string]any{"name": req.Name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction scheduled")
	helpers.LogSuccess("OpenAuctionHandler", "auction scheduled", map[string]any{"auction_id": auction.AuctionID})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *BiddingHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.service.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction retrieved successfully")
}

// CreateLotHandler handles POST /auctions/:auction_id/lots
func (h *BiddingHandler) CreateLotHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateLotHandler", err)
		return
	}
	reserve, err := req.ReservePrice.ToMoney()
	if err != nil {
		helpers.HandleServiceError(c, "CreateLotHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	lot, err := h.service.CreateLot(c.Request.Context(), auctionID, req.Description, reserve)
	if err != nil {
		helpers.HandleServiceError(c, "CreateLotHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewLotResponse(lot), "lot created")
	helpers.LogSuccess("CreateLotHandler", "lot created", map[string]any{
		"lot_id":     lot.LotID,
		"auction_id": auctionID,
		"reserve":    reserve.String(),
	})
}

// GetLotHandler handles GET /lots/:lot_id
func (h *BiddingHandler) GetLotHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	lot, err := h.service.GetLot(c.Request.Context(), lotID)
	if err != nil {
		helpers.HandleServiceError(c, "GetLotHandler", err, map[string]any{"lot_id": lotID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewLotResponse(lot), "lot retrieved successfully")
}

// OpenLotHandler handles POST /lots/:lot_id/open
func (h *BiddingHandler) OpenLotHandler(c *gin.Context) {
	h.lotAction(c, "OpenLotHandler", "lot opened", h.service.OpenLot)
}

// SettleLotHandler handles POST /lots/:lot_id/settle
func (h *BiddingHandler) SettleLotHandler(c *gin.Context) {
	h.lotAction(c, "SettleLotHandler", "lot settled", h.service.SettleLot)
}

// CancelLotHandler handles POST /lots/:lot_id/cancel
func (h *BiddingHandler) CancelLotHandler(c *gin.Context) {
	h.lotAction(c, "CancelLotHandler", "lot cancelled", h.service.CancelLot)
}

// ArchiveLotHandler handles POST /lots/:lot_id/archive
func (h *BiddingHandler) ArchiveLotHandler(c *gin.Context) {
	h.lotAction(c, "ArchiveLotHandler", "lot archived", h.service.ArchiveLot)
}

// CloseLotHandler handles POST /lots/:lot_id/close
func (h *BiddingHandler) CloseLotHandler(c *gin.Context) {
	lotID := c.Param("lot_id")
	outcome, err := h.service.CloseLot(c.Request.Context(), lotID)
	if err != nil {
		helpers.HandleServiceError(c, "CloseLotHandler", err, map[string]any{"lot_id": lotID})
		return
	}

	fields := map[string]any{"lot_id": lotID}
	if outcome.WinningBid != nil {
		fields["winning_bid_id"] = outcome.WinningBid.BidID
		fields["amount"] = outcome.WinningBid.Amount.String()
	}
	utils.JSONResponse(c, http.StatusOK, helpers.NewOutcomeResponse(outcome), "lot closed")
	helpers.LogSuccess("CloseLotHandler", "lot closed", fields)
}

type lotOperation func(ctx context.Context, lotID string) (models.Lot, error)

func (h *BiddingHandler) lotAction(c *gin.Context, handlerName, message string, op lotOperation) {
	lotID := c.Param("lot_id")
	lot, err := op(c.Request.Context(), lotID)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{"lot_id": lotID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewLotResponse(lot), message)
	helpers.LogSuccess(handlerName, message, map[string]any{
		"lot_id": lotID,
		"state":  string(lot.State),
	})
}
