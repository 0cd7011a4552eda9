package server

import (
	"net/http"

	"philabid/internal/repository"
	handler "philabid/services/bidding/handler"
	"philabid/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName is the tracer and server name reported in spans
const ServiceName = "philabid"

// SetupRouter configures all Gin routes for the application
func SetupRouter(service handler.AuctionServiceInterface, gate repository.SchemaGate) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())                  // recover from panics
	router.Use(otelgin.Middleware(ServiceName)) // one span per request
	router.Use(RequestLoggerMiddleware)         // custom request logging

	router.GET("/healthz", healthHandler(gate))

	biddingHandler := handler.NewBiddingHandler(service)

	auctions := router.Group("/auctions")
	{
		auctions.POST("", biddingHandler.OpenAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/lots", biddingHandler.CreateLotHandler)
	}

	lots := router.Group("/lots")
	{
		lots.GET("/:lot_id", biddingHandler.GetLotHandler)
		lots.POST("/:lot_id/open", biddingHandler.OpenLotHandler)
		lots.POST("/:lot_id/close", biddingHandler.CloseLotHandler)
		lots.POST("/:lot_id/settle", biddingHandler.SettleLotHandler)
		lots.POST("/:lot_id/cancel", biddingHandler.CancelLotHandler)
		lots.POST("/:lot_id/archive", biddingHandler.ArchiveLotHandler)
		lots.POST("/:lot_id/bids", biddingHandler.PlaceBidHandler)
		lots.GET("/:lot_id/bids", biddingHandler.ListBidsHandler)
		lots.GET("/:lot_id/leading", biddingHandler.GetLeadingBidHandler)
	}

	return router
}

// healthHandler reports 503 until schema migrations have completed
func healthHandler(gate repository.SchemaGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gate == nil || !gate.Ready() {
			utils.JSONResponse(c, http.StatusServiceUnavailable, gin.H{"ready": false}, "service starting")
			return
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"ready": true}, "ok")
	}
}
