package server

import (
	"net/http"

	bidding "auction-service/internal/biddingService"
	"auction-service/internal/identity"
	moderation "auction-service/internal/moderationService"
	"auction-service/internal/throttle"
	handler "auction-service/services/bidding/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Dependencies are the services the router exposes
type Dependencies struct {
	Bidding     *bidding.BiddingService
	Moderation  *moderation.ModerationService
	Verifier    *identity.Verifier
	Throttle    *throttle.Limiter // optional
	ServiceName string
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	if deps.ServiceName != "" {
		router.Use(otelgin.Middleware(deps.ServiceName))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	biddingHandler := handler.NewBiddingHandler(deps.Bidding)
	adminHandler := handler.NewAdminHandler(deps.Moderation, deps.Bidding.Now)

	authed := router.Group("", identity.Authenticate(deps.Verifier))

	auctions := authed.Group("/auctions")
	{
		auctions.POST("", biddingHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", biddingHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/highest", biddingHandler.GetHighestBidHandler)
	}

	bids := authed.Group("/bids")
	if deps.Throttle != nil {
		bids.Use(deps.Throttle.Middleware())
	}
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	admin := authed.Group("/admin")
	{
		admin.GET("/auctions", adminHandler.ListAuctionsHandler)
		admin.DELETE("/auctions", adminHandler.DeleteHandler)
	}

	return router
}
