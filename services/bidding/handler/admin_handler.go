package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"auction-service/internal/biddingerrors"
	moderation "auction-service/internal/moderationService"
	model "auction-service/internal/models"
	"auction-service/services/bidding/helpers"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=admin_handler.go -destination=mock_moderation_service.go -package=handler

type ModerationServiceInterface interface {
	ListAuctions(ctx context.Context, requester model.Identity) ([]model.Auction, error)
	Delete(ctx context.Context, target moderation.DeleteTarget, requester model.Identity) error
}

type AdminHandler struct {
	service ModerationServiceInterface
	now     func() time.Time
}

func NewAdminHandler(service ModerationServiceInterface, now func() time.Time) *AdminHandler {
	return &AdminHandler{service: service, now: now}
}

// ListAuctionsHandler handles GET /admin/auctions
func (h *AdminHandler) ListAuctionsHandler(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	auctions, err := h.service.ListAuctions(c.Request.Context(), caller)
	if err != nil {
		helpers.RespondError(c, "ListAuctionsHandler", err, map[string]any{"user_id": caller.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponses(auctions, h.now()), "auctions retrieved successfully")
}

// DeleteHandler handles DELETE /admin/auctions with a bid_id or auction_id body
func (h *AdminHandler) DeleteHandler(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	// admin check precedes reading the body
	if !caller.IsAdmin {
		helpers.RespondError(c, "DeleteHandler", fmt.Errorf("handler: %w", biddingerrors.ErrForbidden), map[string]any{
			"user_id": caller.UserID,
		})
		return
	}

	var req helpers.AdminDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "DeleteHandler", err)
		return
	}

	target := moderation.DeleteTarget{BidID: req.BidID, AuctionID: req.AuctionID}
	if err := h.service.Delete(c.Request.Context(), target, caller); err != nil {
		helpers.RespondError(c, "DeleteHandler", err, map[string]any{
			"user_id":    caller.UserID,
			"bid_id":     req.BidID,
			"auction_id": req.AuctionID,
		})
		return
	}

	message := "auction deleted successfully"
	if req.BidID != "" {
		message = "bid deleted successfully"
	}
	utils.JSONResponse(c, http.StatusOK, req, message)
	helpers.LogSuccess("DeleteHandler", message, map[string]any{
		"user_id":    caller.UserID,
		"bid_id":     req.BidID,
		"auction_id": req.AuctionID,
	})
}
