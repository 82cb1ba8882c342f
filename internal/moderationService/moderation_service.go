package moderation

import (
	"context"
	"fmt"

	"auction-service/internal/biddingerrors"
	"auction-service/internal/metrics"
	"auction-service/internal/models"
	"auction-service/internal/repository"
	"auction-service/utils"
)

// DeleteTarget names what an admin wants removed. BidID wins when both are set.
type DeleteTarget struct {
	BidID     string
	AuctionID string
}

// ModerationService implements the admin-only operations on auctions and bids
type ModerationService struct {
	repo repository.AuctionDB
}

// NewModerationService creates a new ModerationService instance
func NewModerationService(repo repository.AuctionDB) *ModerationService {
	return &ModerationService{repo: repo}
}

// ListAuctions returns every auction in creation order
func (s *ModerationService) ListAuctions(ctx context.Context, requester models.Identity) ([]models.Auction, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	auctions, err := s.repo.ListAuctions(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return auctions, nil
}

// DeleteBid removes a bid in any auction phase
func (s *ModerationService) DeleteBid(ctx context.Context, bidID string, requester models.Identity) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if bidID == "" {
		return fmt.Errorf("service: %w - empty bid ID", biddingerrors.ErrBidNotFound)
	}

	if err := s.repo.DeleteBid(ctx, bidID); err != nil {
		return fmt.Errorf("service: failed to delete bid %s: %w", bidID, err)
	}

	metrics.RecordModerationDelete(metrics.TargetBid)
	utils.Info("bid deleted by moderator", map[string]any{
		"bid_id":   bidID,
		"admin_id": requester.UserID,
	})
	return nil
}

// DeleteAuction removes an auction together with all of its bids
func (s *ModerationService) DeleteAuction(ctx context.Context, auctionID string, requester models.Identity) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrAuctionNotFound)
	}

	if err := s.repo.DeleteAuction(ctx, auctionID); err != nil {
		return fmt.Errorf("service: failed to delete auction %s: %w", auctionID, err)
	}

	metrics.RecordModerationDelete(metrics.TargetAuction)
	utils.Info("auction deleted by moderator", map[string]any{
		"auction_id": auctionID,
		"admin_id":   requester.UserID,
	})
	return nil
}

// Delete dispatches to DeleteBid or DeleteAuction. Permission is checked
// before the target so non-admins never learn what exists.
func (s *ModerationService) Delete(ctx context.Context, target DeleteTarget, requester models.Identity) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}

	switch {
	case target.BidID != "":
		return s.DeleteBid(ctx, target.BidID, requester)
	case target.AuctionID != "":
		return s.DeleteAuction(ctx, target.AuctionID, requester)
	default:
		return fmt.Errorf("service: %w", biddingerrors.ErrNoDeleteTarget)
	}
}

func requireAdmin(requester models.Identity) error {
	if !requester.IsAdmin {
		utils.Warn("moderation denied", map[string]any{"user_id": requester.UserID})
		return fmt.Errorf("service: user %q: %w", requester.UserID, biddingerrors.ErrForbidden)
	}
	return nil
}
