package perftests

import (
	"context"
	"fmt"
	"testing"
	"time"

	bidding "auction-service/internal/biddingService"
	model "auction-service/internal/models"
	"auction-service/internal/repository"
	"auction-service/utils"
)

func init() {
	// admission logs every bid at info
	_ = utils.SetLevel("warn")
}

// setupAuctions creates a bidding service over a memory repo with n open auctions
func setupAuctions(tb testing.TB, n int, startingPrice string) (*bidding.BiddingService, []string) {
	tb.Helper()

	svc := bidding.NewBiddingService(repository.NewMemoryRepo())
	now := svc.Now()

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a, err := svc.CreateAuction(context.Background(), "seller", model.AuctionInput{
			Title:         fmt.Sprintf("Auction %d", i),
			Description:   "Load test auction",
			StartingPrice: startingPrice,
			StartTime:     now.Add(-time.Minute),
			EndTime:       now.Add(time.Hour),
		})
		if err != nil {
			tb.Fatalf("failed to create auction: %v", err)
		}
		ids = append(ids, a.ID)
	}
	return svc, ids
}
