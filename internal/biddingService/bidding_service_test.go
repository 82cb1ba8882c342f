package bidding

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"auction-service/internal/biddingerrors"
	model "auction-service/internal/models"
	"auction-service/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newActiveService returns a service over a memory repo holding one auction
// running for an hour around baseTime.
func newActiveService(t *testing.T, startingPrice string) (*BiddingService, model.Auction) {
	t.Helper()
	svc := NewBiddingService(repository.NewMemoryRepo(), WithClock(FixedClock{T: baseTime}))

	auction, err := svc.CreateAuction(context.Background(), "creator", model.AuctionInput{
		Title:         "Phone",
		Description:   "Smartphone",
		StartingPrice: startingPrice,
		StartTime:     baseTime.Add(-30 * time.Minute),
		EndTime:       baseTime.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	return svc, auction
}

func requireReason(t *testing.T, err error, reason biddingerrors.RejectionReason) {
	t.Helper()
	rej, ok := biddingerrors.AsRejection(err)
	require.True(t, ok, "expected rejection, got: %v", err)
	require.Equal(t, reason, rej.Reason)
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "100", want: "100"},
		{raw: "100.00", want: "100"},
		{raw: " 0.01 ", want: "0.01"},
		{raw: "1.230", want: "1.23"},
		{raw: "99999999.99", want: "99999999.99"},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "1.234", wantErr: true},
		{raw: "100000000", wantErr: true},
		{raw: "1.5e2", want: "150"},
		{raw: "1e100000000", wantErr: true},
		{raw: "1e-100000000", wantErr: true},
		{raw: "-1e100000000", wantErr: true},
		{raw: "1e10", wantErr: true},
		{raw: "1e-40", wantErr: true},
		{raw: "0.000000000000000000000000000000001", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(strconv.Quote(tc.raw), func(t *testing.T) {
			t.Parallel()
			start := time.Now()
			got, err := parseAmount(tc.raw)
			require.Less(t, time.Since(start), time.Second)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestBiddingService_CreateAuction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	valid := model.AuctionInput{
		Title:         "  Bike  ",
		StartingPrice: "50.00",
		StartTime:     baseTime,
		EndTime:       baseTime.Add(time.Hour),
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		svc := NewBiddingService(repository.NewMemoryRepo(), WithClock(FixedClock{T: baseTime}))

		a, err := svc.CreateAuction(ctx, "user-1", valid)
		require.NoError(t, err)
		_, parseErr := uuid.Parse(a.ID)
		require.NoError(t, parseErr)
		require.Equal(t, "Bike", a.Title)
		require.Equal(t, "user-1", a.CreatorID)
		require.Equal(t, baseTime, a.CreatedAt)

		stored, err := svc.GetAuction(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.ID, stored.ID)
	})

	tests := []struct {
		name   string
		mutate func(in *model.AuctionInput)
		fields []string
	}{
		{name: "empty_title", mutate: func(in *model.AuctionInput) { in.Title = "   " }, fields: []string{"title"}},
		{name: "long_title", mutate: func(in *model.AuctionInput) {
			b := make([]byte, maxTitleLength+1)
			for i := range b {
				b[i] = 'x'
			}
			in.Title = string(b)
		}, fields: []string{"title"}},
		{name: "zero_price", mutate: func(in *model.AuctionInput) { in.StartingPrice = "0" }, fields: []string{"starting_price"}},
		{name: "bad_price", mutate: func(in *model.AuctionInput) { in.StartingPrice = "ten" }, fields: []string{"starting_price"}},
		{name: "start_equals_end", mutate: func(in *model.AuctionInput) { in.EndTime = in.StartTime }, fields: []string{"end_time"}},
		{name: "start_after_end", mutate: func(in *model.AuctionInput) { in.EndTime = in.StartTime.Add(-time.Minute) }, fields: []string{"end_time"}},
		{name: "everything_wrong", mutate: func(in *model.AuctionInput) {
			*in = model.AuctionInput{StartingPrice: "-1"}
		}, fields: []string{"title", "starting_price", "start_time", "end_time"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			mockRepo := repository.NewMockAuctionDB(ctrl) // no calls expected

			in := valid
			tc.mutate(&in)

			_, err := NewBiddingService(mockRepo).CreateAuction(ctx, "user-1", in)
			require.ErrorIs(t, err, biddingerrors.ErrValidation)

			var verr *biddingerrors.ValidationError
			require.True(t, errors.As(err, &verr))
			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			require.Equal(t, tc.fields, fields)
		})
	}

	t.Run("repo_fails", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		mockRepo := repository.NewMockAuctionDB(ctrl)
		mockRepo.EXPECT().CreateAuction(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := NewBiddingService(mockRepo).CreateAuction(ctx, "user-1", valid)
		require.Error(t, err)
		require.False(t, errors.Is(err, biddingerrors.ErrValidation))
	})
}

func TestBiddingService_SubmitBid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("starting_price_boundary", func(t *testing.T) {
		t.Parallel()
		svc, a := newActiveService(t, "100.00")

		_, err := svc.PlaceBid(ctx, a.ID, "bidder", "99.99")
		requireReason(t, err, biddingerrors.ReasonBidTooLow)
		require.ErrorIs(t, err, biddingerrors.ErrBidTooLow)

		bid, err := svc.PlaceBid(ctx, a.ID, "bidder", "100.00")
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString("100").Equal(bid.Amount))
		require.Equal(t, a.ID, bid.AuctionID)
		require.Equal(t, "bidder", bid.BidderID)
		require.Equal(t, baseTime, bid.CreatedAt)
	})

	t.Run("ties_rejected", func(t *testing.T) {
		t.Parallel()
		svc, a := newActiveService(t, "100.00")

		_, err := svc.PlaceBid(ctx, a.ID, "alice", "120.00")
		require.NoError(t, err)

		_, err = svc.PlaceBid(ctx, a.ID, "bob", "120")
		requireReason(t, err, biddingerrors.ReasonBidTooLow)

		_, err = svc.PlaceBid(ctx, a.ID, "bob", "120.01")
		require.NoError(t, err)

		top, err := svc.GetHighestBid(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "bob", top.BidderID)
	})

	t.Run("outside_window", func(t *testing.T) {
		t.Parallel()
		svc, a := newActiveService(t, "1.00")

		for _, now := range []time.Time{
			a.StartTime.Add(-time.Nanosecond),
			a.EndTime.Add(time.Nanosecond),
			a.EndTime.Add(24 * time.Hour),
		} {
			_, err := svc.SubmitBid(ctx, a.ID, "bidder", "1000000", now)
			requireReason(t, err, biddingerrors.ReasonAuctionNotActive)
		}

		_, err := svc.SubmitBid(ctx, a.ID, "bidder", "5", a.StartTime)
		require.NoError(t, err)
		_, err = svc.SubmitBid(ctx, a.ID, "bidder", "6", a.EndTime)
		require.NoError(t, err)
	})

	t.Run("invalid_amount_checked_before_existence", func(t *testing.T) {
		t.Parallel()
		svc := NewBiddingService(repository.NewMemoryRepo())

		_, err := svc.PlaceBid(ctx, "missing", "bidder", "-3")
		requireReason(t, err, biddingerrors.ReasonInvalidAmount)
		require.ErrorIs(t, err, biddingerrors.ErrInvalidAmount)
	})

	t.Run("auction_not_found", func(t *testing.T) {
		t.Parallel()
		svc := NewBiddingService(repository.NewMemoryRepo())

		_, err := svc.PlaceBid(ctx, "missing", "bidder", "10")
		requireReason(t, err, biddingerrors.ReasonAuctionNotFound)
		require.ErrorIs(t, err, biddingerrors.ErrNotFound)
	})

	t.Run("missing_bidder", func(t *testing.T) {
		t.Parallel()
		svc, a := newActiveService(t, "1")

		_, err := svc.PlaceBid(ctx, a.ID, "", "10")
		require.ErrorIs(t, err, biddingerrors.ErrValidation)
	})
}

func TestBiddingService_SubmitBid_Mocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	auction := model.Auction{
		ID:            "a1",
		StartingPrice: decimal.RequireFromString("10"),
		StartTime:     baseTime.Add(-time.Hour),
		EndTime:       baseTime.Add(time.Hour),
	}

	// runDecide feeds the callback the given ledger state, the way a store would.
	runDecide := func(highest *model.Bid) func(context.Context, string, repository.AdmitFunc) (model.Bid, error) {
		return func(_ context.Context, auctionID string, decide repository.AdmitFunc) (model.Bid, error) {
			bid, err := decide(auction, highest)
			if err != nil {
				return model.Bid{}, err
			}
			bid.AuctionID = auctionID
			return bid, nil
		}
	}

	tests := []struct {
		name          string
		amount        string
		mockSetup     func(m *repository.MockAuctionDB)
		expectError   bool
		expectedError error
	}{
		{
			name:   "first_bid_meets_starting_price",
			amount: "10",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "a1", gomock.Any()).DoAndReturn(runDecide(nil))
			},
		},
		{
			name:   "beats_highest",
			amount: "15.50",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "a1", gomock.Any()).
					DoAndReturn(runDecide(&model.Bid{Amount: decimal.RequireFromString("15.49")}))
			},
		},
		{
			name:   "below_highest",
			amount: "12",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "a1", gomock.Any()).
					DoAndReturn(runDecide(&model.Bid{Amount: decimal.RequireFromString("15")}))
			},
			expectError:   true,
			expectedError: biddingerrors.ErrBidTooLow,
		},
		{
			name:          "too_many_decimals",
			amount:        "12.345",
			mockSetup:     func(m *repository.MockAuctionDB) {},
			expectError:   true,
			expectedError: biddingerrors.ErrInvalidAmount,
		},
		{
			name:   "repo_fails",
			amount: "20",
			mockSetup: func(m *repository.MockAuctionDB) {
				m.EXPECT().AdmitBid(gomock.Any(), "a1", gomock.Any()).Return(model.Bid{}, errors.New("repo write failed"))
			},
			expectError:   true,
			expectedError: nil, // wrapped storage error, not a rejection
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			mockRepo := repository.NewMockAuctionDB(ctrl)
			tc.mockSetup(mockRepo)

			svc := NewBiddingService(mockRepo, WithClock(FixedClock{T: baseTime}))
			bid, err := svc.PlaceBid(ctx, "a1", "bidder", tc.amount)

			if tc.expectError {
				require.Error(t, err)
				if tc.expectedError != nil {
					require.True(t, errors.Is(err, tc.expectedError), "expected error: %v, got: %v", tc.expectedError, err)
				} else {
					_, isRejection := biddingerrors.AsRejection(err)
					require.False(t, isRejection)
				}
				return
			}

			require.NoError(t, err)
			_, parseErr := uuid.Parse(bid.ID)
			require.NoError(t, parseErr, "bid ID should be a valid UUID")
			require.Equal(t, "a1", bid.AuctionID)
			require.True(t, decimal.RequireFromString(tc.amount).Equal(bid.Amount))
			require.Equal(t, baseTime, bid.CreatedAt)
		})
	}
}

func TestBiddingService_ConcurrentIncreasingBids(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, a := newActiveService(t, "100.00")

	const n = 200
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted []model.Bid
		failures []error
	)

	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(amount int) {
			defer wg.Done()
			bid, err := svc.PlaceBid(ctx, a.ID, "bidder-"+strconv.Itoa(amount), strconv.Itoa(99+amount))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			admitted = append(admitted, bid)
		}(i)
	}
	wg.Wait()

	require.NotEmpty(t, admitted)
	for _, err := range failures {
		requireReason(t, err, biddingerrors.ReasonBidTooLow)
	}

	// in admission order every bid strictly beats all earlier ones
	sort.Slice(admitted, func(i, j int) bool { return admitted[i].Seq < admitted[j].Seq })
	for i := 1; i < len(admitted); i++ {
		require.True(t, admitted[i].Amount.GreaterThan(admitted[i-1].Amount),
			"bid %s admitted after higher bid %s", admitted[i].Amount, admitted[i-1].Amount)
	}

	top, err := svc.GetHighestBid(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(99+n).Equal(top.Amount))

	bids, err := svc.GetBidsForAuction(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, bids, len(admitted))
}

func TestBiddingService_ConcurrentEqualBids(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, a := newActiveService(t, "10")

	const n = 100
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.PlaceBid(ctx, a.ID, "bidder", "50.00"); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, accepted)
}

func TestBiddingService_Lookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, a := newActiveService(t, "1")

	_, err := svc.GetHighestBid(ctx, a.ID)
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)

	_, err = svc.GetHighestBid(ctx, "")
	require.ErrorIs(t, err, biddingerrors.ErrValidation)

	_, err = svc.GetBidsForAuction(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrAuctionNotFound)

	_, err = svc.GetAuction(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrNotFound)

	require.Equal(t, baseTime, svc.Now())
}
