package bidding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"auction-service/internal/biddingerrors"
	"auction-service/internal/metrics"
	"auction-service/internal/models"
	"auction-service/internal/repository"
	"auction-service/utils"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	maxTitleLength = 100
	amountScale    = 2

	// bounds on the textual form of an amount
	maxAmountLength   = 32
	minAmountExponent = -(maxAmountLength)
	maxAmountExponent = 10
)

// largest value a NUMERIC(10,2) column holds
var maxAmount = decimal.New(9999999999, -amountScale)

var tracer = otel.Tracer("auction-service/bidding")

// BiddingService owns auction creation and the bid admission rules
type BiddingService struct {
	repo  repository.AuctionDB
	clock Clock
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithClock replaces the system clock
func WithClock(c Clock) Option {
	return func(s *BiddingService) {
		s.clock = c
	}
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:  repo,
		clock: SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time
func (s *BiddingService) Now() time.Time {
	return s.clock.Now()
}

// CreateAuction validates the input and stores a new auction owned by creatorID.
// Every invalid field is reported in one *biddingerrors.ValidationError.
func (s *BiddingService) CreateAuction(ctx context.Context, creatorID string, in models.AuctionInput) (models.Auction, error) {
	verr := &biddingerrors.ValidationError{}

	if creatorID == "" {
		verr.Add("creator_id", "must not be empty")
	}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.Add("title", "must not be empty")
	case utf8.RuneCountInString(title) > maxTitleLength:
		verr.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}

	price, err := parseAmount(in.StartingPrice)
	if err != nil {
		verr.Add("starting_price", err.Error())
	}

	if in.StartTime.IsZero() {
		verr.Add("start_time", "is required")
	}
	if in.EndTime.IsZero() {
		verr.Add("end_time", "is required")
	}
	if !in.StartTime.IsZero() && !in.EndTime.IsZero() && !in.StartTime.Before(in.EndTime) {
		verr.Add("end_time", "must be after start_time")
	}

	if err := verr.OrNil(); err != nil {
		return models.Auction{}, fmt.Errorf("service: invalid auction: %w", err)
	}

	auction := models.Auction{
		ID:            utils.GenerateID(),
		Title:         title,
		Description:   in.Description,
		StartingPrice: price,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		CreatorID:     creatorID,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for user %s: %w", creatorID, err)
	}

	metrics.RecordAuctionCreated()
	utils.Info("auction created", map[string]any{
		"auction_id": auction.ID,
		"creator_id": creatorID,
		"start_time": auction.StartTime,
		"end_time":   auction.EndTime,
	})
	return auction, nil
}

// GetAuction returns a single auction
func (s *BiddingService) GetAuction(ctx context.Context, auctionID string) (models.Auction, error) {
	if auctionID == "" {
		return models.Auction{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrValidation)
	}

	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return auction, nil
}

// PlaceBid submits a bid at the current clock time
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderID, amount string) (models.Bid, error) {
	return s.SubmitBid(ctx, auctionID, bidderID, amount, s.clock.Now())
}

// SubmitBid runs the admission rules for a bid observed at now. Rule failures
// are returned as *biddingerrors.RejectionError; any other error is a storage
// failure.
func (s *BiddingService) SubmitBid(ctx context.Context, auctionID, bidderID, amount string, now time.Time) (models.Bid, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "SubmitBid")
	defer span.End()
	span.SetAttributes(attribute.String("auction.id", auctionID), attribute.String("bid.amount", amount))

	if bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing bidder ID", biddingerrors.ErrValidation)
	}

	value, err := parseAmount(amount)
	if err != nil {
		span.SetAttributes(attribute.String("bid.rejection", string(biddingerrors.ReasonInvalidAmount)))
		return s.reject(start, auctionID, bidderID, biddingerrors.Reject(biddingerrors.ReasonInvalidAmount, "%s", err))
	}

	bid, err := s.repo.AdmitBid(ctx, auctionID, func(auction models.Auction, highest *models.Bid) (models.Bid, error) {
		if !auction.IsActive(now) {
			return models.Bid{}, biddingerrors.Reject(biddingerrors.ReasonAuctionNotActive,
				"auction %s is %s", auction.ID, auction.PhaseAt(now))
		}
		if highest != nil {
			if !value.GreaterThan(highest.Amount) {
				return models.Bid{}, biddingerrors.Reject(biddingerrors.ReasonBidTooLow,
					"bid must exceed current highest %s", highest.Amount.StringFixed(amountScale))
			}
		} else if value.LessThan(auction.StartingPrice) {
			return models.Bid{}, biddingerrors.Reject(biddingerrors.ReasonBidTooLow,
				"bid must be at least starting price %s", auction.StartingPrice.StringFixed(amountScale))
		}

		return models.Bid{
			ID:        utils.GenerateID(),
			BidderID:  bidderID,
			Amount:    value,
			CreatedAt: now,
		}, nil
	})
	if err != nil {
		if rej, ok := biddingerrors.AsRejection(err); ok {
			span.SetAttributes(attribute.String("bid.rejection", string(rej.Reason)))
			return s.reject(start, auctionID, bidderID, rej)
		}
		if errors.Is(err, biddingerrors.ErrAuctionNotFound) {
			span.SetAttributes(attribute.String("bid.rejection", string(biddingerrors.ReasonAuctionNotFound)))
			return s.reject(start, auctionID, bidderID,
				biddingerrors.Reject(biddingerrors.ReasonAuctionNotFound, "auction %s does not exist", auctionID))
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "admission failed")
		metrics.RecordAdmission(metrics.OutcomeError, "", time.Since(start).Seconds())
		return models.Bid{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, bidderID, err)
	}

	span.SetAttributes(attribute.String("bid.id", bid.ID))
	metrics.RecordAdmission(metrics.OutcomeAdmitted, "", time.Since(start).Seconds())
	utils.Info("bid admitted", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount.StringFixed(amountScale),
	})
	return bid, nil
}

func (s *BiddingService) reject(start time.Time, auctionID, bidderID string, rej *biddingerrors.RejectionError) (models.Bid, error) {
	metrics.RecordAdmission(metrics.OutcomeRejected, string(rej.Reason), time.Since(start).Seconds())
	utils.Info("bid rejected", map[string]any{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"reason":     rej.Reason,
		"detail":     rej.Detail,
	})
	return models.Bid{}, rej
}

// GetBidsForAuction returns all bids for an auction, highest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID string) ([]models.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrValidation)
	}

	bids, err := s.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetHighestBid returns the current highest bid for an auction
func (s *BiddingService) GetHighestBid(ctx context.Context, auctionID string) (models.Bid, error) {
	if auctionID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", biddingerrors.ErrValidation)
	}

	bid, err := s.repo.HighestBid(ctx, auctionID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get highest bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// parseAmount accepts a positive decimal with at most two fractional digits
// that fits NUMERIC(10,2).
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errors.New("amount is required")
	}

	if len(raw) > maxAmountLength {
		return decimal.Zero, fmt.Errorf("must be at most %d characters", maxAmountLength)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a decimal number", raw)
	}
	// rescaling cost grows with the exponent, so bound it before any arithmetic
	switch exp := d.Exponent(); {
	case exp < minAmountExponent:
		return decimal.Zero, fmt.Errorf("must have at most %d decimal places", amountScale)
	case exp > maxAmountExponent:
		return decimal.Zero, fmt.Errorf("must not exceed %s", maxAmount.StringFixed(amountScale))
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.New("must be greater than zero")
	}
	if !d.Equal(d.Truncate(amountScale)) {
		return decimal.Zero, fmt.Errorf("must have at most %d decimal places", amountScale)
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("must not exceed %s", maxAmount.StringFixed(amountScale))
	}
	return d.Truncate(amountScale), nil
}
