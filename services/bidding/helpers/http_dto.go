package helpers

import (
	"bytes"
	"encoding/json"
	"time"

	model "auction-service/internal/models"
)

const amountFormatScale = 2

// AmountInput accepts a money value sent either as a JSON string ("12.50")
// or a JSON number (12.50). Numbers keep their literal text so no float
// rounding happens before decimal parsing. Any other JSON value is kept raw
// and fails as an invalid amount.
type AmountInput string

func (a *AmountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			// other JSON values are left for amount parsing to reject
			*a = AmountInput(data)
			return nil
		}
		*a = AmountInput(n.String())
		return nil
	}
}

// Request/Response DTOs
type PlaceBidRequest struct {
	AuctionID string      `json:"auction_id" binding:"required"`
	Amount    AmountInput `json:"amount"`
}

type CreateAuctionRequest struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	StartingPrice AmountInput `json:"starting_price"`
	StartTime     time.Time   `json:"start_time"`
	EndTime       time.Time   `json:"end_time"`
}

// ToInput converts the request into the engine's input type
func (r CreateAuctionRequest) ToInput() model.AuctionInput {
	return model.AuctionInput{
		Title:         r.Title,
		Description:   r.Description,
		StartingPrice: string(r.StartingPrice),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
	}
}

// AdminDeleteRequest names a bid or an auction; bid_id wins when both are set
type AdminDeleteRequest struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
}

type BidResponse struct {
	ID        string `json:"id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type AuctionResponse struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	StartingPrice string      `json:"starting_price"`
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	CreatorID     string      `json:"creator_id"`
	CreatedAt     string      `json:"created_at"`
	Phase         model.Phase `json:"phase"`
}

// NewBidResponse renders a bid for the wire
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount.StringFixed(amountFormatScale),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// NewBidResponses renders bids, never returning nil
func NewBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, NewBidResponse(b))
	}
	return out
}

// NewAuctionResponse renders an auction with its phase at now
func NewAuctionResponse(a model.Auction, now time.Time) AuctionResponse {
	return AuctionResponse{
		ID:            a.ID,
		Title:         a.Title,
		Description:   a.Description,
		StartingPrice: a.StartingPrice.StringFixed(amountFormatScale),
		StartTime:     a.StartTime.UTC().Format(time.RFC3339),
		EndTime:       a.EndTime.UTC().Format(time.RFC3339),
		CreatorID:     a.CreatorID,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		Phase:         a.PhaseAt(now),
	}
}

// NewAuctionResponses renders auctions, never returning nil
func NewAuctionResponses(auctions []model.Auction, now time.Time) []AuctionResponse {
	out := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, NewAuctionResponse(a, now))
	}
	return out
}
