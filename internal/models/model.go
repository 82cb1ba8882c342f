package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Identity is the already-verified caller supplied by the identity provider
type Identity struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// Phase is the lifecycle phase of an auction, always derived from the clock
type Phase string

const (
	PhasePending Phase = "pending"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

// Auction represents a timed auction created by a user
type Auction struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartingPrice decimal.Decimal `json:"starting_price"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	CreatorID     string          `json:"creator_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsActive reports whether now falls inside [StartTime, EndTime], bounds inclusive
func (a Auction) IsActive(now time.Time) bool {
	return !now.Before(a.StartTime) && !now.After(a.EndTime)
}

// PhaseAt returns the auction phase at the given instant
func (a Auction) PhaseAt(now time.Time) Phase {
	switch {
	case now.Before(a.StartTime):
		return PhasePending
	case now.After(a.EndTime):
		return PhaseEnded
	default:
		return PhaseActive
	}
}

// AuctionInput carries the user-supplied fields of a new auction
type AuctionInput struct {
	Title         string
	Description   string
	StartingPrice string
	StartTime     time.Time
	EndTime       time.Time
}

// Bid represents a user's admitted bid on an auction
type Bid struct {
	ID        string          `json:"id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	// Seq is the ledger insertion sequence, used to break amount ties.
	Seq int64 `json:"-"`
}

// Outranks reports whether b sorts before other in ledger order:
// amount descending, then earliest insertion first.
func (b Bid) Outranks(other Bid) bool {
	if c := b.Amount.Cmp(other.Amount); c != 0 {
		return c > 0
	}
	return b.Seq < other.Seq
}
