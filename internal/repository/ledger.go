package repository

import (
	"sort"
	"sync"

	model "auction-service/internal/models"
)

// ledger holds the bids of one auction in ledger order (amount desc, then seq asc).
// Its mutex is the per-auction serialization point for admissions and deletions.
type ledger struct {
	mu      sync.Mutex
	bids    []model.Bid
	deleted bool
}

// highest returns the current top bid. Caller holds l.mu.
func (l *ledger) highest() (model.Bid, bool) {
	if len(l.bids) == 0 {
		return model.Bid{}, false
	}
	return l.bids[0], true
}

// insert places bid at its ordered position. Caller holds l.mu.
func (l *ledger) insert(bid model.Bid) {
	i := sort.Search(len(l.bids), func(i int) bool {
		return bid.Outranks(l.bids[i])
	})
	l.bids = append(l.bids, model.Bid{})
	copy(l.bids[i+1:], l.bids[i:])
	l.bids[i] = bid
}

// remove drops the bid with the given id. Caller holds l.mu.
func (l *ledger) remove(bidID string) bool {
	for i, b := range l.bids {
		if b.ID == bidID {
			l.bids = append(l.bids[:i], l.bids[i+1:]...)
			return true
		}
	}
	return false
}

// find looks up a bid by id. Caller holds l.mu.
func (l *ledger) find(bidID string) (model.Bid, bool) {
	for _, b := range l.bids {
		if b.ID == bidID {
			return b, true
		}
	}
	return model.Bid{}, false
}

// snapshot copies the bids in ledger order. Caller holds l.mu.
func (l *ledger) snapshot() []model.Bid {
	return append([]model.Bid(nil), l.bids...)
}
