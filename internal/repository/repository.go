package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"auction-service/internal/biddingerrors"
	model "auction-service/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AdmitFunc decides whether a bid is admitted given the auction and its current
// highest bid (nil when the ledger is empty). A non-nil error aborts the append.
type AdmitFunc func(auction model.Auction, highest *model.Bid) (model.Bid, error)

// AuctionDB defines the auction store and bid ledger used by the auction service
type AuctionDB interface {
	CreateAuction(ctx context.Context, auction model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListAuctions(ctx context.Context) ([]model.Auction, error)
	DeleteAuction(ctx context.Context, auctionID string) error

	// AdmitBid runs decide and appends its bid as one critical section per auction.
	AdmitBid(ctx context.Context, auctionID string, decide AdmitFunc) (model.Bid, error)
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	HighestBid(ctx context.Context, auctionID string) (model.Bid, error)
	CountBids(ctx context.Context, auctionID string) (int, error)
	DeleteBid(ctx context.Context, bidID string) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// The index lock guards the maps only; each auction's ledger carries its own
// mutex so admissions on different auctions never wait on each other.
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction // key: auctionID -> value: auction
	ledgers  map[string]*ledger       // key: auctionID -> value: bid ledger
	order    []string                 // auction ids in creation order
	bidIndex sync.Map                 // key: bidID -> value: auctionID
	seq      atomic.Int64
}

var _ AuctionDB = (*MemoryRepo)(nil)

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]model.Auction),
		ledgers:  make(map[string]*ledger),
	}
}

// CreateAuction stores a new auction with an empty ledger
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) error {
	if auction.ID == "" {
		return fmt.Errorf("create auction: empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.ID]; exists {
		return fmt.Errorf("create auction %s: duplicate id", auction.ID)
	}
	r.auctions[auction.ID] = auction
	r.ledgers[auction.ID] = &ledger{}
	r.order = append(r.order, auction.ID)
	return nil
}

// GetAuction returns the auction with the given id
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// ListAuctions returns all auctions in creation order
func (r *MemoryRepo) ListAuctions(_ context.Context) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(r.order))
	for _, id := range r.order {
		auctions = append(auctions, r.auctions[id])
	}
	return auctions, nil
}

// DeleteAuction removes an auction and every bid on it. It waits for in-flight
// admissions on the same auction and makes later ones fail with ErrAuctionNotFound.
func (r *MemoryRepo) DeleteAuction(_ context.Context, auctionID string) error {
	l, err := r.ledger(auctionID)
	if err != nil {
		return fmt.Errorf("delete auction %s: %w", auctionID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deleted {
		return fmt.Errorf("delete auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	l.deleted = true

	for _, b := range l.bids {
		r.bidIndex.Delete(b.ID)
	}
	l.bids = nil

	r.mu.Lock()
	delete(r.auctions, auctionID)
	delete(r.ledgers, auctionID)
	for i, id := range r.order {
		if id == auctionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	return nil
}

// AdmitBid serializes decide-and-append on the auction's ledger
func (r *MemoryRepo) AdmitBid(_ context.Context, auctionID string, decide AdmitFunc) (model.Bid, error) {
	r.mu.RLock()
	auction, ok := r.auctions[auctionID]
	l := r.ledgers[auctionID]
	r.mu.RUnlock()
	if !ok {
		return model.Bid{}, fmt.Errorf("admit bid for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deleted {
		return model.Bid{}, fmt.Errorf("admit bid for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	var highest *model.Bid
	if top, ok := l.highest(); ok {
		highest = &top
	}

	bid, err := decide(auction, highest)
	if err != nil {
		return model.Bid{}, err
	}

	bid.AuctionID = auctionID
	bid.Seq = r.seq.Add(1)
	l.insert(bid)
	r.bidIndex.Store(bid.ID, auctionID)

	return bid, nil
}

// GetBid returns a single bid by id
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (model.Bid, error) {
	l, err := r.ledgerForBid(bidID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bid, ok := l.find(bidID)
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return bid, nil
}

// GetBidsByAuction returns all bids for an auction in ledger order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	l, err := r.ledger(auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(), nil
}

// HighestBid returns the current highest bid for an auction
func (r *MemoryRepo) HighestBid(_ context.Context, auctionID string) (model.Bid, error) {
	l, err := r.ledger(auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bid, ok := l.highest()
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
	}
	return bid, nil
}

// CountBids returns the number of bids on an auction
func (r *MemoryRepo) CountBids(_ context.Context, auctionID string) (int, error) {
	l, err := r.ledger(auctionID)
	if err != nil {
		return 0, fmt.Errorf("count bids for auction %s: %w", auctionID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bids), nil
}

// DeleteBid removes a bid under its auction's ledger lock
func (r *MemoryRepo) DeleteBid(_ context.Context, bidID string) error {
	l, err := r.ledgerForBid(bidID)
	if err != nil {
		return fmt.Errorf("delete bid %s: %w", bidID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.remove(bidID) {
		return fmt.Errorf("delete bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	r.bidIndex.Delete(bidID)
	return nil
}

func (r *MemoryRepo) ledger(auctionID string) (*ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.ledgers[auctionID]
	if !ok {
		return nil, biddingerrors.ErrAuctionNotFound
	}
	return l, nil
}

func (r *MemoryRepo) ledgerForBid(bidID string) (*ledger, error) {
	v, ok := r.bidIndex.Load(bidID)
	if !ok {
		return nil, biddingerrors.ErrBidNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.ledgers[v.(string)]
	if !ok {
		return nil, biddingerrors.ErrBidNotFound
	}
	return l, nil
}
