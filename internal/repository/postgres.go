package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auction-service/internal/biddingerrors"
	model "auction-service/internal/models"
	"auction-service/internal/repository/migrations"
	"auction-service/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	auctionColumns = `id, title, description, starting_price, start_time, end_time, creator_id, created_at`
	bidColumns     = `id, auction_id, bidder_id, amount, created_at, seq`

	selectAuctionSQL = `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	lockAuctionSQL   = selectAuctionSQL + ` FOR UPDATE`
	highestBidSQL    = `SELECT ` + bidColumns + ` FROM bids WHERE auction_id = $1 ORDER BY amount DESC, seq ASC LIMIT 1`
)

// PostgresRepo is the PostgreSQL implementation of AuctionDB. Per-auction
// serialization is a row lock on the auction taken inside each write transaction.
type PostgresRepo struct {
	db *sql.DB
}

var _ AuctionDB = (*PostgresRepo)(nil)

// NewPostgresRepo wraps an open database handle
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// OpenPostgres opens and pings a pgx-backed database handle
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// CreateAuction inserts a new auction row
func (r *PostgresRepo) CreateAuction(ctx context.Context, a model.Auction) error {
	query := `INSERT INTO auctions (` + auctionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Title, a.Description, a.StartingPrice, a.StartTime, a.EndTime, a.CreatorID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create auction %s: db error: %w", a.ID, err)
	}
	return nil
}

// GetAuction returns the auction with the given id
func (r *PostgresRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	if !utils.ValidID(auctionID) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	a, err := scanAuction(r.db.QueryRowContext(ctx, selectAuctionSQL, auctionID))
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionErr(err))
	}
	return a, nil
}

// ListAuctions returns all auctions in creation order
func (r *PostgresRepo) ListAuctions(ctx context.Context) ([]model.Auction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+auctionColumns+` FROM auctions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list auctions: db error: %w", err)
	}
	defer rows.Close()

	auctions := []model.Auction{}
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("list auctions: db error: %w", err)
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auctions: db error: %w", err)
	}
	return auctions, nil
}

// DeleteAuction deletes the bids and then the auction inside one transaction
func (r *PostgresRepo) DeleteAuction(ctx context.Context, auctionID string) error {
	if !utils.ValidID(auctionID) {
		return fmt.Errorf("delete auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := scanAuction(tx.QueryRowContext(ctx, lockAuctionSQL, auctionID)); err != nil {
			return auctionErr(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE auction_id = $1`, auctionID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM auctions WHERE id = $1`, auctionID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete auction %s: %w", auctionID, err)
	}
	return nil
}

// AdmitBid locks the auction row, reads the highest bid, lets decide rule on the
// submission and inserts the admitted bid before committing.
func (r *PostgresRepo) AdmitBid(ctx context.Context, auctionID string, decide AdmitFunc) (model.Bid, error) {
	if !utils.ValidID(auctionID) {
		return model.Bid{}, fmt.Errorf("admit bid for auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}

	var admitted model.Bid
	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		auction, err := scanAuction(tx.QueryRowContext(ctx, lockAuctionSQL, auctionID))
		if err != nil {
			return auctionErr(err)
		}

		var highest *model.Bid
		top, err := scanBid(tx.QueryRowContext(ctx, highestBidSQL, auctionID))
		switch {
		case err == nil:
			highest = &top
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("db error: %w", err)
		}

		bid, err := decide(auction, highest)
		if err != nil {
			return err
		}
		bid.AuctionID = auctionID

		err = tx.QueryRowContext(ctx,
			`INSERT INTO bids (id, auction_id, bidder_id, amount, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
			bid.ID, bid.AuctionID, bid.BidderID, bid.Amount, bid.CreatedAt).Scan(&bid.Seq)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		admitted = bid
		return nil
	})
	if err != nil {
		return model.Bid{}, fmt.Errorf("admit bid for auction %s: %w", auctionID, err)
	}
	return admitted, nil
}

// GetBid returns a single bid by id
func (r *PostgresRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	if !utils.ValidID(bidID) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}

	bid, err := scanBid(r.db.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, bidID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
		}
		return model.Bid{}, fmt.Errorf("get bid %s: db error: %w", bidID, err)
	}
	return bid, nil
}

// GetBidsByAuction returns all bids for an auction in ledger order
func (r *PostgresRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	if err := r.auctionExists(ctx, auctionID); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE auction_id = $1 ORDER BY amount DESC, seq ASC`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: db error: %w", auctionID, err)
	}
	defer rows.Close()

	bids := []model.Bid{}
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("get bids for auction %s: db error: %w", auctionID, err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get bids for auction %s: db error: %w", auctionID, err)
	}
	return bids, nil
}

// HighestBid returns the current highest bid via the ledger index
func (r *PostgresRepo) HighestBid(ctx context.Context, auctionID string) (model.Bid, error) {
	if err := r.auctionExists(ctx, auctionID); err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, err)
	}

	bid, err := scanBid(r.db.QueryRowContext(ctx, highestBidSQL, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, biddingerrors.ErrNoBids)
		}
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: db error: %w", auctionID, err)
	}
	return bid, nil
}

// CountBids returns the number of bids on an auction
func (r *PostgresRepo) CountBids(ctx context.Context, auctionID string) (int, error) {
	if err := r.auctionExists(ctx, auctionID); err != nil {
		return 0, fmt.Errorf("count bids for auction %s: %w", auctionID, err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bids for auction %s: db error: %w", auctionID, err)
	}
	return n, nil
}

// DeleteBid removes a bid while holding its auction's row lock
func (r *PostgresRepo) DeleteBid(ctx context.Context, bidID string) error {
	if !utils.ValidID(bidID) {
		return fmt.Errorf("delete bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}

	err := WithTx(ctx, r.db, nil, func(ctx context.Context, tx DBTX) error {
		var auctionID string
		err := tx.QueryRowContext(ctx, `SELECT auction_id FROM bids WHERE id = $1`, bidID).Scan(&auctionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return biddingerrors.ErrBidNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if _, err := scanAuction(tx.QueryRowContext(ctx, lockAuctionSQL, auctionID)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return biddingerrors.ErrBidNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE id = $1`, bidID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return biddingerrors.ErrBidNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete bid %s: %w", bidID, err)
	}
	return nil
}

func (r *PostgresRepo) auctionExists(ctx context.Context, auctionID string) error {
	if !utils.ValidID(auctionID) {
		return biddingerrors.ErrAuctionNotFound
	}

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE id = $1)`, auctionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return biddingerrors.ErrAuctionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (model.Auction, error) {
	var a model.Auction
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.StartingPrice, &a.StartTime, &a.EndTime, &a.CreatorID, &a.CreatedAt)
	return a, err
}

func scanBid(row rowScanner) (model.Bid, error) {
	var b model.Bid
	err := row.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt, &b.Seq)
	return b, err
}

func auctionErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return biddingerrors.ErrAuctionNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
