package repo

import (
	"context"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo/pgdb"
	"auction-management-api/internal/repo/rediscache"
	"auction-management-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Diagnostics interface {
	Ping() error
}

type Auction interface {
	CreateAuction(ctx context.Context, input *entity.CreateAuctionInput) (uuid.UUID, error)
	GetAuctionById(ctx context.Context, id string) (*entity.Auction, error)
	GetPublishedAuctions(ctx context.Context, pg *entity.PaginationInput) ([]entity.Auction, error)

	// PublishAuction moves a Draft auction to newStatus (Published or Active)
	// and, for private auctions, queues Invited events for every invitee in
	// the same transaction. Returns ErrConflict if the auction left Draft.
	PublishAuction(ctx context.Context, id string, newStatus common.AuctionStatus) error

	// CancelAuction records the reason and queues Cancelled events for every
	// seller with an Active bid. Returns ErrConflict if the auction is
	// already terminal.
	CancelAuction(ctx context.Context, id string, reason string, cancelledAt time.Time) error

	// ActivateDue and CloseExpired are the scheduler sweeps. Both are
	// idempotent single-statement transitions.
	ActivateDue(ctx context.Context, now time.Time) (int64, error)
	CloseExpired(ctx context.Context, now time.Time) (ended int64, noBids int64, err error)

	// AwardAuction runs the terminal atomic unit: winner to Awarded, every
	// other Active bid to Rejected, auction to Awarded, purchase order
	// created, Won/Lost events queued. Any failure rolls everything back.
	AwardAuction(ctx context.Context, input *entity.AwardInput) (*entity.AwardResult, error)
}

type Bid interface {
	// SubmitBid runs the read-validate-write unit under the auction row lock:
	// it re-evaluates the bid rules against the locked state, upserts the
	// seller's bid and applies the anti-sniping extension, all in one
	// transaction. Rule violations come back as the entity bid decision
	// errors; lost races as ErrSerialization.
	SubmitBid(ctx context.Context, input *entity.SubmitBidInput, policy entity.BidPolicy) (*entity.BidReceipt, error)

	GetBidById(ctx context.Context, id string) (*entity.Bid, error)

	// WithdrawBid flips an Active bid to Withdrawn unless the auction is
	// already awarded.
	WithdrawBid(ctx context.Context, bidId string) error

	// GetAuctionBids returns every bid ranked by amount ascending, ties by
	// acceptance time.
	GetAuctionBids(ctx context.Context, auctionId string, pg *entity.PaginationInput) ([]entity.Bid, error)

	// GetSellerBid returns the seller's bid on the auction and its 1-based
	// rank among Active bids (0 when the bid is not Active).
	GetSellerBid(ctx context.Context, auctionId string, sellerId string) (*entity.Bid, int, error)

	GetLowestActiveAmount(ctx context.Context, auctionId string) (*decimal.Decimal, error)
}

type Invitation interface {
	CreateInvitation(ctx context.Context, input *entity.CreateInvitationInput) (uuid.UUID, error)
	GetInvitationById(ctx context.Context, id string) (*entity.Invitation, error)
	RespondInvitation(ctx context.Context, id string, status common.InvitationStatus, respondedAt time.Time) error
	HasAcceptedInvitation(ctx context.Context, auctionId string, sellerId string) (bool, error)
	GetAuctionInvitations(ctx context.Context, auctionId string) ([]entity.Invitation, error)
}

type Order interface {
	GetOrderByAuctionId(ctx context.Context, auctionId string) (*entity.PurchaseOrder, error)
}

type Outbox interface {
	GetUndispatchedEvents(ctx context.Context, limit int) ([]entity.OutboxEvent, error)
	MarkEventsDispatched(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// LowestBidCache is the advisory fast-read cache of an auction's current
// lowest Active amount. It is never authoritative: the submit transaction
// always checks the live aggregate.
type LowestBidCache interface {
	SetLowestAmount(ctx context.Context, auctionId string, amount decimal.Decimal) error
	GetLowestAmount(ctx context.Context, auctionId string) (*decimal.Decimal, error)
	DropLowestAmount(ctx context.Context, auctionId string) error
}

type Repositories struct {
	Diagnostics
	Auction
	Bid
	Invitation
	Order
	Outbox
	LowestBidCache
}

func NewRepositories(p *postgres.Postgres, rdb *redis.Client) *Repositories {
	return &Repositories{
		Diagnostics:    pgdb.NewDiagnosticsRepo(p),
		Auction:        pgdb.NewAuctionRepo(p),
		Bid:            pgdb.NewBidRepo(p),
		Invitation:     pgdb.NewInvitationRepo(p),
		Order:          pgdb.NewOrderRepo(p),
		Outbox:         pgdb.NewOutboxRepo(p),
		LowestBidCache: rediscache.NewLowestBidCache(rdb),
	}
}
