package service

import (
	"context"

	"auction-management-api/internal/config"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo"

	"github.com/sirupsen/logrus"
)

type Diagnostics interface {
	Ping() error
}

type Auction interface {
	CreateAuction(ctx context.Context, input *entity.CreateAuctionInput) (*entity.AuctionOutputModel, error)
	GetAuctionById(ctx context.Context, auctionId string) (*entity.AuctionOutputModel, error)
	GetAuctionStatus(ctx context.Context, auctionId string) (string, error)
	GetPublishedAuctions(ctx context.Context, pg *entity.PaginationInput) ([]entity.AuctionOutputModel, error)

	PublishAuction(ctx context.Context, auctionId string, actorId string) (*entity.AuctionOutputModel, error)
	CancelAuction(ctx context.Context, auctionId string, actorId string, reason string) (*entity.AuctionOutputModel, error)
	AwardAuction(ctx context.Context, auctionId string, actorId string, bidId string, notes string) (*entity.AwardOutputModel, error)
	GetAuctionOrder(ctx context.Context, auctionId string, actorId string) (*entity.OrderOutputModel, error)

	InviteSeller(ctx context.Context, auctionId string, actorId string, sellerId string) (*entity.InvitationOutputModel, error)
	RespondInvitation(ctx context.Context, invitationId string, actorId string, accept bool) (*entity.InvitationOutputModel, error)
	GetAuctionInvitations(ctx context.Context, auctionId string, actorId string) ([]entity.InvitationOutputModel, error)

	// scheduler entry points
	ActivateDue(ctx context.Context) (int64, error)
	CloseExpired(ctx context.Context) (int64, int64, error)
}

type Bid interface {
	SubmitBid(ctx context.Context, input *entity.SubmitBidInput) (*entity.BidReceiptOutputModel, error)
	WithdrawBid(ctx context.Context, bidId string, actorId string) (*entity.BidOutputModel, error)
	GetAuctionBids(ctx context.Context, auctionId string, actorId string, pg *entity.PaginationInput) (*entity.BidListOutputModel, error)
	GetLowestBidAmount(ctx context.Context, auctionId string) (string, error)
}

type Services struct {
	Diagnostics Diagnostics
	Auction     Auction
	Bid         Bid
}

func NewServices(repos *repo.Repositories, cfg *config.Config, log *logrus.Logger) *Services {
	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		Auction:     NewAuctionService(repos, cfg, log),
		Bid:         NewBidService(repos, cfg, log),
	}
}
