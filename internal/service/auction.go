package service

import (
	"context"
	"errors"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/config"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo"
	"auction-management-api/internal/repo/repo_errors"

	"github.com/sirupsen/logrus"
)

type AuctionService struct {
	auctionRepo    repo.Auction
	bidRepo        repo.Bid
	invitationRepo repo.Invitation
	orderRepo      repo.Order
	cache          repo.LowestBidCache
	cfg            *config.Config
	log            *logrus.Logger
}

func NewAuctionService(repos *repo.Repositories, cfg *config.Config, log *logrus.Logger) *AuctionService {
	return &AuctionService{
		auctionRepo:    repos.Auction,
		bidRepo:        repos.Bid,
		invitationRepo: repos.Invitation,
		orderRepo:      repos.Order,
		cache:          repos.LowestBidCache,
		cfg:            cfg,
		log:            log,
	}
}

func (s *AuctionService) CreateAuction(ctx context.Context, input *entity.CreateAuctionInput) (*entity.AuctionOutputModel, error) {
	if !common.ValidAwardMethod(input.AwardMethod) {
		return nil, ErrInvalidAwardMethod
	}

	duration := input.EndDate.Sub(input.StartDate)
	if duration < s.cfg.MinAuctionDuration || duration > s.cfg.MaxAuctionDuration {
		return nil, ErrInvalidDuration
	}

	id, err := s.auctionRepo.CreateAuction(ctx, input)
	if err != nil {
		return nil, err
	}

	auction, err := s.auctionRepo.GetAuctionById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"auctionId": auction.Id,
		"number":    auction.Number,
		"buyerId":   auction.BuyerId,
	}).Info("auction created")

	return mapAuction(auction), nil
}

func (s *AuctionService) GetAuctionById(ctx context.Context, auctionId string) (*entity.AuctionOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	return mapAuction(auction), nil
}

func (s *AuctionService) GetAuctionStatus(ctx context.Context, auctionId string) (string, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return "", ErrAuctionNotFound
		}

		return "", err
	}

	return string(auction.Status), nil
}

func (s *AuctionService) GetPublishedAuctions(ctx context.Context, pg *entity.PaginationInput) ([]entity.AuctionOutputModel, error) {
	auctions, err := s.auctionRepo.GetPublishedAuctions(ctx, pg)
	if err != nil {
		return nil, err
	}

	return mapAuctions(auctions), nil
}

func (s *AuctionService) PublishAuction(ctx context.Context, auctionId string, actorId string) (*entity.AuctionOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() != actorId {
		return nil, ErrNotAuctionOwner
	}

	if auction.Status != common.Draft {
		return nil, illegalTransition(auction.Status, common.Published)
	}

	// a start date already in the past opens the auction immediately
	newStatus := common.Published
	if !auction.StartDate.After(time.Now().UTC()) {
		newStatus = common.Active
	}

	err = s.auctionRepo.PublishAuction(ctx, auctionId, newStatus)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			current, getErr := s.auctionRepo.GetAuctionById(ctx, auctionId)
			if getErr != nil {
				return nil, getErr
			}

			return nil, illegalTransition(current.Status, common.Published)
		}

		return nil, err
	}

	auction, err = s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"auctionId": auction.Id,
		"status":    auction.Status,
	}).Info("auction published")

	return mapAuction(auction), nil
}

func (s *AuctionService) CancelAuction(ctx context.Context, auctionId string, actorId string, reason string) (*entity.AuctionOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() != actorId {
		return nil, ErrNotAuctionOwner
	}

	if !auction.Status.CanTransition(common.Cancelled) {
		return nil, illegalTransition(auction.Status, common.Cancelled)
	}

	err = s.auctionRepo.CancelAuction(ctx, auctionId, reason, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			current, getErr := s.auctionRepo.GetAuctionById(ctx, auctionId)
			if getErr != nil {
				return nil, getErr
			}

			return nil, illegalTransition(current.Status, common.Cancelled)
		}

		return nil, err
	}

	if err = s.cache.DropLowestAmount(ctx, auctionId); err != nil {
		s.log.WithError(err).WithField("auctionId", auctionId).Warn("failed to drop lowest bid cache")
	}

	auction, err = s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"auctionId": auction.Id,
		"reason":    reason,
	}).Info("auction cancelled")

	return mapAuction(auction), nil
}

func (s *AuctionService) AwardAuction(ctx context.Context, auctionId string, actorId string, bidId string, notes string) (*entity.AwardOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() != actorId {
		return nil, ErrNotAuctionOwner
	}

	switch auction.Status {
	case common.Ended:
	case common.Awarded:
		return nil, ErrAuctionAlreadyAwarded
	default:
		return nil, ErrAuctionNotEnded
	}

	bid, err := s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	if bid.AuctionId.String() != auctionId {
		return nil, ErrBidNotFound
	}

	if bid.Status != common.ActiveBid {
		return nil, ErrBidNotActive
	}

	result, err := s.auctionRepo.AwardAuction(ctx, &entity.AwardInput{
		AuctionId: auctionId,
		BuyerId:   actorId,
		BidId:     bidId,
		Notes:     notes,
		AwardedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			current, getErr := s.auctionRepo.GetAuctionById(ctx, auctionId)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status == common.Awarded {
				return nil, ErrAuctionAlreadyAwarded
			}

			return nil, ErrBidNotActive
		}

		return nil, err
	}

	if err = s.cache.DropLowestAmount(ctx, auctionId); err != nil {
		s.log.WithError(err).WithField("auctionId", auctionId).Warn("failed to drop lowest bid cache")
	}

	s.log.WithFields(logrus.Fields{
		"auctionId":    auctionId,
		"winningBidId": bidId,
		"sellerId":     result.WinningBid.SellerId,
		"amount":       result.WinningBid.Amount,
		"orderNumber":  result.Order.Number,
		"rejectedBids": result.Rejected,
	}).Info("auction awarded")

	return mapAward(result), nil
}

// GetAuctionOrder is available to the buyer and the winning seller only.
func (s *AuctionService) GetAuctionOrder(ctx context.Context, auctionId string, actorId string) (*entity.OrderOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	order, err := s.orderRepo.GetOrderByAuctionId(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() != actorId && order.SellerId.String() != actorId {
		return nil, ErrNotAuctionOwner
	}

	return mapOrder(order), nil
}

func (s *AuctionService) InviteSeller(ctx context.Context, auctionId string, actorId string, sellerId string) (*entity.InvitationOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() != actorId {
		return nil, ErrNotAuctionOwner
	}

	if auction.IsPublic {
		return nil, ErrPublicAuctionInvite
	}

	// invitations may only be extended before bidding opens
	if auction.Status != common.Draft && auction.Status != common.Published {
		return nil, ErrInviteAfterOpen
	}

	id, err := s.invitationRepo.CreateInvitation(ctx, &entity.CreateInvitationInput{
		AuctionId: auctionId,
		SellerId:  sellerId,
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrAlreadyExists) {
			return nil, ErrAlreadyInvited
		}

		return nil, err
	}

	invitation, err := s.invitationRepo.GetInvitationById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	return mapInvitation(invitation), nil
}

// GetAuctionInvitations is visible to the auction owner only.
func (s *AuctionService) GetAuctionInvitations(ctx context.Context, auctionId string, actorId string) ([]entity.InvitationOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() != actorId {
		return nil, ErrNotAuctionOwner
	}

	invitations, err := s.invitationRepo.GetAuctionInvitations(ctx, auctionId)
	if err != nil {
		return nil, err
	}

	return mapInvitations(invitations), nil
}

func (s *AuctionService) RespondInvitation(ctx context.Context, invitationId string, actorId string, accept bool) (*entity.InvitationOutputModel, error) {
	invitation, err := s.invitationRepo.GetInvitationById(ctx, invitationId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}

		return nil, err
	}

	if invitation.SellerId.String() != actorId {
		return nil, ErrNotInvitee
	}

	if invitation.Status != common.PendingInvitation {
		return nil, ErrInvitationAnswered
	}

	newStatus := common.DeclinedInvitation
	if accept {
		newStatus = common.AcceptedInvitation
	}

	err = s.invitationRepo.RespondInvitation(ctx, invitationId, newStatus, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrInvitationAnswered
		}

		return nil, err
	}

	invitation, err = s.invitationRepo.GetInvitationById(ctx, invitationId)
	if err != nil {
		return nil, err
	}

	return mapInvitation(invitation), nil
}

func (s *AuctionService) ActivateDue(ctx context.Context) (int64, error) {
	activated, err := s.auctionRepo.ActivateDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if activated > 0 {
		s.log.WithField("count", activated).Info("auctions activated")
	}

	return activated, nil
}

func (s *AuctionService) CloseExpired(ctx context.Context) (int64, int64, error) {
	ended, noBids, err := s.auctionRepo.CloseExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, 0, err
	}

	if ended > 0 || noBids > 0 {
		s.log.WithFields(logrus.Fields{
			"ended":  ended,
			"noBids": noBids,
		}).Info("auctions closed")
	}

	return ended, noBids, nil
}
