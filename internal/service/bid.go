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

type BidService struct {
	bidRepo        repo.Bid
	auctionRepo    repo.Auction
	invitationRepo repo.Invitation
	cache          repo.LowestBidCache
	policy         entity.BidPolicy
	log            *logrus.Logger
}

func NewBidService(repos *repo.Repositories, cfg *config.Config, log *logrus.Logger) *BidService {
	return &BidService{
		bidRepo:        repos.Bid,
		auctionRepo:    repos.Auction,
		invitationRepo: repos.Invitation,
		cache:          repos.LowestBidCache,
		policy: entity.BidPolicy{
			Extension: entity.ExtensionPolicy{
				Window:        cfg.ExtensionWindow,
				MaxExtensions: cfg.MaxExtensions,
			},
			MinDecrementPercent: cfg.MinBidDecrementPercent,
			RetryAttempts:       cfg.SubmitRetryAttempts,
		},
		log: log,
	}
}

func (s *BidService) SubmitBid(ctx context.Context, input *entity.SubmitBidInput) (*entity.BidReceiptOutputModel, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidBidAmount
	}

	auction, err := s.auctionRepo.GetAuctionById(ctx, input.AuctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() == input.SellerId {
		return nil, ErrOwnerCanNotBid
	}

	// cheap pre-checks on the unlocked snapshot; the repo re-runs the full
	// rule set against the locked row before writing
	if !auction.OpenForBids(time.Now().UTC()) {
		return nil, ErrAuctionNotOpen
	}
	if !auction.IsPublic {
		invited, err := s.invitationRepo.HasAcceptedInvitation(ctx, input.AuctionId, input.SellerId)
		if err != nil {
			return nil, err
		}
		if !invited {
			return nil, ErrNotInvited
		}
	}
	if input.Amount.GreaterThan(auction.MaxBudget) {
		return nil, ErrBudgetExceeded
	}

	var receipt *entity.BidReceipt
	for attempt := 0; ; attempt++ {
		receipt, err = s.bidRepo.SubmitBid(ctx, input, s.policy)
		if err == nil {
			break
		}

		if errors.Is(err, repo_errors.ErrSerialization) {
			if attempt+1 >= s.policy.RetryAttempts {
				return nil, ErrConflictRetryable
			}

			continue
		}

		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		// bid decision errors pass through unchanged
		return nil, err
	}

	if err = s.cache.SetLowestAmount(ctx, input.AuctionId, receipt.LowestAmount); err != nil {
		s.log.WithError(err).WithField("auctionId", input.AuctionId).Warn("failed to update lowest bid cache")
	}

	s.log.WithFields(logrus.Fields{
		"auctionId": input.AuctionId,
		"sellerId":  input.SellerId,
		"amount":    input.Amount,
		"extended":  receipt.Extended,
	}).Info("bid accepted")

	return mapReceipt(receipt), nil
}

func (s *BidService) WithdrawBid(ctx context.Context, bidId string, actorId string) (*entity.BidOutputModel, error) {
	bid, err := s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	if bid.SellerId.String() != actorId {
		return nil, ErrNotBidOwner
	}

	if bid.Status != common.ActiveBid {
		return nil, ErrBidNotActive
	}

	auction, err := s.auctionRepo.GetAuctionById(ctx, bid.AuctionId.String())
	if err != nil {
		return nil, err
	}

	if auction.Status == common.Awarded {
		return nil, ErrAuctionAlreadyAwarded
	}

	err = s.bidRepo.WithdrawBid(ctx, bidId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			bid, getErr := s.bidRepo.GetBidById(ctx, bidId)
			if getErr != nil {
				return nil, getErr
			}
			if bid.Status != common.ActiveBid {
				return nil, ErrBidNotActive
			}

			return nil, ErrAuctionAlreadyAwarded
		}

		return nil, err
	}

	// the withdrawn amount may have been the lowest; drop the cached value
	// and let the next read repopulate it
	auctionId := bid.AuctionId.String()
	if err = s.cache.DropLowestAmount(ctx, auctionId); err != nil {
		s.log.WithError(err).WithField("auctionId", auctionId).Warn("failed to drop lowest bid cache")
	}

	bid, err = s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"bidId":     bidId,
		"auctionId": auctionId,
		"sellerId":  actorId,
	}).Info("bid withdrawn")

	return mapBid(bid), nil
}

// GetAuctionBids returns the full ranked board to the buyer; a seller sees
// only their own bid and its rank.
func (s *BidService) GetAuctionBids(ctx context.Context, auctionId string, actorId string, pg *entity.PaginationInput) (*entity.BidListOutputModel, error) {
	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, err
	}

	if auction.BuyerId.String() == actorId {
		bids, err := s.bidRepo.GetAuctionBids(ctx, auctionId, pg)
		if err != nil {
			return nil, err
		}

		return &entity.BidListOutputModel{Bids: mapBids(bids)}, nil
	}

	bid, rank, err := s.bidRepo.GetSellerBid(ctx, auctionId, actorId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	return &entity.BidListOutputModel{OwnBid: mapBid(bid), Rank: rank}, nil
}

func (s *BidService) GetLowestBidAmount(ctx context.Context, auctionId string) (string, error) {
	cached, err := s.cache.GetLowestAmount(ctx, auctionId)
	if err != nil {
		s.log.WithError(err).WithField("auctionId", auctionId).Warn("lowest bid cache read failed")
	}
	if cached != nil {
		return cached.String(), nil
	}

	if _, err = s.auctionRepo.GetAuctionById(ctx, auctionId); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return "", ErrAuctionNotFound
		}

		return "", err
	}

	lowest, err := s.bidRepo.GetLowestActiveAmount(ctx, auctionId)
	if err != nil {
		return "", err
	}
	if lowest == nil {
		return "", ErrBidNotFound
	}

	if err = s.cache.SetLowestAmount(ctx, auctionId, *lowest); err != nil {
		s.log.WithError(err).WithField("auctionId", auctionId).Warn("failed to update lowest bid cache")
	}

	return lowest.String(), nil
}
