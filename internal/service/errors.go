package service

import (
	"errors"
	"fmt"

	"auction-management-api/internal/common"
	"auction-management-api/internal/entity"
)

var (
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrBidNotFound        = errors.New("bid not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrOrderNotFound      = errors.New("purchase order not found")

	ErrNotAuctionOwner = errors.New("only the buyer who owns the auction may perform this action")
	ErrOwnerCanNotBid  = errors.New("the buyer can't bid on their own auction")
	ErrNotBidOwner     = errors.New("only the seller who placed the bid may perform this action")
	ErrNotInvitee      = errors.New("invitation belongs to another seller")

	ErrAuctionNotEnded       = errors.New("auction has not ended yet")
	ErrAuctionAlreadyAwarded = errors.New("auction is already awarded")
	ErrBidNotActive          = errors.New("bid is not active")
	ErrAlreadyInvited        = errors.New("seller is already invited to this auction")
	ErrInvitationAnswered    = errors.New("invitation has already been answered")
	ErrPublicAuctionInvite   = errors.New("invitations apply to private auctions only")
	ErrInviteAfterOpen       = errors.New("invitations are only allowed before the auction opens")

	ErrInvalidDuration    = errors.New("auction duration is outside the allowed range")
	ErrInvalidBidAmount   = errors.New("bid amount must be positive")
	ErrInvalidAwardMethod = errors.New("unknown award method")

	// ErrConflictRetryable - the atomic unit lost a concurrency race after
	// the configured internal retries; the caller may retry the request.
	ErrConflictRetryable = errors.New("concurrent update conflict, please retry")

	// bid decision errors are surfaced to callers unchanged
	ErrAuctionNotOpen         = entity.ErrAuctionNotOpen
	ErrNotInvited             = entity.ErrNotInvited
	ErrBudgetExceeded         = entity.ErrBudgetExceeded
	ErrNotLowerThanCurrentBid = entity.ErrNotLowerThanCurrentBid
	ErrBelowMinDecrement      = entity.ErrBelowMinDecrement
)

// ErrIllegalTransition is the sentinel every IllegalTransitionError unwraps
// to, so callers can match the class without knowing the states.
var ErrIllegalTransition = errors.New("illegal auction state transition")

// IllegalTransitionError carries the current and requested states of a
// refused lifecycle move.
type IllegalTransitionError struct {
	From common.AuctionStatus
	To   common.AuctionStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal auction state transition from %s to %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

func illegalTransition(from, to common.AuctionStatus) error {
	return &IllegalTransitionError{From: from, To: to}
}
