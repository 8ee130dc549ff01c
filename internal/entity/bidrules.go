package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Bid decision errors. They are what a seller gets back when a submission is
// turned down for business reasons.
var (
	ErrAuctionNotOpen         = errors.New("auction is not open for bids")
	ErrNotInvited             = errors.New("seller holds no accepted invitation for this auction")
	ErrBudgetExceeded         = errors.New("bid amount exceeds the auction budget")
	ErrNotLowerThanCurrentBid = errors.New("bid amount is not lower than the current lowest bid")
	ErrBelowMinDecrement      = errors.New("bid amount does not undercut the current lowest bid by the required decrement")
)

// BidPolicy is the configured rule set applied to every submission.
type BidPolicy struct {
	Extension           ExtensionPolicy
	MinDecrementPercent float64
	RetryAttempts       int
}

// MinDecrement returns the multiplier a new bid must stay at or under,
// relative to the current lowest competitor amount.
func (p BidPolicy) MinDecrement() decimal.Decimal {
	pct := decimal.NewFromFloat(p.MinDecrementPercent)
	return decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
}

// EvaluateBid decides accept/reject for a proposed amount against a snapshot
// of the auction. lowestCompetitor is the lowest Active amount held by any
// OTHER seller, nil when there is none; a seller re-bidding against their own
// standing bid is compared only against competitors.
//
// The decision is advisory when taken outside the submit transaction; the
// repository re-runs it against the locked auction state before writing.
func EvaluateBid(a *Auction, amount decimal.Decimal, lowestCompetitor *decimal.Decimal, invited bool, now time.Time, policy BidPolicy) error {
	if !a.OpenForBids(now) {
		return ErrAuctionNotOpen
	}

	if !a.IsPublic && !invited {
		return ErrNotInvited
	}

	if amount.GreaterThan(a.MaxBudget) {
		return ErrBudgetExceeded
	}

	if lowestCompetitor == nil {
		return nil
	}

	if amount.GreaterThanOrEqual(*lowestCompetitor) {
		return ErrNotLowerThanCurrentBid
	}

	if policy.MinDecrementPercent > 0 {
		ceiling := lowestCompetitor.Mul(policy.MinDecrement())
		if amount.GreaterThan(ceiling) {
			return ErrBelowMinDecrement
		}
	}

	return nil
}
