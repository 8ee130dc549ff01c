package entity

import (
	"time"

	"auction-management-api/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Auction struct {
	Id              uuid.UUID
	Number          string
	BuyerId         uuid.UUID
	Title           string
	Description     string
	Quantity        int
	Unit            string
	Currency        string
	MaxBudget       decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	OriginalEndDate time.Time
	ExtensionsUsed  int
	AwardMethod     common.AwardMethod
	IsPublic        bool
	Status          common.AuctionStatus
	WinningBidId    *uuid.UUID
	CancelReason    string
	CancelledAt     *time.Time
	AwardedAt       *time.Time
	CreatedAt       time.Time
}

// OpenForBids reports whether a bid observed at now may still be accepted.
// The authoritative check runs inside the submit transaction against the
// locked auction row; callers outside the transaction use it advisorily.
func (a *Auction) OpenForBids(now time.Time) bool {
	return a.Status.Open() && now.Before(a.EndDate)
}

// ExtensionPolicy bounds the anti-sniping extension of an auction.
type ExtensionPolicy struct {
	Window        time.Duration
	MaxExtensions int
}

// ShouldExtend reports whether a bid accepted at now triggers an extension.
func (a *Auction) ShouldExtend(now time.Time, p ExtensionPolicy) bool {
	return a.EndDate.Sub(now) < p.Window && a.ExtensionsUsed < p.MaxExtensions
}

// ApplyExtension mutates the auction in memory per the policy and reports
// whether an extension happened. Persisting the change is the caller's job,
// inside the same atomic unit as the bid write.
func (a *Auction) ApplyExtension(now time.Time, p ExtensionPolicy) bool {
	if !a.ShouldExtend(now, p) {
		return false
	}

	a.EndDate = a.EndDate.Add(p.Window)
	a.ExtensionsUsed++
	a.Status = common.Extended

	return true
}

// service + repo input model
type CreateAuctionInput struct {
	BuyerId     string
	Title       string
	Description string
	Quantity    int
	Unit        string
	Currency    string
	MaxBudget   decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	AwardMethod common.AwardMethod
	IsPublic    bool
	// Number, Status (Draft), OriginalEndDate and timestamps are set by the repo
}

// repo input for the award atomic unit
type AwardInput struct {
	AuctionId string
	BuyerId   string
	BidId     string
	Notes     string
	AwardedAt time.Time
}

// AwardResult is everything the award transaction produced.
type AwardResult struct {
	Auction    Auction
	WinningBid Bid
	Rejected   int
	Order      PurchaseOrder
}

// controller model
type AuctionOutputModel struct {
	Id              string  `json:"id"`
	Number          string  `json:"number"`
	BuyerId         string  `json:"buyerId"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Quantity        int     `json:"quantity"`
	Unit            string  `json:"unit"`
	Currency        string  `json:"currency"`
	MaxBudget       string  `json:"maxBudget"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	OriginalEndDate string  `json:"originalEndDate"`
	ExtensionsUsed  int     `json:"extensionsUsed"`
	AwardMethod     string  `json:"awardMethod"`
	IsPublic        bool    `json:"isPublic"`
	Status          string  `json:"status"`
	WinningBidId    *string `json:"winningBidId,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// controller model for a completed award
type AwardOutputModel struct {
	Auction    AuctionOutputModel `json:"auction"`
	WinningBid BidOutputModel     `json:"winningBid"`
	Rejected   int                `json:"rejectedBids"`
	Order      OrderOutputModel   `json:"order"`
}
