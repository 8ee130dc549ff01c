package entity

import (
	"time"

	"auction-management-api/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Bid struct {
	Id             uuid.UUID
	AuctionId      uuid.UUID
	SellerId       uuid.UUID
	Amount         decimal.Decimal
	DeliveryDays   int
	WarrantyMonths int
	Notes          string
	Status         common.BidStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time // acceptance time of the current amount
}

// service + repo input model
type SubmitBidInput struct {
	AuctionId      string
	SellerId       string
	Amount         decimal.Decimal
	DeliveryDays   int
	WarrantyMonths int
	Notes          string
}

// BidReceipt is the outcome of one accepted submission, taken from inside
// the submit transaction.
type BidReceipt struct {
	Bid          Bid
	Extended     bool
	EndDate      time.Time
	LowestAmount decimal.Decimal
}

// controller model
type BidOutputModel struct {
	Id             string `json:"id"`
	AuctionId      string `json:"auctionId"`
	SellerId       string `json:"sellerId"`
	Amount         string `json:"amount"`
	DeliveryDays   int    `json:"deliveryDays"`
	WarrantyMonths int    `json:"warrantyMonths"`
	Notes          string `json:"notes,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// controller model for a submission
type BidReceiptOutputModel struct {
	Bid      BidOutputModel `json:"bid"`
	Extended bool           `json:"auctionExtended"`
	EndDate  string         `json:"auctionEndDate"`
}

// controller model for listing: the buyer sees Bids, a seller sees only
// OwnBid and its rank among active bids
type BidListOutputModel struct {
	Bids   []BidOutputModel `json:"bids,omitempty"`
	OwnBid *BidOutputModel  `json:"ownBid,omitempty"`
	Rank   int              `json:"rank,omitempty"`
}
