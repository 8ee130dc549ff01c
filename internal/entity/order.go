package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model, created only by the award transaction
type PurchaseOrder struct {
	Id          uuid.UUID
	Number      string
	AuctionId   uuid.UUID
	BuyerId     uuid.UUID
	SellerId    uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
}

// controller model
type OrderOutputModel struct {
	Id          string `json:"id"`
	Number      string `json:"number"`
	AuctionId   string `json:"auctionId"`
	BuyerId     string `json:"buyerId"`
	SellerId    string `json:"sellerId"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	TotalAmount string `json:"totalAmount"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   string `json:"createdAt"`
}
