package entity

import (
	"time"

	"auction-management-api/internal/common"

	"github.com/google/uuid"
)

// db model
type Invitation struct {
	Id          uuid.UUID
	AuctionId   uuid.UUID
	SellerId    uuid.UUID
	Status      common.InvitationStatus
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// service + repo input model
type CreateInvitationInput struct {
	AuctionId string
	SellerId  string
}

// controller model
type InvitationOutputModel struct {
	Id          string `json:"id"`
	AuctionId   string `json:"auctionId"`
	SellerId    string `json:"sellerId"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	RespondedAt string `json:"respondedAt,omitempty"`
}
