package entity

import (
	"time"

	"auction-management-api/internal/common"

	"github.com/google/uuid"
)

// OutboxEvent is a queued notification written inside the transaction that
// caused it. The notifier dispatches and marks it later; dispatch failures
// never affect the originating transaction.
type OutboxEvent struct {
	Id           uuid.UUID
	EventType    common.EventType
	RecipientId  uuid.UUID
	AuctionId    uuid.UUID
	Payload      string
	CreatedAt    time.Time
	DispatchedAt *time.Time
}
