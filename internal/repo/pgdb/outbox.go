package pgdb

import (
	"context"
	"database/sql"
	"time"

	"auction-management-api/internal/entity"
	"auction-management-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type OutboxRepo struct {
	*postgres.Postgres
}

func NewOutboxRepo(pgdb *postgres.Postgres) *OutboxRepo {
	return &OutboxRepo{pgdb}
}

func (r *OutboxRepo) GetUndispatchedEvents(ctx context.Context, limit int) ([]entity.OutboxEvent, error) {
	getEventsReq, args, _ := r.SqlBuilder.
		Select("id, event_type, recipient_id, auction_id, payload, created_at, dispatched_at").
		From("outbox_event").
		Where("dispatched_at is null").
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getEventsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]entity.OutboxEvent, 0)
	for rows.Next() {
		var event entity.OutboxEvent
		var dispatchedAt sql.NullTime
		if err := rows.Scan(&event.Id, &event.EventType, &event.RecipientId, &event.AuctionId,
			&event.Payload, &event.CreatedAt, &dispatchedAt); err != nil {
			return events, err
		}
		if dispatchedAt.Valid {
			t := dispatchedAt.Time
			event.DispatchedAt = &t
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return events, err
	}

	return events, nil
}

func (r *OutboxRepo) MarkEventsDispatched(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	markReq, args, _ := r.SqlBuilder.
		Update("outbox_event").
		Set("dispatched_at", at).
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if _, err := r.Database.ExecContext(ctx, markReq, args...); err != nil {
		return translateError(err)
	}

	return nil
}
