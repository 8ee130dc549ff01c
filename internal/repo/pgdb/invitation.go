package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo/repo_errors"
	"auction-management-api/pkg/postgres"

	"github.com/google/uuid"
)

const invitationColumns = "id, auction_id, seller_id, status, created_at, responded_at"

type InvitationRepo struct {
	*postgres.Postgres
}

func NewInvitationRepo(pgdb *postgres.Postgres) *InvitationRepo {
	return &InvitationRepo{pgdb}
}

func scanInvitation(row rowScanner) (*entity.Invitation, error) {
	var inv entity.Invitation
	var respondedAt sql.NullTime

	err := row.Scan(&inv.Id, &inv.AuctionId, &inv.SellerId, &inv.Status, &inv.CreatedAt, &respondedAt)
	if err != nil {
		return nil, err
	}

	if respondedAt.Valid {
		t := respondedAt.Time
		inv.RespondedAt = &t
	}

	return &inv, nil
}

func (r *InvitationRepo) CreateInvitation(ctx context.Context, input *entity.CreateInvitationInput) (uuid.UUID, error) {
	auctionId, err := uuid.Parse(input.AuctionId)
	if err != nil {
		return uuid.Nil, err
	}
	sellerId, err := uuid.Parse(input.SellerId)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	createInvitationReq, args, _ := r.SqlBuilder.
		Insert("invitation").
		Columns("id", "auction_id", "seller_id", "status", "created_at").
		Values(id, auctionId, sellerId, common.PendingInvitation, time.Now().UTC()).
		ToSql()

	if _, err = r.Database.ExecContext(ctx, createInvitationReq, args...); err != nil {
		return uuid.Nil, translateError(err)
	}

	return id, nil
}

func (r *InvitationRepo) GetInvitationById(ctx context.Context, id string) (*entity.Invitation, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getInvitationReq, args, _ := r.SqlBuilder.
		Select(invitationColumns).
		From("invitation").
		Where("id = ?", uuidForm).
		ToSql()

	invitation, err := scanInvitation(r.Database.QueryRowContext(ctx, getInvitationReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return invitation, nil
}

func (r *InvitationRepo) RespondInvitation(ctx context.Context, id string, status common.InvitationStatus, respondedAt time.Time) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	respondReq, args, _ := r.SqlBuilder.
		Update("invitation").
		Set("status", status).
		Set("responded_at", respondedAt).
		Where("id = ?", uuidForm).
		Where("status = ?", common.PendingInvitation).
		ToSql()

	result, err := r.Database.ExecContext(ctx, respondReq, args...)
	if err != nil {
		return translateError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrConflict
	}

	return nil
}

func (r *InvitationRepo) HasAcceptedInvitation(ctx context.Context, auctionId string, sellerId string) (bool, error) {
	auctionUuid, err := uuid.Parse(auctionId)
	if err != nil {
		return false, err
	}
	sellerUuid, err := uuid.Parse(sellerId)
	if err != nil {
		return false, err
	}

	invitedReq, args, _ := r.SqlBuilder.
		Select("count(*)").
		From("invitation").
		Where("auction_id = ?", auctionUuid).
		Where("seller_id = ?", sellerUuid).
		Where("status = ?", common.AcceptedInvitation).
		ToSql()

	var cnt int
	if err = r.Database.QueryRowContext(ctx, invitedReq, args...).Scan(&cnt); err != nil {
		return false, err
	}

	return cnt > 0, nil
}

func (r *InvitationRepo) GetAuctionInvitations(ctx context.Context, auctionId string) ([]entity.Invitation, error) {
	uuidForm, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, err
	}

	getInvitationsReq, args, _ := r.SqlBuilder.
		Select(invitationColumns).
		From("invitation").
		Where("auction_id = ?", uuidForm).
		OrderBy("created_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getInvitationsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invitations := make([]entity.Invitation, 0)
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return invitations, err
		}
		invitations = append(invitations, *invitation)
	}
	if err = rows.Err(); err != nil {
		return invitations, err
	}

	return invitations, nil
}
