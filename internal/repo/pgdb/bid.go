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
	"github.com/shopspring/decimal"
)

const bidColumns = "id, auction_id, seller_id, amount, delivery_days, warranty_months, notes, status, created_at, updated_at"

type BidRepo struct {
	*postgres.Postgres
}

func NewBidRepo(pgdb *postgres.Postgres) *BidRepo {
	return &BidRepo{pgdb}
}

func scanBid(row rowScanner) (*entity.Bid, error) {
	var b entity.Bid
	err := row.Scan(&b.Id, &b.AuctionId, &b.SellerId, &b.Amount, &b.DeliveryDays,
		&b.WarrantyMonths, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// SubmitBid is the single atomic read-validate-write unit for one submission.
// The SELECT ... FOR UPDATE on the auction row serializes every writer that
// touches this auction's bid set or end time, so the rule evaluation below
// always sees the latest committed state. Two sellers racing to undercut the
// same lowest bid queue on this lock; the second one re-validates against the
// first one's write and is rejected.
func (r *BidRepo) SubmitBid(ctx context.Context, input *entity.SubmitBidInput, policy entity.BidPolicy) (*entity.BidReceipt, error) {
	auctionId, err := uuid.Parse(input.AuctionId)
	if err != nil {
		return nil, err
	}
	sellerId, err := uuid.Parse(input.SellerId)
	if err != nil {
		return nil, err
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lockAuctionReq, args, _ := r.SqlBuilder.
		Select(auctionColumns).
		From("auction").
		Where("id = ?", auctionId).
		Suffix("FOR UPDATE").
		RunWith(tx).
		ToSql()

	auction, err := scanAuction(tx.QueryRowContext(ctx, lockAuctionReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, translateError(err)
	}

	now := time.Now().UTC()

	invited := auction.IsPublic
	if !auction.IsPublic {
		invited, err = hasAcceptedInvitationTx(ctx, r.Postgres, tx, auctionId, sellerId)
		if err != nil {
			return nil, translateError(err)
		}
	}

	lowestCompetitor, err := lowestActiveAmountTx(ctx, r.Postgres, tx, auctionId, &sellerId)
	if err != nil {
		return nil, translateError(err)
	}

	if err = entity.EvaluateBid(auction, input.Amount, lowestCompetitor, invited, now, policy); err != nil {
		return nil, err
	}

	upsertReq, args, _ := r.SqlBuilder.
		Insert("bid").
		Columns("id", "auction_id", "seller_id", "amount", "delivery_days", "warranty_months",
			"notes", "status", "created_at", "updated_at").
		Values(uuid.New(), auctionId, sellerId, input.Amount, input.DeliveryDays,
			input.WarrantyMonths, input.Notes, common.ActiveBid, now, now).
		Suffix("ON CONFLICT (auction_id, seller_id) DO UPDATE SET "+
			"amount = EXCLUDED.amount, delivery_days = EXCLUDED.delivery_days, "+
			"warranty_months = EXCLUDED.warranty_months, notes = EXCLUDED.notes, "+
			"status = EXCLUDED.status, updated_at = EXCLUDED.updated_at "+
			"RETURNING id, created_at").
		RunWith(tx).
		ToSql()

	bid := entity.Bid{
		AuctionId:      auctionId,
		SellerId:       sellerId,
		Amount:         input.Amount,
		DeliveryDays:   input.DeliveryDays,
		WarrantyMonths: input.WarrantyMonths,
		Notes:          input.Notes,
		Status:         common.ActiveBid,
		UpdatedAt:      now,
	}
	if err = tx.QueryRowContext(ctx, upsertReq, args...).Scan(&bid.Id, &bid.CreatedAt); err != nil {
		return nil, translateError(err)
	}

	extended := auction.ApplyExtension(now, policy.Extension)
	if extended {
		extendReq, args, _ := r.SqlBuilder.
			Update("auction").
			Set("end_date", auction.EndDate).
			Set("extensions_used", auction.ExtensionsUsed).
			Set("status", auction.Status).
			Where("id = ?", auctionId).
			RunWith(tx).
			ToSql()

		if _, err = tx.ExecContext(ctx, extendReq, args...); err != nil {
			return nil, translateError(err)
		}
	}

	lowest, err := lowestActiveAmountTx(ctx, r.Postgres, tx, auctionId, nil)
	if err != nil {
		return nil, translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return nil, translateError(err)
	}

	receipt := entity.BidReceipt{
		Bid:      bid,
		Extended: extended,
		EndDate:  auction.EndDate,
	}
	if lowest != nil {
		receipt.LowestAmount = *lowest
	}

	return &receipt, nil
}

func hasAcceptedInvitationTx(ctx context.Context, p *postgres.Postgres, tx *sql.Tx, auctionId, sellerId uuid.UUID) (bool, error) {
	invitedReq, args, _ := p.SqlBuilder.
		Select("count(*)").
		From("invitation").
		Where("auction_id = ?", auctionId).
		Where("seller_id = ?", sellerId).
		Where("status = ?", common.AcceptedInvitation).
		RunWith(tx).
		ToSql()

	var cnt int
	if err := tx.QueryRowContext(ctx, invitedReq, args...).Scan(&cnt); err != nil {
		return false, err
	}

	return cnt > 0, nil
}

// lowestActiveAmountTx returns the lowest Active amount on the auction,
// excluding excludeSeller's own bid when given. Nil when there is none.
func lowestActiveAmountTx(ctx context.Context, p *postgres.Postgres, tx *sql.Tx, auctionId uuid.UUID, excludeSeller *uuid.UUID) (*decimal.Decimal, error) {
	builder := p.SqlBuilder.
		Select("min(amount)").
		From("bid").
		Where("auction_id = ?", auctionId).
		Where("status = ?", common.ActiveBid)
	if excludeSeller != nil {
		builder = builder.Where("seller_id <> ?", *excludeSeller)
	}

	lowestReq, args, _ := builder.RunWith(tx).ToSql()

	var lowest decimal.NullDecimal
	if err := tx.QueryRowContext(ctx, lowestReq, args...).Scan(&lowest); err != nil {
		return nil, err
	}
	if !lowest.Valid {
		return nil, nil
	}

	return &lowest.Decimal, nil
}

func (r *BidRepo) GetBidById(ctx context.Context, id string) (*entity.Bid, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getBidReq, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bid").
		Where("id = ?", uuidForm).
		ToSql()

	bid, err := scanBid(r.Database.QueryRowContext(ctx, getBidReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return bid, nil
}

func (r *BidRepo) WithdrawBid(ctx context.Context, bidId string) error {
	uuidForm, err := uuid.Parse(bidId)
	if err != nil {
		return err
	}

	withdrawReq, args, _ := r.SqlBuilder.
		Update("bid").
		Set("status", common.WithdrawnBid).
		Set("updated_at", time.Now().UTC()).
		Where("id = ?", uuidForm).
		Where("status = ?", common.ActiveBid).
		Where("not exists (select 1 from auction where auction.id = bid.auction_id and auction.status = ?)", common.Awarded).
		ToSql()

	result, err := r.Database.ExecContext(ctx, withdrawReq, args...)
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

func (r *BidRepo) GetAuctionBids(ctx context.Context, auctionId string, pg *entity.PaginationInput) ([]entity.Bid, error) {
	uuidForm, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, err
	}

	getBidsReq, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bid").
		Where("auction_id = ?", uuidForm).
		OrderBy("amount ASC", "updated_at ASC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getBidsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]entity.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return bids, err
		}
		bids = append(bids, *bid)
	}
	if err = rows.Err(); err != nil {
		return bids, err
	}

	return bids, nil
}

func (r *BidRepo) GetSellerBid(ctx context.Context, auctionId string, sellerId string) (*entity.Bid, int, error) {
	auctionUuid, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, 0, err
	}
	sellerUuid, err := uuid.Parse(sellerId)
	if err != nil {
		return nil, 0, err
	}

	getBidReq, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bid").
		Where("auction_id = ?", auctionUuid).
		Where("seller_id = ?", sellerUuid).
		ToSql()

	bid, err := scanBid(r.Database.QueryRowContext(ctx, getBidReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, repo_errors.ErrNotFound
		}

		return nil, 0, err
	}

	if bid.Status != common.ActiveBid {
		return bid, 0, nil
	}

	rankReq, args, _ := r.SqlBuilder.
		Select("count(*) + 1").
		From("bid").
		Where("auction_id = ?", auctionUuid).
		Where("status = ?", common.ActiveBid).
		Where("(amount < ? or (amount = ? and updated_at < ?))", bid.Amount, bid.Amount, bid.UpdatedAt).
		ToSql()

	var rank int
	if err = r.Database.QueryRowContext(ctx, rankReq, args...).Scan(&rank); err != nil {
		return bid, 0, err
	}

	return bid, rank, nil
}

func (r *BidRepo) GetLowestActiveAmount(ctx context.Context, auctionId string) (*decimal.Decimal, error) {
	uuidForm, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, err
	}

	lowestReq, args, _ := r.SqlBuilder.
		Select("min(amount)").
		From("bid").
		Where("auction_id = ?", uuidForm).
		Where("status = ?", common.ActiveBid).
		ToSql()

	var lowest decimal.NullDecimal
	if err = r.Database.QueryRowContext(ctx, lowestReq, args...).Scan(&lowest); err != nil {
		return nil, err
	}
	if !lowest.Valid {
		return nil, nil
	}

	return &lowest.Decimal, nil
}
