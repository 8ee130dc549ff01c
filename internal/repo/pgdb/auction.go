package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo/repo_errors"
	"auction-management-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const auctionColumns = "id, number, buyer_id, title, description, quantity, unit, currency, max_budget, " +
	"start_date, end_date, original_end_date, extensions_used, award_method, is_public, status, " +
	"winning_bid_id, cancel_reason, cancelled_at, awarded_at, created_at"

type AuctionRepo struct {
	*postgres.Postgres
}

func NewAuctionRepo(pgdb *postgres.Postgres) *AuctionRepo {
	return &AuctionRepo{pgdb}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuction(row rowScanner) (*entity.Auction, error) {
	var a entity.Auction
	var winningBidId uuid.NullUUID
	var cancelReason sql.NullString
	var cancelledAt, awardedAt sql.NullTime

	err := row.Scan(&a.Id, &a.Number, &a.BuyerId, &a.Title, &a.Description, &a.Quantity, &a.Unit,
		&a.Currency, &a.MaxBudget, &a.StartDate, &a.EndDate, &a.OriginalEndDate, &a.ExtensionsUsed,
		&a.AwardMethod, &a.IsPublic, &a.Status, &winningBidId, &cancelReason, &cancelledAt,
		&awardedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if winningBidId.Valid {
		a.WinningBidId = &winningBidId.UUID
	}
	if cancelReason.Valid {
		a.CancelReason = cancelReason.String
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		a.CancelledAt = &t
	}
	if awardedAt.Valid {
		t := awardedAt.Time
		a.AwardedAt = &t
	}

	return &a, nil
}

func (r *AuctionRepo) CreateAuction(ctx context.Context, input *entity.CreateAuctionInput) (uuid.UUID, error) {
	buyerId, err := uuid.Parse(input.BuyerId)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	now := time.Now().UTC()

	createAuctionReq, args, _ := r.SqlBuilder.
		Insert("auction").
		Columns("id", "number", "buyer_id", "title", "description", "quantity", "unit", "currency",
			"max_budget", "start_date", "end_date", "original_end_date", "extensions_used",
			"award_method", "is_public", "status", "created_at").
		Values(id, documentNumber("RA", id, now), buyerId, input.Title, input.Description,
			input.Quantity, input.Unit, input.Currency, input.MaxBudget, input.StartDate,
			input.EndDate, input.EndDate, 0, input.AwardMethod, input.IsPublic, common.Draft, now).
		ToSql()

	if _, err = r.Database.ExecContext(ctx, createAuctionReq, args...); err != nil {
		return uuid.Nil, translateError(err)
	}

	return id, nil
}

func (r *AuctionRepo) GetAuctionById(ctx context.Context, id string) (*entity.Auction, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}

	getAuctionReq, args, _ := r.SqlBuilder.
		Select(auctionColumns).
		From("auction").
		Where("id = ?", uuidForm).
		ToSql()

	auction, err := scanAuction(r.Database.QueryRowContext(ctx, getAuctionReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return auction, nil
}

func (r *AuctionRepo) GetPublishedAuctions(ctx context.Context, pg *entity.PaginationInput) ([]entity.Auction, error) {
	getAuctionsReq, args, _ := r.SqlBuilder.
		Select(auctionColumns).
		From("auction").
		Where("is_public = ?", true).
		Where(squirrel.Eq{"status": []common.AuctionStatus{common.Published, common.Active, common.Extended}}).
		OrderBy("end_date ASC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getAuctionsReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]entity.Auction, 0)
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return auctions, err
		}
		auctions = append(auctions, *auction)
	}
	if err = rows.Err(); err != nil {
		return auctions, err
	}

	return auctions, nil
}

func (r *AuctionRepo) PublishAuction(ctx context.Context, id string, newStatus common.AuctionStatus) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	publishReq, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", newStatus).
		Where("id = ?", uuidForm).
		Where("status = ?", common.Draft).
		Suffix("RETURNING is_public, number").
		RunWith(tx).
		ToSql()

	var isPublic bool
	var number string
	if err = tx.QueryRowContext(ctx, publishReq, args...).Scan(&isPublic, &number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repo_errors.ErrConflict
		}

		return translateError(err)
	}

	if !isPublic {
		if err = queueInvitationEvents(ctx, r.Postgres, tx, uuidForm, number); err != nil {
			return translateError(err)
		}
	}

	return tx.Commit()
}

func queueInvitationEvents(ctx context.Context, p *postgres.Postgres, tx *sql.Tx, auctionId uuid.UUID, number string) error {
	getInviteesReq, args, _ := p.SqlBuilder.
		Select("seller_id").
		From("invitation").
		Where("auction_id = ?", auctionId).
		RunWith(tx).
		ToSql()

	rows, err := tx.QueryContext(ctx, getInviteesReq, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	sellers := make([]uuid.UUID, 0)
	for rows.Next() {
		var sellerId uuid.UUID
		if err := rows.Scan(&sellerId); err != nil {
			return err
		}
		sellers = append(sellers, sellerId)
	}
	if err = rows.Err(); err != nil {
		return err
	}

	payload := fmt.Sprintf(`{"auctionNumber":%q}`, number)
	for _, sellerId := range sellers {
		if err = queueEvent(ctx, p, tx, common.InvitedEvent, sellerId, auctionId, payload); err != nil {
			return err
		}
	}

	return nil
}

func queueEvent(ctx context.Context, p *postgres.Postgres, tx *sql.Tx, eventType common.EventType, recipientId, auctionId uuid.UUID, payload string) error {
	queueReq, args, _ := p.SqlBuilder.
		Insert("outbox_event").
		Columns("id", "event_type", "recipient_id", "auction_id", "payload", "created_at").
		Values(uuid.New(), eventType, recipientId, auctionId, payload, time.Now().UTC()).
		RunWith(tx).
		ToSql()

	_, err := tx.ExecContext(ctx, queueReq, args...)

	return err
}

func (r *AuctionRepo) CancelAuction(ctx context.Context, id string, reason string, cancelledAt time.Time) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return err
	}

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cancelReq, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", common.Cancelled).
		Set("cancel_reason", reason).
		Set("cancelled_at", cancelledAt).
		Where("id = ?", uuidForm).
		Where(squirrel.NotEq{"status": []common.AuctionStatus{common.Awarded, common.NoBids, common.Cancelled}}).
		Suffix("RETURNING number").
		RunWith(tx).
		ToSql()

	var number string
	if err = tx.QueryRowContext(ctx, cancelReq, args...).Scan(&number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repo_errors.ErrConflict
		}

		return translateError(err)
	}

	getBiddersReq, args, _ := r.SqlBuilder.
		Select("seller_id").
		From("bid").
		Where("auction_id = ?", uuidForm).
		Where("status = ?", common.ActiveBid).
		RunWith(tx).
		ToSql()

	rows, err := tx.QueryContext(ctx, getBiddersReq, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	bidders := make([]uuid.UUID, 0)
	for rows.Next() {
		var sellerId uuid.UUID
		if err := rows.Scan(&sellerId); err != nil {
			return err
		}
		bidders = append(bidders, sellerId)
	}
	if err = rows.Err(); err != nil {
		return err
	}

	payload := fmt.Sprintf(`{"auctionNumber":%q,"reason":%q}`, number, reason)
	for _, sellerId := range bidders {
		if err = queueEvent(ctx, r.Postgres, tx, common.CancelledEvent, sellerId, uuidForm, payload); err != nil {
			return translateError(err)
		}
	}

	return tx.Commit()
}

func (r *AuctionRepo) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	activateReq, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", common.Active).
		Where("status = ?", common.Published).
		Where("start_date <= ?", now).
		ToSql()

	result, err := r.Database.ExecContext(ctx, activateReq, args...)
	if err != nil {
		return 0, translateError(err)
	}

	return result.RowsAffected()
}

func (r *AuctionRepo) CloseExpired(ctx context.Context, now time.Time) (int64, int64, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	hasActiveBid := "exists (select 1 from bid where bid.auction_id = auction.id and bid.status = ?)"

	endReq, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", common.Ended).
		Where(squirrel.Eq{"status": []common.AuctionStatus{common.Active, common.Extended}}).
		Where("end_date <= ?", now).
		Where(hasActiveBid, common.ActiveBid).
		RunWith(tx).
		ToSql()

	endResult, err := tx.ExecContext(ctx, endReq, args...)
	if err != nil {
		return 0, 0, translateError(err)
	}

	noBidsReq, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", common.NoBids).
		Where(squirrel.Eq{"status": []common.AuctionStatus{common.Active, common.Extended}}).
		Where("end_date <= ?", now).
		Where("not "+hasActiveBid, common.ActiveBid).
		RunWith(tx).
		ToSql()

	noBidsResult, err := tx.ExecContext(ctx, noBidsReq, args...)
	if err != nil {
		return 0, 0, translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, translateError(err)
	}

	ended, err := endResult.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	noBids, err := noBidsResult.RowsAffected()
	if err != nil {
		return ended, 0, err
	}

	return ended, noBids, nil
}

// AwardAuction is the terminal atomic unit. The auction row lock is the
// serialization point: a concurrent award or sweep either waits here or has
// already moved the status, in which case the conditional checks fail and
// everything rolls back.
func (r *AuctionRepo) AwardAuction(ctx context.Context, input *entity.AwardInput) (*entity.AwardResult, error) {
	auctionId, err := uuid.Parse(input.AuctionId)
	if err != nil {
		return nil, err
	}
	bidId, err := uuid.Parse(input.BidId)
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

	if auction.Status != common.Ended {
		return nil, repo_errors.ErrConflict
	}

	lockBidReq, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bid").
		Where("id = ?", bidId).
		Where("auction_id = ?", auctionId).
		Suffix("FOR UPDATE").
		RunWith(tx).
		ToSql()

	winner, err := scanBid(tx.QueryRowContext(ctx, lockBidReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, translateError(err)
	}

	if winner.Status != common.ActiveBid {
		return nil, repo_errors.ErrConflict
	}

	awardBidReq, args, _ := r.SqlBuilder.
		Update("bid").
		Set("status", common.AwardedBid).
		Set("updated_at", input.AwardedAt).
		Where("id = ?", bidId).
		RunWith(tx).
		ToSql()

	if _, err = tx.ExecContext(ctx, awardBidReq, args...); err != nil {
		return nil, translateError(err)
	}

	rejectReq, args, _ := r.SqlBuilder.
		Update("bid").
		Set("status", common.RejectedBid).
		Set("updated_at", input.AwardedAt).
		Where("auction_id = ?", auctionId).
		Where("status = ?", common.ActiveBid).
		Where("id <> ?", bidId).
		Suffix("RETURNING seller_id").
		RunWith(tx).
		ToSql()

	rows, err := tx.QueryContext(ctx, rejectReq, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	rejected := make([]uuid.UUID, 0)
	for rows.Next() {
		var sellerId uuid.UUID
		if err := rows.Scan(&sellerId); err != nil {
			return nil, err
		}
		rejected = append(rejected, sellerId)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	awardAuctionReq, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", common.Awarded).
		Set("winning_bid_id", bidId).
		Set("awarded_at", input.AwardedAt).
		Where("id = ?", auctionId).
		RunWith(tx).
		ToSql()

	if _, err = tx.ExecContext(ctx, awardAuctionReq, args...); err != nil {
		return nil, translateError(err)
	}

	order, err := createOrder(ctx, r.Postgres, tx, auction, winner, input)
	if err != nil {
		return nil, translateError(err)
	}

	payload := fmt.Sprintf(`{"auctionNumber":%q,"orderNumber":%q}`, auction.Number, order.Number)
	if err = queueEvent(ctx, r.Postgres, tx, common.WonEvent, winner.SellerId, auctionId, payload); err != nil {
		return nil, translateError(err)
	}

	lostPayload := fmt.Sprintf(`{"auctionNumber":%q}`, auction.Number)
	for _, sellerId := range rejected {
		if err = queueEvent(ctx, r.Postgres, tx, common.LostEvent, sellerId, auctionId, lostPayload); err != nil {
			return nil, translateError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, translateError(err)
	}

	auction.Status = common.Awarded
	auction.WinningBidId = &winner.Id
	auction.AwardedAt = &input.AwardedAt
	winner.Status = common.AwardedBid
	winner.UpdatedAt = input.AwardedAt

	return &entity.AwardResult{
		Auction:    *auction,
		WinningBid: *winner,
		Rejected:   len(rejected),
		Order:      *order,
	}, nil
}

// createOrder materializes the purchase order inside the award transaction.
// This is the order-management collaborator contract: if the insert fails,
// the whole award rolls back and the auction stays Ended.
func createOrder(ctx context.Context, p *postgres.Postgres, tx *sql.Tx, auction *entity.Auction, winner *entity.Bid, input *entity.AwardInput) (*entity.PurchaseOrder, error) {
	order := entity.PurchaseOrder{
		Id:          uuid.New(),
		AuctionId:   auction.Id,
		BuyerId:     auction.BuyerId,
		SellerId:    winner.SellerId,
		Quantity:    auction.Quantity,
		UnitPrice:   winner.Amount,
		TotalAmount: winner.Amount.Mul(decimal.NewFromInt(int64(auction.Quantity))),
		Notes:       input.Notes,
		CreatedAt:   input.AwardedAt,
	}
	order.Number = documentNumber("PO", order.Id, input.AwardedAt)

	createOrderReq, args, _ := p.SqlBuilder.
		Insert("purchase_order").
		Columns("id", "number", "auction_id", "buyer_id", "seller_id", "quantity", "unit_price",
			"total_amount", "notes", "created_at").
		Values(order.Id, order.Number, order.AuctionId, order.BuyerId, order.SellerId,
			order.Quantity, order.UnitPrice, order.TotalAmount, order.Notes, order.CreatedAt).
		RunWith(tx).
		ToSql()

	if _, err := tx.ExecContext(ctx, createOrderReq, args...); err != nil {
		return nil, err
	}

	return &order, nil
}
