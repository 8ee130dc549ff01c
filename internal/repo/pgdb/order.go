package pgdb

import (
	"context"
	"database/sql"
	"errors"

	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo/repo_errors"
	"auction-management-api/pkg/postgres"

	"github.com/google/uuid"
)

type OrderRepo struct {
	*postgres.Postgres
}

func NewOrderRepo(pgdb *postgres.Postgres) *OrderRepo {
	return &OrderRepo{pgdb}
}

func (r *OrderRepo) GetOrderByAuctionId(ctx context.Context, auctionId string) (*entity.PurchaseOrder, error) {
	uuidForm, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, err
	}

	getOrderReq, args, _ := r.SqlBuilder.
		Select("id, number, auction_id, buyer_id, seller_id, quantity, unit_price, total_amount, notes, created_at").
		From("purchase_order").
		Where("auction_id = ?", uuidForm).
		ToSql()

	var order entity.PurchaseOrder
	err = r.Database.QueryRowContext(ctx, getOrderReq, args...).Scan(
		&order.Id, &order.Number, &order.AuctionId, &order.BuyerId, &order.SellerId,
		&order.Quantity, &order.UnitPrice, &order.TotalAmount, &order.Notes, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &order, nil
}
