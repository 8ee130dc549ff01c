package service

import (
	"time"

	"auction-management-api/internal/entity"
)

func mapAuction(a *entity.Auction) *entity.AuctionOutputModel {
	out := &entity.AuctionOutputModel{
		Id:              a.Id.String(),
		Number:          a.Number,
		BuyerId:         a.BuyerId.String(),
		Title:           a.Title,
		Description:     a.Description,
		Quantity:        a.Quantity,
		Unit:            a.Unit,
		Currency:        a.Currency,
		MaxBudget:       a.MaxBudget.String(),
		StartDate:       a.StartDate.Format(time.RFC3339),
		EndDate:         a.EndDate.Format(time.RFC3339),
		OriginalEndDate: a.OriginalEndDate.Format(time.RFC3339),
		ExtensionsUsed:  a.ExtensionsUsed,
		AwardMethod:     string(a.AwardMethod),
		IsPublic:        a.IsPublic,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
	if a.WinningBidId != nil {
		id := a.WinningBidId.String()
		out.WinningBidId = &id
	}

	return out
}

func mapAuctions(auctions []entity.Auction) []entity.AuctionOutputModel {
	s := make([]entity.AuctionOutputModel, 0)
	for _, a := range auctions {
		s = append(s, *mapAuction(&a))
	}

	return s
}

func mapBid(b *entity.Bid) *entity.BidOutputModel {
	return &entity.BidOutputModel{
		Id:             b.Id.String(),
		AuctionId:      b.AuctionId.String(),
		SellerId:       b.SellerId.String(),
		Amount:         b.Amount.String(),
		DeliveryDays:   b.DeliveryDays,
		WarrantyMonths: b.WarrantyMonths,
		Notes:          b.Notes,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
}

func mapBids(bids []entity.Bid) []entity.BidOutputModel {
	s := make([]entity.BidOutputModel, 0)
	for _, b := range bids {
		s = append(s, *mapBid(&b))
	}

	return s
}

func mapReceipt(r *entity.BidReceipt) *entity.BidReceiptOutputModel {
	return &entity.BidReceiptOutputModel{
		Bid:      *mapBid(&r.Bid),
		Extended: r.Extended,
		EndDate:  r.EndDate.Format(time.RFC3339),
	}
}

func mapInvitation(inv *entity.Invitation) *entity.InvitationOutputModel {
	out := &entity.InvitationOutputModel{
		Id:        inv.Id.String(),
		AuctionId: inv.AuctionId.String(),
		SellerId:  inv.SellerId.String(),
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.RespondedAt != nil {
		out.RespondedAt = inv.RespondedAt.Format(time.RFC3339)
	}

	return out
}

func mapInvitations(invitations []entity.Invitation) []entity.InvitationOutputModel {
	s := make([]entity.InvitationOutputModel, 0)
	for _, inv := range invitations {
		s = append(s, *mapInvitation(&inv))
	}

	return s
}

func mapOrder(o *entity.PurchaseOrder) *entity.OrderOutputModel {
	return &entity.OrderOutputModel{
		Id:          o.Id.String(),
		Number:      o.Number,
		AuctionId:   o.AuctionId.String(),
		BuyerId:     o.BuyerId.String(),
		SellerId:    o.SellerId.String(),
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice.String(),
		TotalAmount: o.TotalAmount.String(),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}

func mapAward(res *entity.AwardResult) *entity.AwardOutputModel {
	return &entity.AwardOutputModel{
		Auction:    *mapAuction(&res.Auction),
		WinningBid: *mapBid(&res.WinningBid),
		Rejected:   res.Rejected,
		Order:      *mapOrder(&res.Order),
	}
}
