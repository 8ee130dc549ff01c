package controller

import (
	"net/http"

	"auction-management-api/internal/entity"
	"auction-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type bidRoutesHandler struct {
	bidService service.Bid
	validate   *validator.Validate
}

func newBidRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *bidRoutesHandler {
	h := &bidRoutesHandler{bidService: services.Bid, validate: v}
	outer.POST("/auctions/:auctionId/bids/new", h.PostBid)
	outer.GET("/auctions/:auctionId/bids/list", h.GetAuctionBids)
	outer.GET("/auctions/:auctionId/lowest_bid", h.GetLowestBid)
	outer.PUT("/bids/:bidId/withdraw", h.WithdrawBid)

	return h
}

type postBidInput struct {
	AuctionId      string `param:"auctionId" validate:"required,uuid"`
	SellerId       string `json:"sellerId" validate:"required,uuid"`
	Amount         string `json:"amount" validate:"required"`
	DeliveryDays   int    `json:"deliveryDays" validate:"gte=0,lte=365"`
	WarrantyMonths int    `json:"warrantyMonths" validate:"gte=0,lte=120"`
	Notes          string `json:"notes" validate:"max=1000"`
}

// /auctions/:auctionId/bids/new
func (h *bidRoutesHandler) PostBid(c echo.Context) error {
	var input postBidInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	input.AuctionId = c.Param("auctionId")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"amount must be a decimal number"}); e != nil {
			return e
		}

		return nil
	}

	model := &entity.SubmitBidInput{
		AuctionId: input.AuctionId, SellerId: input.SellerId, Amount: amount,
		DeliveryDays: input.DeliveryDays, WarrantyMonths: input.WarrantyMonths, Notes: input.Notes,
	}

	receipt, err := h.bidService.SubmitBid(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, receipt); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrOwnerCanNotBid:
		if e := c.JSON(http.StatusForbidden, errorResponse{"The buyer can't bid on their own auction"}); e != nil {
			return e
		}
	case service.ErrNotInvited:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only sellers with an accepted invitation can bid on a private auction"}); e != nil {
			return e
		}
	case service.ErrAuctionNotOpen:
		if e := c.JSON(http.StatusConflict, errorResponse{"Auction is not open for bids"}); e != nil {
			return e
		}
	case service.ErrInvalidBidAmount:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Bid amount must be positive"}); e != nil {
			return e
		}
	case service.ErrBudgetExceeded:
		if e := c.JSON(http.StatusUnprocessableEntity, errorResponse{"Bid amount exceeds the auction budget"}); e != nil {
			return e
		}
	case service.ErrNotLowerThanCurrentBid:
		if e := c.JSON(http.StatusUnprocessableEntity, errorResponse{"Bid amount is not lower than the current lowest bid"}); e != nil {
			return e
		}
	case service.ErrBelowMinDecrement:
		if e := c.JSON(http.StatusUnprocessableEntity, errorResponse{"Bid amount does not undercut the current lowest bid by the required decrement"}); e != nil {
			return e
		}
	case service.ErrConflictRetryable:
		if e := c.JSON(http.StatusConflict, errorResponse{"Concurrent update conflict, please retry"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type getAuctionBidsInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
	Limit     int32  `query:"limit" validate:"gte=0,lte=50"`
	Offset    int32  `query:"offset" validate:"gte=0"`
}

// /auctions/:auctionId/bids/list
func (h *bidRoutesHandler) GetAuctionBids(c echo.Context) error {
	input := getAuctionBidsInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	input.AuctionId = c.Param("auctionId")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	bids, err := h.bidService.GetAuctionBids(c.Request().Context(), input.AuctionId, input.UserId, pg)
	if err == nil {
		if e := c.JSON(http.StatusOK, bids); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrBidNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"You have no bid on this auction"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

// /auctions/:auctionId/lowest_bid
func (h *bidRoutesHandler) GetLowestBid(c echo.Context) error {
	amount, err := h.bidService.GetLowestBidAmount(c.Request().Context(), c.Param("auctionId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, map[string]string{"amount": amount}); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrBidNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"Auction has no active bids"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type withdrawBidInput struct {
	BidId  string `param:"bidId" validate:"required,uuid"`
	UserId string `query:"userId" validate:"required,uuid"`
}

// /bids/:bidId/withdraw
func (h *bidRoutesHandler) WithdrawBid(c echo.Context) error {
	input := withdrawBidInput{BidId: c.Param("bidId"), UserId: c.QueryParam("userId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	bid, err := h.bidService.WithdrawBid(c.Request().Context(), input.BidId, input.UserId)
	if err == nil {
		if e := c.JSON(http.StatusOK, bid); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrBidNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no bid with given id"}); e != nil {
			return e
		}
	case service.ErrNotBidOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the seller who placed the bid may withdraw it"}); e != nil {
			return e
		}
	case service.ErrBidNotActive:
		if e := c.JSON(http.StatusConflict, errorResponse{"Bid is not active"}); e != nil {
			return e
		}
	case service.ErrAuctionAlreadyAwarded:
		if e := c.JSON(http.StatusConflict, errorResponse{"Auction is already awarded"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}
