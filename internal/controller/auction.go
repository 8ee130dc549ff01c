package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type auctionRoutesHandler struct {
	auctionService service.Auction
	validate       *validator.Validate
}

func newAuctionRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *auctionRoutesHandler {
	h := &auctionRoutesHandler{auctionService: services.Auction, validate: v}
	outer.POST("/auctions/new", h.PostAuction)
	outer.GET("/auctions", h.GetPublishedAuctions)
	outer.GET("/auctions/:auctionId", h.GetAuction)
	outer.GET("/auctions/:auctionId/status", h.GetAuctionStatus)

	outer.PUT("/auctions/:auctionId/publish", h.PublishAuction)
	outer.PUT("/auctions/:auctionId/cancel", h.CancelAuction)
	outer.PUT("/auctions/:auctionId/award", h.AwardAuction)
	outer.GET("/auctions/:auctionId/order", h.GetAuctionOrder)

	outer.POST("/auctions/:auctionId/invitations", h.InviteSeller)
	outer.GET("/auctions/:auctionId/invitations", h.GetAuctionInvitations)
	outer.PUT("/invitations/:invitationId/respond", h.RespondInvitation)

	return h
}

type postAuctionInput struct {
	BuyerId     string `json:"buyerId" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	Unit        string `json:"unit" validate:"required,max=20"`
	Currency    string `json:"currency" validate:"required,len=3"`
	MaxBudget   string `json:"maxBudget" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
	AwardMethod string `json:"awardMethod" validate:"required,oneof=LowestBid WeightedScore Manual"`
	IsPublic    *bool  `json:"isPublic" validate:"required"`
}

// /auctions/new
func (h *auctionRoutesHandler) PostAuction(c echo.Context) error {
	var input postAuctionInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	budget, err := decimal.NewFromString(input.MaxBudget)
	if err != nil || !budget.IsPositive() {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"maxBudget must be a positive decimal number"}); e != nil {
			return e
		}

		return nil
	}

	startDate, err := time.Parse(time.RFC3339, input.StartDate)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"startDate must be an RFC3339 timestamp"}); e != nil {
			return e
		}

		return nil
	}

	endDate, err := time.Parse(time.RFC3339, input.EndDate)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"endDate must be an RFC3339 timestamp"}); e != nil {
			return e
		}

		return nil
	}

	model := &entity.CreateAuctionInput{
		BuyerId: input.BuyerId, Title: input.Title, Description: input.Description,
		Quantity: input.Quantity, Unit: input.Unit, Currency: input.Currency,
		MaxBudget: budget, StartDate: startDate, EndDate: endDate,
		AwardMethod: common.AwardMethod(input.AwardMethod), IsPublic: *input.IsPublic,
	}

	auction, err := h.auctionService.CreateAuction(c.Request().Context(), model)
	if err == nil {
		if e := c.JSON(http.StatusOK, auction); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrInvalidDuration:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Auction duration is outside the allowed range"}); e != nil {
			return e
		}
	case service.ErrInvalidAwardMethod:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Unknown award method"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type getPublishedAuctionsInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=50"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

// /auctions
func (h *auctionRoutesHandler) GetPublishedAuctions(c echo.Context) error {
	input := getPublishedAuctionsInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	auctions, err := h.auctionService.GetPublishedAuctions(c.Request().Context(), pg)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}

		return err
	}

	if e := c.JSON(http.StatusOK, auctions); e != nil {
		return e
	}

	return nil
}

// /auctions/:auctionId
func (h *auctionRoutesHandler) GetAuction(c echo.Context) error {
	auction, err := h.auctionService.GetAuctionById(c.Request().Context(), c.Param("auctionId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, auction); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

// /auctions/:auctionId/status
func (h *auctionRoutesHandler) GetAuctionStatus(c echo.Context) error {
	status, err := h.auctionService.GetAuctionStatus(c.Request().Context(), c.Param("auctionId"))
	if err == nil {
		if e := c.JSON(http.StatusOK, status); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type publishAuctionInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
}

// /auctions/:auctionId/publish
func (h *auctionRoutesHandler) PublishAuction(c echo.Context) error {
	input := publishAuctionInput{AuctionId: c.Param("auctionId"), UserId: c.QueryParam("userId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	auction, err := h.auctionService.PublishAuction(c.Request().Context(), input.AuctionId, input.UserId)
	if err == nil {
		if e := c.JSON(http.StatusOK, auction); e != nil {
			return e
		}

		return nil
	}

	if errors.Is(err, service.ErrIllegalTransition) {
		if e := c.JSON(http.StatusConflict, errorResponse{err.Error()}); e != nil {
			return e
		}

		return err
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrNotAuctionOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the auction owner can publish it"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type cancelAuctionInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
	Reason    string `json:"reason" validate:"max=500"`
}

// /auctions/:auctionId/cancel
func (h *auctionRoutesHandler) CancelAuction(c echo.Context) error {
	var input cancelAuctionInput
	if err := c.Bind(&input); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "Request body can't be empty") {
			if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
				return e
			}

			return err
		}
	}

	input.AuctionId, input.UserId = c.Param("auctionId"), c.QueryParam("userId")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	auction, err := h.auctionService.CancelAuction(c.Request().Context(), input.AuctionId, input.UserId, input.Reason)
	if err == nil {
		if e := c.JSON(http.StatusOK, auction); e != nil {
			return e
		}

		return nil
	}

	if errors.Is(err, service.ErrIllegalTransition) {
		if e := c.JSON(http.StatusConflict, errorResponse{err.Error()}); e != nil {
			return e
		}

		return err
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrNotAuctionOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the auction owner can cancel it"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type awardAuctionInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
	BidId     string `json:"bidId" validate:"required,uuid"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// /auctions/:auctionId/award
func (h *auctionRoutesHandler) AwardAuction(c echo.Context) error {
	var input awardAuctionInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	input.AuctionId, input.UserId = c.Param("auctionId"), c.QueryParam("userId")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	award, err := h.auctionService.AwardAuction(c.Request().Context(), input.AuctionId, input.UserId, input.BidId, input.Notes)
	if err == nil {
		if e := c.JSON(http.StatusOK, award); e != nil {
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
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no bid with given id on this auction"}); e != nil {
			return e
		}
	case service.ErrNotAuctionOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the auction owner can award it"}); e != nil {
			return e
		}
	case service.ErrAuctionNotEnded:
		if e := c.JSON(http.StatusConflict, errorResponse{"Auction has not ended yet"}); e != nil {
			return e
		}
	case service.ErrAuctionAlreadyAwarded:
		if e := c.JSON(http.StatusConflict, errorResponse{"Auction is already awarded"}); e != nil {
			return e
		}
	case service.ErrBidNotActive:
		if e := c.JSON(http.StatusConflict, errorResponse{"Bid is not active"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type getAuctionOrderInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
}

// /auctions/:auctionId/order
func (h *auctionRoutesHandler) GetAuctionOrder(c echo.Context) error {
	input := getAuctionOrderInput{AuctionId: c.Param("auctionId"), UserId: c.QueryParam("userId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	order, err := h.auctionService.GetAuctionOrder(c.Request().Context(), input.AuctionId, input.UserId)
	if err == nil {
		if e := c.JSON(http.StatusOK, order); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrOrderNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"Auction has no purchase order yet"}); e != nil {
			return e
		}
	case service.ErrNotAuctionOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the buyer and the winning seller can see the order"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type inviteSellerInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
	SellerId  string `json:"sellerId" validate:"required,uuid"`
}

// /auctions/:auctionId/invitations
func (h *auctionRoutesHandler) InviteSeller(c echo.Context) error {
	var input inviteSellerInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	input.AuctionId, input.UserId = c.Param("auctionId"), c.QueryParam("userId")
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	invitation, err := h.auctionService.InviteSeller(c.Request().Context(), input.AuctionId, input.UserId, input.SellerId)
	if err == nil {
		if e := c.JSON(http.StatusOK, invitation); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrNotAuctionOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the auction owner can invite sellers"}); e != nil {
			return e
		}
	case service.ErrPublicAuctionInvite:
		if e := c.JSON(http.StatusConflict, errorResponse{"Invitations apply to private auctions only"}); e != nil {
			return e
		}
	case service.ErrInviteAfterOpen:
		if e := c.JSON(http.StatusConflict, errorResponse{"Invitations are only allowed before the auction opens"}); e != nil {
			return e
		}
	case service.ErrAlreadyInvited:
		if e := c.JSON(http.StatusConflict, errorResponse{"Seller is already invited to this auction"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type getAuctionInvitationsInput struct {
	AuctionId string `param:"auctionId" validate:"required,uuid"`
	UserId    string `query:"userId" validate:"required,uuid"`
}

// /auctions/:auctionId/invitations
func (h *auctionRoutesHandler) GetAuctionInvitations(c echo.Context) error {
	input := getAuctionInvitationsInput{AuctionId: c.Param("auctionId"), UserId: c.QueryParam("userId")}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	invitations, err := h.auctionService.GetAuctionInvitations(c.Request().Context(), input.AuctionId, input.UserId)
	if err == nil {
		if e := c.JSON(http.StatusOK, invitations); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrAuctionNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no auction with given id"}); e != nil {
			return e
		}
	case service.ErrNotAuctionOwner:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Only the auction owner can see its invitations"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}

type respondInvitationInput struct {
	InvitationId string `param:"invitationId" validate:"required,uuid"`
	UserId       string `query:"userId" validate:"required,uuid"`
	Decision     string `query:"decision" validate:"required,oneof=Accepted Declined"`
}

// /invitations/:invitationId/respond
func (h *auctionRoutesHandler) RespondInvitation(c echo.Context) error {
	input := respondInvitationInput{
		InvitationId: c.Param("invitationId"),
		UserId:       c.QueryParam("userId"),
		Decision:     c.QueryParam("decision"),
	}
	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	accept := input.Decision == string(common.AcceptedInvitation)
	invitation, err := h.auctionService.RespondInvitation(c.Request().Context(), input.InvitationId, input.UserId, accept)
	if err == nil {
		if e := c.JSON(http.StatusOK, invitation); e != nil {
			return e
		}

		return nil
	}

	switch err {
	case service.ErrInvitationNotFound:
		if e := c.JSON(http.StatusNotFound, errorResponse{"There is no invitation with given id"}); e != nil {
			return e
		}
	case service.ErrNotInvitee:
		if e := c.JSON(http.StatusForbidden, errorResponse{"Invitation belongs to another seller"}); e != nil {
			return e
		}
	case service.ErrInvitationAnswered:
		if e := c.JSON(http.StatusConflict, errorResponse{"Invitation has already been answered"}); e != nil {
			return e
		}
	default:
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Error"}); e != nil {
			return e
		}
	}

	return err
}
