package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/config"
	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo"
	"auction-management-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory stand-in for the postgres repositories. It keeps
// the same conditional-write and locking semantics the real layer has, so the
// services can be exercised without a database.
type fakeStore struct {
	mu          sync.Mutex
	auctions    map[string]*entity.Auction
	bids        map[string]*entity.Bid
	invitations map[string]*entity.Invitation
	orders      map[string]*entity.PurchaseOrder
	events      []entity.OutboxEvent

	// failures injected by tests
	serializationFailures int
	orderErr              error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		auctions:    make(map[string]*entity.Auction),
		bids:        make(map[string]*entity.Bid),
		invitations: make(map[string]*entity.Invitation),
		orders:      make(map[string]*entity.PurchaseOrder),
	}
}

func (f *fakeStore) Ping() error { return nil }

func (f *fakeStore) CreateAuction(_ context.Context, input *entity.CreateAuctionInput) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	buyerId, err := uuid.Parse(input.BuyerId)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	f.auctions[id.String()] = &entity.Auction{
		Id: id, Number: "RA-TEST-" + id.String()[:8], BuyerId: buyerId,
		Title: input.Title, Description: input.Description, Quantity: input.Quantity,
		Unit: input.Unit, Currency: input.Currency, MaxBudget: input.MaxBudget,
		StartDate: input.StartDate, EndDate: input.EndDate, OriginalEndDate: input.EndDate,
		AwardMethod: input.AwardMethod, IsPublic: input.IsPublic,
		Status: common.Draft, CreatedAt: time.Now().UTC(),
	}

	return id, nil
}

func (f *fakeStore) GetAuctionById(_ context.Context, id string) (*entity.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	auction, ok := f.auctions[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *auction
	return &copied, nil
}

func (f *fakeStore) GetPublishedAuctions(_ context.Context, _ *entity.PaginationInput) ([]entity.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]entity.Auction, 0)
	for _, a := range f.auctions {
		if a.IsPublic && (a.Status == common.Published || a.Status.Open()) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EndDate.Before(result[j].EndDate) })

	return result, nil
}

func (f *fakeStore) PublishAuction(_ context.Context, id string, newStatus common.AuctionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	auction, ok := f.auctions[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if auction.Status != common.Draft {
		return repo_errors.ErrConflict
	}

	auction.Status = newStatus
	if !auction.IsPublic {
		for _, inv := range f.invitations {
			if inv.AuctionId.String() == id {
				f.queueEvent(common.InvitedEvent, inv.SellerId, auction.Id)
			}
		}
	}

	return nil
}

func (f *fakeStore) CancelAuction(_ context.Context, id string, reason string, cancelledAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	auction, ok := f.auctions[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if auction.Status.Terminal() {
		return repo_errors.ErrConflict
	}

	auction.Status = common.Cancelled
	auction.CancelReason = reason
	auction.CancelledAt = &cancelledAt
	for _, b := range f.bids {
		if b.AuctionId.String() == id && b.Status == common.ActiveBid {
			f.queueEvent(common.CancelledEvent, b.SellerId, auction.Id)
		}
	}

	return nil
}

func (f *fakeStore) ActivateDue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, a := range f.auctions {
		if a.Status == common.Published && !a.StartDate.After(now) {
			a.Status = common.Active
			count++
		}
	}

	return count, nil
}

func (f *fakeStore) CloseExpired(_ context.Context, now time.Time) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ended, noBids int64
	for _, a := range f.auctions {
		if !a.Status.Open() || a.EndDate.After(now) {
			continue
		}
		if f.hasActiveBid(a.Id.String()) {
			a.Status = common.Ended
			ended++
		} else {
			a.Status = common.NoBids
			noBids++
		}
	}

	return ended, noBids, nil
}

func (f *fakeStore) AwardAuction(_ context.Context, input *entity.AwardInput) (*entity.AwardResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	auction, ok := f.auctions[input.AuctionId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	if auction.Status != common.Ended {
		return nil, repo_errors.ErrConflict
	}

	winner, ok := f.bids[input.BidId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	if winner.Status != common.ActiveBid {
		return nil, repo_errors.ErrConflict
	}

	// any failure before this point leaves every row untouched, matching
	// the transactional rollback of the real repository
	if f.orderErr != nil {
		return nil, f.orderErr
	}

	winner.Status = common.AwardedBid
	rejected := 0
	for _, b := range f.bids {
		if b.AuctionId.String() == input.AuctionId && b.Status == common.ActiveBid {
			b.Status = common.RejectedBid
			rejected++
			f.queueEvent(common.LostEvent, b.SellerId, auction.Id)
		}
	}
	f.queueEvent(common.WonEvent, winner.SellerId, auction.Id)

	winningBidId := winner.Id
	auction.Status = common.Awarded
	auction.WinningBidId = &winningBidId
	auction.AwardedAt = &input.AwardedAt

	order := &entity.PurchaseOrder{
		Id: uuid.New(), Number: "PO-TEST-" + winningBidId.String()[:8],
		AuctionId: auction.Id, BuyerId: auction.BuyerId, SellerId: winner.SellerId,
		Quantity: auction.Quantity, UnitPrice: winner.Amount,
		TotalAmount: winner.Amount.Mul(decimal.NewFromInt(int64(auction.Quantity))),
		Notes:       input.Notes, CreatedAt: input.AwardedAt,
	}
	f.orders[input.AuctionId] = order

	return &entity.AwardResult{
		Auction: *auction, WinningBid: *winner, Rejected: rejected, Order: *order,
	}, nil
}

func (f *fakeStore) SubmitBid(_ context.Context, input *entity.SubmitBidInput, policy entity.BidPolicy) (*entity.BidReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.serializationFailures > 0 {
		f.serializationFailures--
		return nil, repo_errors.ErrSerialization
	}

	auction, ok := f.auctions[input.AuctionId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	invited := false
	for _, inv := range f.invitations {
		if inv.AuctionId.String() == input.AuctionId && inv.SellerId.String() == input.SellerId &&
			inv.Status == common.AcceptedInvitation {
			invited = true
		}
	}

	now := time.Now().UTC()
	lowestCompetitor := f.lowestActiveAmount(input.AuctionId, input.SellerId)
	if err := entity.EvaluateBid(auction, input.Amount, lowestCompetitor, invited, now, policy); err != nil {
		return nil, err
	}

	sellerId, err := uuid.Parse(input.SellerId)
	if err != nil {
		return nil, err
	}

	var bid *entity.Bid
	for _, b := range f.bids {
		if b.AuctionId.String() == input.AuctionId && b.SellerId.String() == input.SellerId {
			bid = b
		}
	}
	if bid == nil {
		bid = &entity.Bid{Id: uuid.New(), AuctionId: auction.Id, SellerId: sellerId, CreatedAt: now}
		f.bids[bid.Id.String()] = bid
	}
	bid.Amount = input.Amount
	bid.DeliveryDays = input.DeliveryDays
	bid.WarrantyMonths = input.WarrantyMonths
	bid.Notes = input.Notes
	bid.Status = common.ActiveBid
	bid.UpdatedAt = now

	extended := auction.ApplyExtension(now, policy.Extension)

	lowest := f.lowestActiveAmount(input.AuctionId, "")

	return &entity.BidReceipt{
		Bid: *bid, Extended: extended, EndDate: auction.EndDate, LowestAmount: *lowest,
	}, nil
}

func (f *fakeStore) GetBidById(_ context.Context, id string) (*entity.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bid, ok := f.bids[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *bid
	return &copied, nil
}

func (f *fakeStore) WithdrawBid(_ context.Context, bidId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bid, ok := f.bids[bidId]
	if !ok {
		return repo_errors.ErrNotFound
	}
	auction := f.auctions[bid.AuctionId.String()]
	if bid.Status != common.ActiveBid || auction.Status == common.Awarded {
		return repo_errors.ErrConflict
	}

	bid.Status = common.WithdrawnBid
	return nil
}

func (f *fakeStore) GetAuctionBids(_ context.Context, auctionId string, _ *entity.PaginationInput) ([]entity.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]entity.Bid, 0)
	for _, b := range f.bids {
		if b.AuctionId.String() == auctionId {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Amount.Equal(result[j].Amount) {
			return result[i].Amount.LessThan(result[j].Amount)
		}
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})

	return result, nil
}

func (f *fakeStore) GetSellerBid(_ context.Context, auctionId string, sellerId string) (*entity.Bid, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var own *entity.Bid
	for _, b := range f.bids {
		if b.AuctionId.String() == auctionId && b.SellerId.String() == sellerId {
			own = b
		}
	}
	if own == nil {
		return nil, 0, repo_errors.ErrNotFound
	}

	rank := 0
	if own.Status == common.ActiveBid {
		rank = 1
		for _, b := range f.bids {
			if b.AuctionId.String() != auctionId || b.Status != common.ActiveBid || b.Id == own.Id {
				continue
			}
			if b.Amount.LessThan(own.Amount) ||
				(b.Amount.Equal(own.Amount) && b.UpdatedAt.Before(own.UpdatedAt)) {
				rank++
			}
		}
	}

	copied := *own
	return &copied, rank, nil
}

func (f *fakeStore) GetLowestActiveAmount(_ context.Context, auctionId string) (*decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lowestActiveAmount(auctionId, ""), nil
}

func (f *fakeStore) CreateInvitation(_ context.Context, input *entity.CreateInvitationInput) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, inv := range f.invitations {
		if inv.AuctionId.String() == input.AuctionId && inv.SellerId.String() == input.SellerId {
			return uuid.Nil, repo_errors.ErrAlreadyExists
		}
	}

	auctionId, err := uuid.Parse(input.AuctionId)
	if err != nil {
		return uuid.Nil, err
	}
	sellerId, err := uuid.Parse(input.SellerId)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	f.invitations[id.String()] = &entity.Invitation{
		Id: id, AuctionId: auctionId, SellerId: sellerId,
		Status: common.PendingInvitation, CreatedAt: time.Now().UTC(),
	}

	return id, nil
}

func (f *fakeStore) GetInvitationById(_ context.Context, id string) (*entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inv, ok := f.invitations[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *inv
	return &copied, nil
}

func (f *fakeStore) RespondInvitation(_ context.Context, id string, status common.InvitationStatus, respondedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	inv, ok := f.invitations[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if inv.Status != common.PendingInvitation {
		return repo_errors.ErrConflict
	}

	inv.Status = status
	inv.RespondedAt = &respondedAt
	return nil
}

func (f *fakeStore) HasAcceptedInvitation(_ context.Context, auctionId string, sellerId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, inv := range f.invitations {
		if inv.AuctionId.String() == auctionId && inv.SellerId.String() == sellerId &&
			inv.Status == common.AcceptedInvitation {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeStore) GetAuctionInvitations(_ context.Context, auctionId string) ([]entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]entity.Invitation, 0)
	for _, inv := range f.invitations {
		if inv.AuctionId.String() == auctionId {
			result = append(result, *inv)
		}
	}

	return result, nil
}

func (f *fakeStore) GetOrderByAuctionId(_ context.Context, auctionId string) (*entity.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[auctionId]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *order
	return &copied, nil
}

func (f *fakeStore) GetUndispatchedEvents(_ context.Context, limit int) ([]entity.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]entity.OutboxEvent, 0)
	for _, e := range f.events {
		if e.DispatchedAt == nil {
			result = append(result, e)
			if len(result) == limit {
				break
			}
		}
	}

	return result, nil
}

func (f *fakeStore) MarkEventsDispatched(_ context.Context, ids []uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		for i := range f.events {
			if f.events[i].Id == id {
				t := at
				f.events[i].DispatchedAt = &t
			}
		}
	}

	return nil
}

func (f *fakeStore) queueEvent(eventType common.EventType, recipientId uuid.UUID, auctionId uuid.UUID) {
	f.events = append(f.events, entity.OutboxEvent{
		Id: uuid.New(), EventType: eventType, RecipientId: recipientId,
		AuctionId: auctionId, CreatedAt: time.Now().UTC(),
	})
}

func (f *fakeStore) hasActiveBid(auctionId string) bool {
	for _, b := range f.bids {
		if b.AuctionId.String() == auctionId && b.Status == common.ActiveBid {
			return true
		}
	}

	return false
}

// lowestActiveAmount returns the lowest Active amount on the auction,
// excluding excludeSeller when non-empty. Callers must hold the mutex.
func (f *fakeStore) lowestActiveAmount(auctionId string, excludeSeller string) *decimal.Decimal {
	var lowest *decimal.Decimal
	for _, b := range f.bids {
		if b.AuctionId.String() != auctionId || b.Status != common.ActiveBid {
			continue
		}
		if excludeSeller != "" && b.SellerId.String() == excludeSeller {
			continue
		}
		if lowest == nil || b.Amount.LessThan(*lowest) {
			amount := b.Amount
			lowest = &amount
		}
	}

	return lowest
}

// fakeCache is an in-memory LowestBidCache.
type fakeCache struct {
	mu      sync.Mutex
	amounts map[string]decimal.Decimal
}

func newFakeCache() *fakeCache {
	return &fakeCache{amounts: make(map[string]decimal.Decimal)}
}

func (c *fakeCache) SetLowestAmount(_ context.Context, auctionId string, amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.amounts[auctionId] = amount
	return nil
}

func (c *fakeCache) GetLowestAmount(_ context.Context, auctionId string) (*decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	amount, ok := c.amounts[auctionId]
	if !ok {
		return nil, nil
	}
	return &amount, nil
}

func (c *fakeCache) DropLowestAmount(_ context.Context, auctionId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.amounts, auctionId)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		MinAuctionDuration:     time.Hour,
		MaxAuctionDuration:     720 * time.Hour,
		ExtensionWindow:        10 * time.Minute,
		MaxExtensions:          5,
		MinBidDecrementPercent: 0,
		SubmitRetryAttempts:    3,
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServices(store *fakeStore, cache *fakeCache, cfg *config.Config) *Services {
	repositories := &repo.Repositories{
		Diagnostics:    store,
		Auction:        store,
		Bid:            store,
		Invitation:     store,
		Order:          store,
		Outbox:         store,
		LowestBidCache: cache,
	}

	return NewServices(repositories, cfg, testLogger())
}
