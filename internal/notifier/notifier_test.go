package notifier

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"auction-management-api/internal/common"
	"auction-management-api/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	mu     sync.Mutex
	events []entity.OutboxEvent
}

func (f *fakeOutbox) GetUndispatchedEvents(_ context.Context, limit int) ([]entity.OutboxEvent, error) {
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

func (f *fakeOutbox) MarkEventsDispatched(_ context.Context, ids []uuid.UUID, at time.Time) error {
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

type recordingNotifier struct {
	delivered []uuid.UUID
	failFor   map[uuid.UUID]error
}

func (n *recordingNotifier) Notify(_ context.Context, event *entity.OutboxEvent) error {
	if err, ok := n.failFor[event.Id]; ok {
		return err
	}

	n.delivered = append(n.delivered, event.Id)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func queuedEvent(eventType common.EventType) entity.OutboxEvent {
	return entity.OutboxEvent{
		Id: uuid.New(), EventType: eventType, RecipientId: uuid.New(),
		AuctionId: uuid.New(), CreatedAt: time.Now().UTC(),
	}
}

func TestDispatcher_DeliversAndMarks(t *testing.T) {
	outbox := &fakeOutbox{events: []entity.OutboxEvent{
		queuedEvent(common.WonEvent),
		queuedEvent(common.LostEvent),
	}}
	notifier := &recordingNotifier{}
	d := NewDispatcher(outbox, notifier, time.Second, 10, testLogger())

	d.dispatch(context.Background())

	require.Len(t, notifier.delivered, 2)
	remaining, err := outbox.GetUndispatchedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestDispatcher_KeepsFailedDeliveries(t *testing.T) {
	won := queuedEvent(common.WonEvent)
	lost := queuedEvent(common.LostEvent)
	outbox := &fakeOutbox{events: []entity.OutboxEvent{won, lost}}
	notifier := &recordingNotifier{failFor: map[uuid.UUID]error{won.Id: errors.New("delivery refused")}}
	d := NewDispatcher(outbox, notifier, time.Second, 10, testLogger())

	d.dispatch(context.Background())

	// the failed event stays queued for the next pass
	remaining, err := outbox.GetUndispatchedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, won.Id, remaining[0].Id)

	delete(notifier.failFor, won.Id)
	d.dispatch(context.Background())

	remaining, err = outbox.GetUndispatchedEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestDispatcher_RespectsBatchLimit(t *testing.T) {
	outbox := &fakeOutbox{}
	for i := 0; i < 5; i++ {
		outbox.events = append(outbox.events, queuedEvent(common.InvitedEvent))
	}
	notifier := &recordingNotifier{}
	d := NewDispatcher(outbox, notifier, time.Second, 2, testLogger())

	d.dispatch(context.Background())
	require.Len(t, notifier.delivered, 2)
}
