// Package notifier drains the outbox. Events are queued inside the same
// transaction as the state change that produced them and delivered here on
// a best-effort basis; a failed delivery stays queued for the next pass.
package notifier

import (
	"context"
	"time"

	"auction-management-api/internal/entity"
	"auction-management-api/internal/repo"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Notifier delivers a single event to its recipient.
type Notifier interface {
	Notify(ctx context.Context, event *entity.OutboxEvent) error
}

// LogNotifier writes notifications to the application log. It stands in
// for a real delivery channel (email, push, webhook).
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, event *entity.OutboxEvent) error {
	n.log.WithFields(logrus.Fields{
		"eventId":     event.Id,
		"eventType":   event.EventType,
		"recipientId": event.RecipientId,
		"auctionId":   event.AuctionId,
	}).Info("notification delivered")

	return nil
}

// Dispatcher polls the outbox and pushes undelivered events through the
// configured Notifier.
type Dispatcher struct {
	outboxRepo repo.Outbox
	notifier   Notifier
	interval   time.Duration
	batch      int
	log        *logrus.Logger
}

func NewDispatcher(outboxRepo repo.Outbox, notifier Notifier, interval time.Duration, batch int, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		outboxRepo: outboxRepo,
		notifier:   notifier,
		interval:   interval,
		batch:      batch,
		log:        log,
	}
}

// Run polls until ctx is cancelled. Delivery failures are logged and never
// propagated: the outbox keeps the event until it goes through.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.WithField("interval", d.interval).Info("outbox dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context) {
	events, err := d.outboxRepo.GetUndispatchedEvents(ctx, d.batch)
	if err != nil {
		d.log.WithError(err).Error("failed to read outbox")
		return
	}
	if len(events) == 0 {
		return
	}

	delivered := make([]uuid.UUID, 0, len(events))
	for i := range events {
		if err = d.notifier.Notify(ctx, &events[i]); err != nil {
			d.log.WithError(err).WithField("eventId", events[i].Id).Warn("notification delivery failed")
			continue
		}

		delivered = append(delivered, events[i].Id)
	}

	if len(delivered) == 0 {
		return
	}

	if err = d.outboxRepo.MarkEventsDispatched(ctx, delivered, time.Now().UTC()); err != nil {
		// events will be re-delivered on the next pass; acceptable for
		// at-least-once notifications
		d.log.WithError(err).Error("failed to mark events dispatched")
	}
}
