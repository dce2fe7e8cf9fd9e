package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/inkline/studio-scheduler/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// FreedSlotOfferer is the part of the waitlist service the consumer drives.
type FreedSlotOfferer interface {
	OfferFreedSlot(ctx context.Context, slotID uint) (*models.WaitlistEntry, error)
}

type slotReleased struct {
	SlotID    uint `json:"slot_id"`
	BookingID uint `json:"booking_id"`
}

// SlotConsumer reacts to slot.released messages by offering the freed slot
// to the waitlist.
type SlotConsumer struct {
	waitlist FreedSlotOfferer
	log      *zap.Logger
	timeout  time.Duration
}

func NewSlotConsumer(waitlist FreedSlotOfferer, log *zap.Logger) *SlotConsumer {
	return &SlotConsumer{waitlist: waitlist, log: log, timeout: 30 * time.Second}
}

func (sc *SlotConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			sc.process(msg.Body, msg)
		}
		sc.log.Info("slot consumer channel closed, stopping")
	}()
}

type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (sc *SlotConsumer) process(body []byte, ack acker) {
	var ev slotReleased
	if err := json.Unmarshal(body, &ev); err != nil || ev.SlotID == 0 {
		sc.log.Warn("dropping malformed slot.released message", zap.ByteString("body", body), zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sc.timeout)
	defer cancel()

	entry, err := sc.waitlist.OfferFreedSlot(ctx, ev.SlotID)
	switch {
	case err == nil:
		if entry != nil {
			sc.log.Info("offered freed slot", zap.Uint("slot_id", ev.SlotID), zap.Uint("entry_id", entry.ID))
		}
		_ = ack.Ack(false)
	case entry != nil && errors.Is(err, apperr.ErrExternalService):
		// offer is recorded; only the client message failed
		sc.log.Warn("freed slot offer not delivered", zap.Uint("slot_id", ev.SlotID), zap.Error(err))
		_ = ack.Ack(false)
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrConflict):
		sc.log.Info("freed slot no longer offerable", zap.Uint("slot_id", ev.SlotID), zap.Error(err))
		_ = ack.Ack(false)
	default:
		sc.log.Error("failed to offer freed slot", zap.Uint("slot_id", ev.SlotID), zap.Error(err))
		_ = ack.Nack(false, true)
	}
}
