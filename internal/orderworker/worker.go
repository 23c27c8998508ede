package orderworker

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-retail-store/internal/checkout"
	"github.com/ariefcatur/go-retail-store/internal/events"
	kafkax "github.com/ariefcatur/go-retail-store/internal/kafka"
	"github.com/ariefcatur/go-retail-store/internal/redisx"
	"github.com/ariefcatur/go-retail-store/internal/validation"
)

// Worker turns OrderRequested events into orders.
type Worker struct {
	Checkout    *checkout.Service
	Redis       redis.Cmdable
	ServiceName string
	Log         logrus.FieldLogger
}

// HandleOrderRequested is installed as the consumer handler. Domain failures
// are reported through OrderRejected events and do not block the offset;
// only undecodable input and infrastructure errors are returned.
func (w *Worker) HandleOrderRequested(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		w.Log.WithError(err).WithField("offset", m.Offset).Warn("skip undecodable message")
		return nil
	}
	if env.EventType != events.EventOrderRequested {
		return nil
	}
	log := w.Log.WithFields(logrus.Fields{"event_id": env.EventID, "correlation_id": env.CorrelationID})

	if w.Redis != nil {
		fresh, err := redisx.Claim(ctx, w.Redis, w.ServiceName, env.EventID)
		if err != nil {
			return errors.Wrap(err, "dedup")
		}
		if !fresh {
			log.Debug("duplicate delivery")
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[events.OrderRequestedPayload](env.Payload)
	if err != nil {
		log.WithError(err).Warn("skip bad payload")
		return nil
	}

	res, err := w.Checkout.Checkout(ctx, checkout.Request{
		ExternalID: p.ExternalID,
		Policy:     p.Policy,
		Items:      p.Items,
		TraceID:    env.TraceID,
	})
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{"receipt": res.Receipt.ID, "replay": res.Existed}).Info("order requested -> placed")
	case errors.Is(err, checkout.ErrOrderInProgress):
		// the holder places the order for this external id
		log.WithError(err).Info("order requested -> already in progress")
	case validation.Fields(err) != nil:
		log.WithError(err).Warn("order request failed validation")
	default:
		log.WithError(err).Info("order requested -> rejected")
	}
	return nil
}
