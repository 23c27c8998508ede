package checkout

import (
	"github.com/ariefcatur/go-retail-store/internal/events"
	kafkax "github.com/ariefcatur/go-retail-store/internal/kafka"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

func (s *Service) publish(p kafkax.Publisher, eventType, correlationID, traceID string, payload any) {
	env, err := events.New(eventType, s.Name, correlationID, traceID, payload)
	if err != nil {
		s.logger().WithError(err).WithField("event", eventType).Error("build event")
		return
	}
	p.Publish(events.PartitionKey(correlationID), kafkax.MustMarshal(env), kafkax.EventHeaders(eventType, events.Version)...)
}

func (s *Service) publishRejected(req Request, policy store.Policy, err error, committed *store.Receipt) {
	if s.Rejected == nil {
		return
	}
	id := req.ExternalID
	if id == "" && committed != nil {
		id = committed.ID
	}
	s.publish(s.Rejected, events.EventOrderRejected, id, req.TraceID, events.Rejected(err, policy, req.ExternalID, committed))
}

func correlation(externalID, receiptID string) string {
	if externalID != "" {
		return externalID
	}
	return receiptID
}
