package kafka

import (
	"encoding/json"
	"log"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type FulfillmentEvent struct {
	EventType          string    `json:"event_type"`
	TransactionID      string    `json:"transaction_id"`
	NormalizedIdentity string    `json:"normalized_identity"`
	Status             string    `json:"status,omitempty"`
	TicketID           string    `json:"ticket_id,omitempty"`
	IssueKind          string    `json:"issue_kind,omitempty"`
	At                 time.Time `json:"at"`
}

const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderRefunded  = "order.refunded"
	EventTicketOpened   = "ticket.opened"
)

// PublishFulfillmentEvent fires and logs; a lost event never blocks the
// pipeline, the order row is the source of truth.
func PublishFulfillmentEvent(pub domain.EventPublisher, topic string, event FulfillmentEvent) {
	event.At = time.Now().UTC()
	v, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal fulfillment event: %v", err)
		return
	}

	if err := pub.Publish(topic, domain.Message{Key: []byte(event.TransactionID), Value: v}); err != nil {
		log.Printf("failed to publish %s for %s: %v", event.EventType, event.TransactionID, err)
	}
}
