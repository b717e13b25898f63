package services

import (
	"encoding/json"
	"log/slog"
	"time"

	"looplane/internal/models"
	"looplane/pkg/rabbitmq"
)

// EventPublisher delivers a message to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ListingEvent is the message emitted after a listing changes.
type ListingEvent struct {
	Type       string         `json:"type"`
	ActorID    string         `json:"actorId"`
	Listing    models.Listing `json:"listing"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// publishListingEvent is best effort: a failed publish is logged and the
// mutation that triggered it still stands.
func publishListingEvent(p EventPublisher, logger *slog.Logger, eventType, actorID string, l models.Listing) {
	if p == nil {
		return
	}

	body, err := json.Marshal(ListingEvent{
		Type:       eventType,
		ActorID:    actorID,
		Listing:    l,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("marshal listing event", slog.String("event", eventType), slog.Any("error", err))
		return
	}

	if err := p.Publish(rabbitmq.ListingsExchange, eventType, body); err != nil {
		logger.Warn("publish listing event",
			slog.String("event", eventType),
			slog.String("listing_id", l.ID),
			slog.Any("error", err),
		)
	}
}
