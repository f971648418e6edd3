// Package events publishes catalog change notifications to the configured
// message broker. Publishing is best-effort: a broker failure is logged and
// never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/restcatalog/apiserver/internal/mq"
)

const (
	EntityCategory = "category"
	EntityProduct  = "product"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event is the JSON payload published for every catalog mutation.
type Event struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	EntityID   int       `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits catalog events on a fixed channel. A nil Publisher is a
// valid no-op, used when no broker is configured.
type Publisher struct {
	mq      *mq.MQ
	channel string
}

// NewPublisher constructs a Publisher over the given broker wrapper.
func NewPublisher(broker *mq.MQ, channel string) *Publisher {
	return &Publisher{mq: broker, channel: channel}
}

// Publish emits one event for the entity/action pair.
func (p *Publisher) Publish(ctx context.Context, entity, action string, entityID int) {
	if p == nil || p.mq == nil {
		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s.%s: %v", entity, action, err)
		return
	}

	attrs := map[string]string{"entity": entity, "action": action}
	if _, err := p.mq.Publish(ctx, p.channel, data, attrs); err != nil {
		log.Printf("events: publish %s.%s: %v", entity, action, err)
	}
}
