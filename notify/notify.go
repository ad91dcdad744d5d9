// Package notify defines the message-bus contract the CRUD surface publishes
// entity changes on. The bus itself is an external collaborator; the
// implementation here writes structured log events so the rest of the system
// can be developed and tested without a broker.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Event describes an entity mutation.
type Event struct {
	Entity string `json:"entity"` // "customer", "project", "shared_port"
	Action string `json:"action"` // "created", "updated", "deleted"
	ID     string `json:"id"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher emits events to the structured log instead of a broker.
type LogPublisher struct {
	logger zerolog.Logger
}

var _ Publisher = (*LogPublisher)(nil)

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info().
		Str("entity", event.Entity).
		Str("action", event.Action).
		Str("id", event.ID).
		Msg("entity event")
	return nil
}
