package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a billing occurrence recorded in the journal and fanned out to notifiers.
type Event struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Reference  string          `json:"reference,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Notifier reacts to emitted events (metrics, logs, etc.).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus appends events to an optional JSON-lines journal and dispatches them to notifiers.
type Bus struct {
	Journal   io.Writer
	Notifiers []Notifier
	Clock     func() time.Time

	mu sync.Mutex
}

// Emit records the event and dispatches it to all configured handlers.
// Notifier failures are joined and returned alongside the event.
func (b *Bus) Emit(ctx context.Context, topic, reference string, payload any) (Event, error) {
	if b == nil {
		return Event{}, errors.New("events: bus not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: encode payload: %w", err)
	}
	now := time.Now
	if b.Clock != nil {
		now = b.Clock
	}
	ev := Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		Reference:  strings.TrimSpace(reference),
		Payload:    encoded,
		OccurredAt: now().UTC(),
	}
	if err := b.append(ev); err != nil {
		return Event{}, fmt.Errorf("events: journal: %w", err)
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, ev); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return ev, joined
}

func (b *Bus) append(ev Event) error {
	if b.Journal == nil {
		return nil
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err = b.Journal.Write(append(line, '\n'))
	return err
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	switch v := payload.(type) {
	case []byte:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	case json.RawMessage:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}
