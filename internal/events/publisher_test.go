package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"properly/internal/logging"
	"properly/internal/model"
)

type fakeChannel struct {
	exchange, key string
	msgs          []amqp.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testEvent() model.LeadEvent {
	pool := true
	return model.LeadEvent{
		SessionID:      "0b7c6f1e-1111-4c1e-9d1b-1a2b3c4d5e6f",
		Email:          "buyer@example.com",
		Preferences:    model.Preferences{Pool: &pool},
		TopPropertyIDs: []string{"prop1", "prop2"},
		CapturedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRabbitPublisher_PublishLead(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch, exchange: "properly.leads", routingKey: "lead.captured", logger: logging.Discard()}

	evt := testEvent()
	if err := p.PublishLead(context.Background(), evt); err != nil {
		t.Fatalf("PublishLead() error = %v", err)
	}

	if ch.exchange != "properly.leads" || ch.key != "lead.captured" {
		t.Errorf("published to %s/%s", ch.exchange, ch.key)
	}
	if len(ch.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.msgs))
	}

	msg := ch.msgs[0]
	if msg.DeliveryMode != amqp.Persistent {
		t.Error("lead events must be persistent")
	}
	if msg.MessageId != evt.SessionID {
		t.Errorf("MessageId = %q, want session id", msg.MessageId)
	}
	if msg.ContentType != "application/json" {
		t.Errorf("ContentType = %q", msg.ContentType)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded["email"] != "buyer@example.com" {
		t.Errorf("email = %v", decoded["email"])
	}
	prefs, ok := decoded["preferences"].(map[string]any)
	if !ok || prefs["pool"] != true {
		t.Errorf("preferences = %v", decoded["preferences"])
	}
	if _, stated := prefs["location"]; stated {
		t.Error("unstated answers must be omitted from the payload")
	}
}

func TestRabbitPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &RabbitPublisher{channel: ch, exchange: "x", routingKey: "k", logger: logging.Discard()}

	if err := p.PublishLead(context.Background(), testEvent()); err == nil {
		t.Error("expected publish error")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !ch.closed {
		t.Error("channel was not closed")
	}
	if err := p.PublishLead(context.Background(), testEvent()); err == nil {
		t.Error("publishing after Close should fail")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.PublishLead(context.Background(), testEvent()); err != nil {
		t.Errorf("PublishLead() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
