package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	exchange, key string
	published     []amqp091.Publishing
	deadline      bool
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	_, f.deadline = ctx.Deadline()
	f.exchange, f.key = exchange, key
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestClient_Publish(t *testing.T) {
	ch := &fakeChannel{}
	c := &Client{channel: ch, exchangeName: "churchledger", routingKey: "ledger"}

	e := NewLedgerEvent(EventExpenseApproved, "Pastor Paul")
	e.RecordID = 7
	e.Amount = 30
	if err := c.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if ch.exchange != "churchledger" || ch.key != "ledger" {
		t.Errorf("published to %s/%s", ch.exchange, ch.key)
	}
	if !ch.deadline {
		t.Error("publish context has no timeout")
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages", len(ch.published))
	}
	msg := ch.published[0]
	if msg.DeliveryMode != amqp091.Persistent || msg.ContentType != "application/json" || msg.Type != "expense.approved" {
		t.Errorf("unexpected publishing %+v", msg)
	}

	decoded, err := LedgerEventFromJSON(msg.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.RecordID != 7 || decoded.Actor != "Pastor Paul" || decoded.Type != EventExpenseApproved {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestClient_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	c := &Client{channel: &fakeChannel{err: boom}, exchangeName: "x", routingKey: "k"}
	if err := c.Publish(context.Background(), NewLedgerEvent(EventGivingRecorded, "Mary")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	ch := &fakeChannel{}
	c := &Client{channel: ch}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ch.closed {
		t.Error("channel not closed")
	}
}

func TestNewLedgerEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewLedgerEvent(EventDataCleared, "Admin")
	if e.Timestamp.Before(before) || e.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp %v", e.Timestamp)
	}
	if _, err := LedgerEventFromJSON([]byte("{")); err == nil {
		t.Error("expected decode error")
	}
}
