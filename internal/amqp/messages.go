package amqp

import (
	"encoding/json"
	"time"
)

// EventType names a ledger event; it doubles as the message type header.
type EventType string

const (
	EventAttendanceRecorded EventType = "attendance.recorded"
	EventGivingRecorded     EventType = "giving.recorded"
	EventExpenseCreated     EventType = "expense.created"
	EventExpenseApproved    EventType = "expense.approved"
	EventDataCleared        EventType = "data.cleared"
)

// LedgerEvent announces a committed change to the ledger.
type LedgerEvent struct {
	Type        EventType         `json:"type"`
	RecordID    int64             `json:"record_id,omitempty"`
	Date        string            `json:"date,omitempty"`
	ServiceType string            `json:"service_type,omitempty"`
	Amount      float64           `json:"amount,omitempty"`
	Actor       string            `json:"actor"`
	Details     map[string]string `json:"details,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewLedgerEvent stamps a new event with the current time.
func NewLedgerEvent(t EventType, actor string) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by Client.Publish.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
