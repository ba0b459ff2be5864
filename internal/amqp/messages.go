package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RecordChangedMessage announces that records of a collection were written.
// ID is empty when a whole collection was imported.
type RecordChangedMessage struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecordChangedMessage stamps a change notification with the current time.
func NewRecordChangedMessage(collection, id string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Collection: collection,
		ID:         id,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes a message and checks it names a collection.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Collection == "" {
		return nil, errors.New("record changed message without collection")
	}
	return &msg, nil
}
