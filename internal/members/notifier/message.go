package notifier

import (
	"encoding/json"
	"fmt"

	"members/internal/members/models"
)

// CorrelationHeader is the record header carrying the correlation id.
const CorrelationHeader = "X-Correlation-Id"

// Message is the JSON value consumers of the members channel receive.
type Message struct {
	EntityID      int64  `json:"entityId"`
	CorrelationID string `json:"correlationId"`
}

// Encode returns the message key (the operation name) and JSON value for event.
func Encode(event models.ChangeEvent) (key, value []byte, err error) {
	value, err = json.Marshal(Message{
		EntityID:      int64(event.EntityID),
		CorrelationID: event.CorrelationID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encode change event: %w", err)
	}
	return []byte(event.Kind.Key()), value, nil
}

// DecodeMessage parses a message value the way downstream consumers read it.
func DecodeMessage(value []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(value, &m); err != nil {
		return Message{}, fmt.Errorf("decode change message: %w", err)
	}
	return m, nil
}
