package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"planner/internal/core"
	"planner/internal/keys"
)

// BucketChangedMessage announces that one month-scoped key was rewritten.
// Consumers re-read the key; the message carries no payload.
type BucketChangedMessage struct {
	Kind      keys.Kind `json:"kind"`
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1-12
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBucketChangedMessage(kind keys.Kind, scope core.Scope, key string, now time.Time) *BucketChangedMessage {
	return &BucketChangedMessage{
		Kind:      kind,
		Year:      scope.Year,
		Month:     int(scope.Month),
		Key:       key,
		Timestamp: now.UTC(),
	}
}

// Scope returns the month the message refers to.
func (m *BucketChangedMessage) Scope() core.Scope {
	return core.Scope{Year: m.Year, Month: time.Month(m.Month)}
}

func (m *BucketChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BucketChangedMessageFromJSON decodes a message and rejects ones that do
// not name a valid month.
func BucketChangedMessageFromJSON(data []byte) (*BucketChangedMessage, error) {
	var msg BucketChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, fmt.Errorf("message without kind")
	}
	if err := msg.Scope().Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
