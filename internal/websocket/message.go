package websocket

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Request event types
	MessageTypeRequestCreated      MessageType = "request.created"
	MessageTypeRequestSubmitted    MessageType = "request.submitted"
	MessageTypeRequestTransitioned MessageType = "request.transitioned"
	MessageTypeRequestAccepted     MessageType = "request.accepted"
	MessageTypeRequestRejected     MessageType = "request.rejected"

	// Feedback event types
	MessageTypeFeedbackRecorded MessageType = "feedback.recorded"

	// Connection management
	MessageTypePing         MessageType = "ping"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
	MessageTypeSubscribe    MessageType = "subscribe"
	MessageTypeUnsubscribe  MessageType = "unsubscribe"
	MessageTypeSubscribed   MessageType = "subscribed"
	MessageTypeUnsubscribed MessageType = "unsubscribed"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// TransitionEventData contains request transition event details
type TransitionEventData struct {
	RequestID   string     `json:"request_id"`
	BankID      string     `json:"bank_id"`
	AgencyID    string     `json:"agency_id"`
	StatusCode  string     `json:"status_code"`
	StatusLabel string     `json:"status_label,omitempty"`
	Terminal    bool       `json:"terminal"`
	ActorID     string     `json:"actor_id,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// FeedbackEventData contains field feedback event details
type FeedbackEventData struct {
	RequestID  string `json:"request_id"`
	FieldPath  string `json:"field_path"`
	Verdict    string `json:"verdict"`
	ReviewerID string `json:"reviewer_id,omitempty"`
}

// ErrorData contains error details
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubscriptionData contains subscription request details
type SubscriptionData struct {
	Channel string  `json:"channel"` // e.g., "requests", "requests:{id}", "agencies:{id}"
	Filters Filters `json:"filters,omitempty"`
}

// Filters for subscription
type Filters struct {
	BankIDs     []string `json:"bank_ids,omitempty"`
	AgencyIDs   []string `json:"agency_ids,omitempty"`
	StatusCodes []string `json:"status_codes,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		rawData = jsonData
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Data:      rawData,
	}, nil
}

// ToJSON converts a message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
