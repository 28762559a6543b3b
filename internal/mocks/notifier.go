package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// RecordedEvent is one captured notification
type RecordedEvent struct {
	Event   string
	Payload map[string]interface{}
}

// RecordingNotifier captures dispatched events for test assertions
type RecordingNotifier struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// NewRecordingNotifier creates a new recording notifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify records the event
func (n *RecordingNotifier) Notify(ctx context.Context, event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, RecordedEvent{Event: event, Payload: payload})
}

// Events returns the captured events
func (n *RecordingNotifier) Events() []RecordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]RecordedEvent, len(n.events))
	copy(out, n.events)
	return out
}

// RecordedTransition is one captured feed publication
type RecordedTransition struct {
	RequestID  uuid.UUID
	StatusCode string
	ActorID    uuid.UUID
}

// RecordingPublisher captures live-feed publications for test assertions
type RecordingPublisher struct {
	mu          sync.Mutex
	transitions []RecordedTransition
}

// NewRecordingPublisher creates a new recording publisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// PublishTransition records the publication
func (p *RecordingPublisher) PublishTransition(req *models.OnboardingRequest, target *models.Status, actorID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitions = append(p.transitions, RecordedTransition{
		RequestID:  req.ID,
		StatusCode: target.Code,
		ActorID:    actorID,
	})
}

// Transitions returns the captured publications
func (p *RecordingPublisher) Transitions() []RecordedTransition {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RecordedTransition, len(p.transitions))
	copy(out, p.transitions)
	return out
}
