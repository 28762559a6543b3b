package workers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nivobank/backoffice/pkg/logger"
)

func TestShouldRemindSuppression(t *testing.T) {
	w := NewCorrectionReminderWorker(nil, nil, nil, nil, logger.NewForTesting(), "REQSTATUS00034", time.Hour, time.Minute)

	requestID := uuid.New()

	assert.True(t, w.shouldRemind(requestID), "new request should get a reminder")

	w.markReminded(requestID)
	assert.False(t, w.shouldRemind(requestID), "freshly reminded request should be suppressed")

	// A full window later the reminder fires again
	w.mu.Lock()
	w.reminded[requestID] = time.Now().Add(-2 * time.Hour)
	w.mu.Unlock()
	assert.True(t, w.shouldRemind(requestID))

	// Suppression is per request
	assert.True(t, w.shouldRemind(uuid.New()))
}

func TestWorkerDefaults(t *testing.T) {
	w := NewCorrectionReminderWorker(nil, nil, nil, nil, logger.NewForTesting(), "", 0, 0)

	assert.Equal(t, "REQSTATUS00034", w.statusCode)
	assert.Equal(t, 72*time.Hour, w.reminderAfter)
	assert.Equal(t, time.Hour, w.checkInterval)
}

func TestWorkerConfiguredStatusCode(t *testing.T) {
	w := NewCorrectionReminderWorker(nil, nil, nil, nil, logger.NewForTesting(), "REQSTATUS00101", 0, 0)

	assert.Equal(t, "REQSTATUS00101", w.statusCode)
}
