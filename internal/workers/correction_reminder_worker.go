package workers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/internal/services"
	"github.com/nivobank/backoffice/pkg/logger"
)

// CorrectionReminderWorker periodically nudges agents about requests that a
// reviewer sent back for corrections and that have not been resubmitted
// within the configured window.
type CorrectionReminderWorker struct {
	requestRepo   *postgres.RequestRepository
	userRepo      *postgres.UserRepository
	catalog       *registry.Registry
	notifications *services.NotificationService
	logger        *logger.Logger
	statusCode    string
	reminderAfter time.Duration
	checkInterval time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}

	mu       sync.Mutex
	reminded map[uuid.UUID]time.Time
}

// NewCorrectionReminderWorker creates a new correction reminder worker
func NewCorrectionReminderWorker(
	requestRepo *postgres.RequestRepository,
	userRepo *postgres.UserRepository,
	catalog *registry.Registry,
	notifications *services.NotificationService,
	log *logger.Logger,
	statusCode string,
	reminderAfter time.Duration,
	checkInterval time.Duration,
) *CorrectionReminderWorker {
	if statusCode == "" {
		statusCode = "REQSTATUS00034"
	}
	if reminderAfter == 0 {
		reminderAfter = 72 * time.Hour
	}
	if checkInterval == 0 {
		checkInterval = 1 * time.Hour
	}

	return &CorrectionReminderWorker{
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		catalog:       catalog,
		notifications: notifications,
		logger:        log,
		statusCode:    statusCode,
		reminderAfter: reminderAfter,
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		reminded:      make(map[uuid.UUID]time.Time),
	}
}

// Start starts the worker in the background
func (w *CorrectionReminderWorker) Start(ctx context.Context) {
	w.logger.Info("Starting correction reminder worker",
		logger.String("reminder_after", w.reminderAfter.String()),
		logger.String("interval", w.checkInterval.String()),
	)

	go w.run(ctx)
}

// Stop stops the worker gracefully
func (w *CorrectionReminderWorker) Stop() {
	w.logger.Info("Stopping correction reminder worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Correction reminder worker stopped")
}

// run is the main worker loop
func (w *CorrectionReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sendReminders(ctx)

	for {
		select {
		case <-ticker.C:
			w.sendReminders(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sendReminders finds stale correction-required requests and emails their agents
func (w *CorrectionReminderWorker) sendReminders(ctx context.Context) {
	w.logger.Debug("Checking for overdue corrections")

	status, err := w.catalog.FindByCode(w.statusCode)
	if err != nil {
		w.logger.Errorf("Correction status missing from catalog: %v", err)
		return
	}

	cutoff := time.Now().Add(-w.reminderAfter)
	requests, err := w.requestRepo.ListByStatusOlderThan(ctx, status.ID, cutoff, 100)
	if err != nil {
		w.logger.Errorf("Failed to fetch overdue corrections: %v", err)
		return
	}

	if len(requests) == 0 {
		w.logger.Debug("No overdue corrections found")
		return
	}

	w.logger.Infof("Found %d requests with overdue corrections", len(requests))

	sentCount := 0
	for i := range requests {
		req := &requests[i]
		if !w.shouldRemind(req.ID) {
			continue
		}

		if err := w.remindAgent(ctx, req); err != nil {
			w.logger.Errorf("Failed to remind agent for request %s: %v", req.ID, err)
			continue
		}
		w.markReminded(req.ID)
		sentCount++
	}

	w.logger.Infof("Correction reminders completed: sent=%d", sentCount)
}

// shouldRemind suppresses repeat reminders until a full window has elapsed
// since the last one.
func (w *CorrectionReminderWorker) shouldRemind(requestID uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	last, ok := w.reminded[requestID]
	if !ok {
		return true
	}
	return time.Since(last) >= w.reminderAfter
}

func (w *CorrectionReminderWorker) markReminded(requestID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reminded[requestID] = time.Now()
}

// remindAgent resolves the owning agent and sends the reminder email
func (w *CorrectionReminderWorker) remindAgent(ctx context.Context, req *models.OnboardingRequest) error {
	agent, err := w.userRepo.GetByID(ctx, req.AgentID)
	if err != nil {
		return err
	}

	if !agent.IsActive {
		w.logger.Warnf("Skipping reminder for request %s: agent %s is inactive", req.ID, agent.ID)
		return nil
	}

	return w.notifications.SendCorrectionReminder(ctx, req, agent.Email)
}
