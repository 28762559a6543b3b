package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/repository"
	"github.com/nivobank/backoffice/internal/validation"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/metrics"
)

// RequestRepository defines the persistence surface for onboarding requests.
// Create and UpdateStatus must write the request row and its history entry in
// one transaction; UpdatePayload and UpdateStatus must reject stale versions
// with repository.ErrVersionConflict.
type RequestRepository interface {
	Create(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRequest, error)
	UpdatePayload(ctx context.Context, req *models.OnboardingRequest) error
	UpdateStatus(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error
	List(ctx context.Context, bankID, agencyID, statusID *uuid.UUID, limit, offset int) ([]models.OnboardingRequest, int64, error)
}

// HistoryRepository is the append-only transition ledger
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListForRequest(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]models.HistoryEntry, int64, error)
}

// FeedbackRepository stores per-field reviewer verdicts
type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.ValidationFeedback) error
	CurrentForRequest(ctx context.Context, requestID uuid.UUID) (map[string]models.FieldVerdict, error)
	ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.ValidationFeedback, error)
}

// Notifier dispatches downstream events. Implementations are best-effort:
// a failed dispatch is logged, never propagated as a transition failure.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]interface{})
}

// TransitionPublisher pushes accepted transitions to live subscribers
// (back-office dashboards). Best-effort like Notifier.
type TransitionPublisher interface {
	PublishTransition(req *models.OnboardingRequest, target *models.Status, actorID uuid.UUID)
}

// Controller is the onboarding lifecycle state machine. Every operation takes
// the authenticated actor descriptor and re-validates tenancy and
// role-vs-target-status compatibility before touching storage.
type Controller struct {
	requests RequestRepository
	history  HistoryRepository
	feedback FeedbackRepository
	catalog  *registry.Registry
	engine   *validation.Engine
	notifier Notifier
	feed     TransitionPublisher
	logger   *logger.Logger
	metrics  *metrics.Metrics

	initialCode   string
	submittedCode string
}

// NewController creates the lifecycle controller. notifier and feed may be
// nil; the controller then skips the corresponding side effects.
func NewController(
	requests RequestRepository,
	history HistoryRepository,
	feedback FeedbackRepository,
	catalog *registry.Registry,
	engine *validation.Engine,
	notifier Notifier,
	feed TransitionPublisher,
	log *logger.Logger,
	initialCode, submittedCode string,
) *Controller {
	return &Controller{
		requests:      requests,
		history:       history,
		feedback:      feedback,
		catalog:       catalog,
		engine:        engine,
		notifier:      notifier,
		feed:          feed,
		logger:        log,
		initialCode:   initialCode,
		submittedCode: submittedCode,
	}
}

// WithMetrics attaches the Prometheus sink. Optional; without it the
// controller runs uninstrumented.
func (c *Controller) WithMetrics(m *metrics.Metrics) *Controller {
	c.metrics = m
	return c
}

// Create opens a new onboarding request in the seeded initial status and
// writes the creation ledger entry. Agent-only.
func (c *Controller) Create(ctx context.Context, actor models.Actor, payload models.RequestPayload) (*models.OnboardingRequest, error) {
	if actor.Role != models.RoleAgent {
		return nil, &AuthorizationError{Reason: fmt.Sprintf("role %s cannot open onboarding requests", actor.Role)}
	}
	if actor.BankID == nil || actor.AgencyID == nil {
		return nil, &AuthorizationError{Reason: "agent is not attached to a bank and agency"}
	}

	initial, err := c.catalog.FindActiveByCode(c.initialCode)
	if err != nil {
		// Seed data missing: a deployment problem, not bad input
		c.logger.Errorf("Initial onboarding status %s unavailable: %v", c.initialCode, err)
		return nil, &ConfigurationError{Reason: fmt.Sprintf("initial status %s unavailable", c.initialCode), Err: err}
	}

	now := time.Now()
	req := &models.OnboardingRequest{
		ID:        uuid.New(),
		BankID:    *actor.BankID,
		AgencyID:  *actor.AgencyID,
		AgentID:   actor.UserID,
		Payload:   payload,
		StatusID:  initial.ID,
		Status:    initial,
		Version:   1,
		CreatedBy: actor.UserID,
		UpdatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	entry := c.newHistoryEntry(req, initial, actor.UserID, strPtr("Request created"), nil)
	if err := c.requests.Create(ctx, req, entry); err != nil {
		return nil, fmt.Errorf("failed to create onboarding request: %w", err)
	}

	c.logger.Info("Onboarding request created",
		logger.String("request_id", req.ID.String()),
		logger.String("agent_id", actor.UserID.String()),
	)
	if c.metrics != nil {
		c.metrics.RequestsCreatedTotal.WithLabelValues(req.BankID.String()).Inc()
	}
	return req, nil
}

// Get loads a request within the actor's tenant scope
func (c *Controller) Get(ctx context.Context, actor models.Actor, requestID uuid.UUID) (*models.OnboardingRequest, error) {
	return c.load(ctx, actor, requestID)
}

// List returns the actor's visible requests. Agents see their own agency,
// bank staff their bank, super-admins everything.
func (c *Controller) List(ctx context.Context, actor models.Actor, statusID *uuid.UUID, limit, offset int) ([]models.OnboardingRequest, int64, error) {
	var bankID, agencyID *uuid.UUID
	switch {
	case actor.IsSuperAdmin():
	case actor.Role == models.RoleAgent:
		bankID, agencyID = actor.BankID, actor.AgencyID
	default:
		bankID = actor.BankID
	}

	reqs, total, err := c.requests.List(ctx, bankID, agencyID, statusID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list onboarding requests: %w", err)
	}
	for i := range reqs {
		if st, err := c.catalog.FindByID(reqs[i].StatusID); err == nil {
			reqs[i].Status = st
		}
	}
	return reqs, total, nil
}

// UpdatePayload replaces the provided payload sections. Only permitted to
// the owning agent while the request sits in an editable status; absent
// sections keep their stored value.
func (c *Controller) UpdatePayload(ctx context.Context, actor models.Actor, requestID uuid.UUID, upd models.UpdatePayloadRequest) (*models.OnboardingRequest, error) {
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkAgentOwnership(actor, req); err != nil {
		return nil, err
	}
	if err := checkEditable(req.Status); err != nil {
		return nil, err
	}

	if upd.Personal != nil {
		req.Payload.Personal = upd.Personal
	}
	if upd.Business != nil {
		req.Payload.Business = upd.Business
	}
	if upd.Shareholders != nil {
		req.Payload.Shareholders = upd.Shareholders
	}
	if upd.Documents != nil {
		req.Payload.Documents = upd.Documents
	}
	req.UpdatedBy = actor.UserID

	// Interactive edits get the lenient pass; problems are advisory here
	if result := c.engine.Validate(req.Payload, false); !result.IsValid {
		c.logger.Debugf("Request %s payload has %d advisory validation issue(s)", req.ID, len(result.Errors))
	}

	if err := c.requests.UpdatePayload(ctx, req); err != nil {
		return nil, c.wrapWriteError(err, "failed to update payload")
	}
	return req, nil
}

// AttachDocument appends one stored-file reference to a document type.
// Subject to the same ownership and editable-state guards as payload edits.
func (c *Controller) AttachDocument(ctx context.Context, actor models.Actor, requestID uuid.UUID, att models.AttachDocumentRequest) (*models.OnboardingRequest, error) {
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkAgentOwnership(actor, req); err != nil {
		return nil, err
	}
	if err := checkEditable(req.Status); err != nil {
		return nil, err
	}

	if req.Payload.Documents == nil {
		req.Payload.Documents = make(models.DocumentSet)
	}
	req.Payload.Documents[att.DocumentType] = append(req.Payload.Documents[att.DocumentType], att.File)
	req.UpdatedBy = actor.UserID

	if err := c.requests.UpdatePayload(ctx, req); err != nil {
		return nil, c.wrapWriteError(err, "failed to attach document")
	}
	return req, nil
}

// Submit runs strict validation and, if it passes, moves the request to the
// submitted status with a ledger entry. Owning agent only, from any editable
// status.
func (c *Controller) Submit(ctx context.Context, actor models.Actor, requestID uuid.UUID, comment *string) (*models.OnboardingRequest, error) {
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkAgentOwnership(actor, req); err != nil {
		return nil, err
	}
	if err := checkEditable(req.Status); err != nil {
		return nil, err
	}

	if result := c.engine.Validate(req.Payload, true); !result.IsValid {
		if c.metrics != nil {
			c.metrics.SubmitValidationErrs.WithLabelValues(req.BankID.String()).Inc()
		}
		return nil, &ValidationError{Fields: result.Errors}
	}

	target, err := c.catalog.FindActiveByCode(c.submittedCode)
	if err != nil {
		c.logger.Errorf("Submitted onboarding status %s unavailable: %v", c.submittedCode, err)
		return nil, &ConfigurationError{Reason: fmt.Sprintf("submitted status %s unavailable", c.submittedCode), Err: err}
	}

	if comment == nil {
		comment = strPtr("Request submitted")
	}
	if err := c.applyTransition(ctx, actor, req, target, comment); err != nil {
		return nil, err
	}

	c.dispatch(ctx, "onboarding.submitted", req, target)
	return req, nil
}

// Transition moves a request to the target status code under the full guard
// set: tenant scope, target resolvability and activity, terminal-state check,
// role-vs-approval-flags, and the unresolved-error-feedback block on accept
// steps. Each accepted transition appends a ledger entry, including repeats
// of the same target.
func (c *Controller) Transition(ctx context.Context, actor models.Actor, requestID uuid.UUID, targetCode string, comment *string) (*models.OnboardingRequest, error) {
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleAgent {
		// Agents may only drive transitions on their own requests
		if err := checkAgentOwnership(actor, req); err != nil {
			return nil, err
		}
	}

	target, err := c.catalog.FindByCode(targetCode)
	if err != nil {
		return nil, &NotFoundError{Entity: "status", Err: err}
	}
	if !target.IsActive {
		c.countBlocked("inactive_status")
		return nil, &StateGuardError{Reason: fmt.Sprintf("status %s is no longer assignable", target.Label)}
	}
	if req.Status.IsTerminal() {
		c.countBlocked("terminal")
		return nil, &StateGuardError{Reason: fmt.Sprintf("request is closed (status %s)", req.Status.Label)}
	}
	if err := checkTransitionRole(actor, target); err != nil {
		c.countBlocked("role")
		return nil, err
	}

	// An accept-step transition is blocked while any field still carries an
	// unresolved error verdict
	if target.Step != nil && *target.Step == models.StepAccept {
		current, err := c.feedback.CurrentForRequest(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load review feedback: %w", err)
		}
		for fieldPath, verdict := range current {
			if verdict.Verdict == models.VerdictError {
				c.countBlocked("unresolved_feedback")
				return nil, &StateGuardError{
					Reason: fmt.Sprintf("field %s has an unresolved error verdict", fieldPath),
				}
			}
		}
	}

	if err := c.applyTransition(ctx, actor, req, target, comment); err != nil {
		return nil, err
	}

	c.dispatch(ctx, "onboarding.transitioned", req, target)
	return req, nil
}

// GetHistory returns the request's ledger in creation order
func (c *Controller) GetHistory(ctx context.Context, actor models.Actor, requestID uuid.UUID, limit, offset int) ([]models.HistoryEntry, int64, error) {
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, 0, err
	}

	entries, total, err := c.history.ListForRequest(ctx, req.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history: %w", err)
	}
	for i := range entries {
		if st, err := c.catalog.FindByID(entries[i].StatusID); err == nil {
			entries[i].StatusCode = st.Code
		}
	}
	return entries, total, nil
}

// RecordFeedback attaches a reviewer verdict to one payload field. Rows
// accumulate; CurrentFeedback resolves the latest per field.
func (c *Controller) RecordFeedback(ctx context.Context, actor models.Actor, requestID uuid.UUID, rec models.RecordFeedbackRequest) (*models.ValidationFeedback, error) {
	if err := checkReviewer(actor); err != nil {
		return nil, err
	}
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	fb := &models.ValidationFeedback{
		ID:         uuid.New(),
		RequestID:  req.ID,
		FieldPath:  rec.FieldPath,
		Verdict:    rec.Verdict,
		Comment:    rec.Comment,
		ReviewerID: actor.UserID,
		CreatedAt:  time.Now(),
	}
	if err := c.feedback.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}
	return fb, nil
}

// CurrentFeedback returns the authoritative (latest) verdict per field
func (c *Controller) CurrentFeedback(ctx context.Context, actor models.Actor, requestID uuid.UUID) (map[string]models.FieldVerdict, error) {
	req, err := c.load(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	current, err := c.feedback.CurrentForRequest(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	return current, nil
}

// load fetches a request, resolves its status from the catalog, and applies
// the tenant-scope guard.
func (c *Controller) load(ctx context.Context, actor models.Actor, requestID uuid.UUID) (*models.OnboardingRequest, error) {
	req, err := c.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Entity: "onboarding request", Err: err}
		}
		return nil, fmt.Errorf("failed to load onboarding request: %w", err)
	}

	status, err := c.catalog.FindByID(req.StatusID)
	if err != nil {
		// A request pointing at an unknown status means the catalog and the
		// data have diverged
		return nil, &ConfigurationError{Reason: fmt.Sprintf("request %s references unknown status", req.ID), Err: err}
	}
	req.Status = status

	if err := checkTenantScope(actor, req); err != nil {
		return nil, err
	}
	return req, nil
}

// applyTransition writes the status change and its ledger entry atomically
// and keeps the in-memory request in sync.
func (c *Controller) applyTransition(ctx context.Context, actor models.Actor, req *models.OnboardingRequest, target *models.Status, comment *string) error {
	from := req.Status

	req.StatusID = target.ID
	req.Status = target
	req.UpdatedBy = actor.UserID
	if reviewerRoles[actor.Role] {
		now := time.Now()
		req.ValidatedBy = &actor.UserID
		req.ValidatedAt = &now
		req.ValidationComment = comment
	}

	entry := c.newHistoryEntry(req, target, actor.UserID, comment, models.JSONB{
		"from_status": from.Code,
		"to_status":   target.Code,
	})

	if err := c.requests.UpdateStatus(ctx, req, entry); err != nil {
		// Restore so callers never observe a half-applied transition
		req.StatusID = from.ID
		req.Status = from
		return c.wrapWriteError(err, "failed to apply transition")
	}

	c.logger.Info("Onboarding request transitioned",
		logger.String("request_id", req.ID.String()),
		logger.String("from", from.Code),
		logger.String("to", target.Code),
		logger.String("actor_id", actor.UserID.String()),
	)

	if c.metrics != nil {
		c.metrics.TransitionsTotal.WithLabelValues(target.Code, actor.Role).Inc()
		if target.IsTerminal() && target.Step != nil {
			c.metrics.TimeToDecision.WithLabelValues(string(*target.Step)).
				Observe(time.Since(req.CreatedAt).Seconds())
		}
	}

	if c.feed != nil {
		c.feed.PublishTransition(req, target, actor.UserID)
	}
	return nil
}

func (c *Controller) newHistoryEntry(req *models.OnboardingRequest, status *models.Status, actorID uuid.UUID, comment *string, metadata models.JSONB) *models.HistoryEntry {
	return &models.HistoryEntry{
		ID:         uuid.New(),
		RequestID:  req.ID,
		StatusID:   status.ID,
		StatusCode: status.Code,
		ActorID:    actorID,
		Comment:    comment,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
}

// dispatch fires a downstream notification. Failures are the notifier's
// problem; transitions never roll back over them.
func (c *Controller) dispatch(ctx context.Context, event string, req *models.OnboardingRequest, target *models.Status) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(ctx, event, map[string]interface{}{
		"request_id":  req.ID.String(),
		"bank_id":     req.BankID.String(),
		"agency_id":   req.AgencyID.String(),
		"status_code": target.Code,
	})
}

func (c *Controller) countBlocked(reason string) {
	if c.metrics != nil {
		c.metrics.TransitionsBlocked.WithLabelValues(reason).Inc()
	}
}

func (c *Controller) wrapWriteError(err error, msg string) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		if c.metrics != nil {
			c.metrics.VersionConflicts.Inc()
		}
		return &ConflictError{Err: err}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: "onboarding request", Err: err}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func strPtr(s string) *string { return &s }
