package lifecycle

import (
	"fmt"

	"github.com/nivobank/backoffice/internal/models"
)

// Guards are pure functions over (actor, request, status): they return an
// error from the lifecycle taxonomy or nil, and never touch storage. This
// keeps the state machine testable without an HTTP harness.

// reviewerRoles are the roles allowed to drive review transitions when the
// target status carries no elevated-approval flag.
var reviewerRoles = map[string]bool{
	models.RoleBankStaff: true,
	models.RoleCTO:       true,
	models.RoleN1:        true,
	models.RoleN2:        true,
}

// checkTenantScope hides requests outside the actor's bank. Super-admins see
// every tenant.
func checkTenantScope(actor models.Actor, req *models.OnboardingRequest) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if actor.BankID == nil || *actor.BankID != req.BankID {
		return &NotFoundError{Entity: "onboarding request"}
	}
	return nil
}

// checkAgentOwnership ensures the actor is the agent who owns the request,
// in the owning agency. Payload edits and submission are agent-only.
func checkAgentOwnership(actor models.Actor, req *models.OnboardingRequest) error {
	if err := checkTenantScope(actor, req); err != nil {
		return err
	}
	if actor.Role != models.RoleAgent {
		return &AuthorizationError{Reason: fmt.Sprintf("role %s cannot edit onboarding requests", actor.Role)}
	}
	if actor.UserID != req.AgentID {
		return &AuthorizationError{Reason: "request belongs to another agent"}
	}
	if actor.AgencyID == nil || *actor.AgencyID != req.AgencyID {
		return &AuthorizationError{Reason: "request belongs to another agency"}
	}
	return nil
}

// checkEditable rejects payload mutation outside the editable status set
func checkEditable(status *models.Status) error {
	if status == nil {
		return &ConfigurationError{Reason: "request has no resolvable status"}
	}
	if status.IsTerminal() {
		return &StateGuardError{Reason: fmt.Sprintf("request is closed (status %s)", status.Label)}
	}
	if !status.AllowsEdit {
		return &StateGuardError{Reason: fmt.Sprintf("request is not editable in status %s", status.Label)}
	}
	return nil
}

// checkTransitionRole verifies the actor's role satisfies the target
// status's approval requirements. A target flagged for CTO/N1/N2 sign-off
// admits only that role; it is never silently downgraded.
func checkTransitionRole(actor models.Actor, target *models.Status) error {
	if actor.IsSuperAdmin() {
		return nil
	}

	switch {
	case target.RequiresCTO:
		if actor.Role != models.RoleCTO {
			return &AuthorizationError{Reason: fmt.Sprintf("status %s requires CTO sign-off", target.Label)}
		}
	case target.RequiresN2:
		if actor.Role != models.RoleN2 {
			return &AuthorizationError{Reason: fmt.Sprintf("status %s requires second-level approval", target.Label)}
		}
	case target.RequiresN1:
		if actor.Role != models.RoleN1 {
			return &AuthorizationError{Reason: fmt.Sprintf("status %s requires first-level approval", target.Label)}
		}
	case target.Step != nil && *target.Step == models.StepAbandon:
		// Abandoning is open to the owning agent as well as reviewers
		if actor.Role != models.RoleAgent && !reviewerRoles[actor.Role] {
			return &AuthorizationError{Reason: fmt.Sprintf("role %s cannot abandon requests", actor.Role)}
		}
	default:
		if !reviewerRoles[actor.Role] {
			return &AuthorizationError{Reason: fmt.Sprintf("role %s cannot review onboarding requests", actor.Role)}
		}
	}
	return nil
}

// checkReviewer gates feedback recording to review-capable roles
func checkReviewer(actor models.Actor) error {
	if actor.IsSuperAdmin() || reviewerRoles[actor.Role] {
		return nil
	}
	return &AuthorizationError{Reason: fmt.Sprintf("role %s cannot record review feedback", actor.Role)}
}
