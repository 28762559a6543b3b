package lifecycle

import "fmt"

// The lifecycle error taxonomy. Every guard failure is a synchronous,
// recoverable error the transport layer maps to a 4xx; only
// ConfigurationError indicates a provisioning problem needing operator
// attention.

// ConfigurationError means required reference data is missing or unusable
// (e.g. the seeded initial status). The system is not correctly provisioned.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NotFoundError means the referenced entity does not exist or is outside the
// acting tenant's scope. Cross-tenant requests are reported as not found so
// their existence is not leaked.
type NotFoundError struct {
	Entity string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// StateGuardError means the current or target status does not permit the
// attempted operation.
type StateGuardError struct {
	Reason string
}

func (e *StateGuardError) Error() string { return e.Reason }

// AuthorizationError means the actor's role or tenant linkage does not
// satisfy the operation's requirements.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ValidationError carries the complete per-field error map from a failed
// strict validation pass, so a form can surface every problem in one round
// trip.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// ConflictError means a concurrent transition won the optimistic-lock race.
// The caller should reload and retry if still relevant.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return "request was modified concurrently"
}

func (e *ConflictError) Unwrap() error { return e.Err }
