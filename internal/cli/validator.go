package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/validation"
)

// ValidationResult is the CLI-facing verdict of an offline payload check
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidatePayloadFile runs the onboarding payload checks against a local JSON
// file, without touching the API. Strict mode applies the submission gate.
func ValidatePayloadFile(filename string, strict bool) (*ValidationResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var payload models.RequestPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("Invalid JSON: %v", err)},
		}, nil
	}

	return ValidatePayload(payload, strict), nil
}

// ValidatePayload runs the validation engine and flattens its per-field
// verdict into printable lines
func ValidatePayload(payload models.RequestPayload, strict bool) *ValidationResult {
	result := validation.NewEngine().Validate(payload, strict)

	out := &ValidationResult{Valid: result.IsValid, Errors: []string{}}

	fields := make([]string, 0, len(result.Errors))
	for field := range result.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", field, result.Errors[field]))
	}

	return out
}
