package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nivobank/backoffice/internal/models"
)

// PercentTolerance is the allowed deviation of the shareholder ownership sum
// from 100. Exceeding it blocks submission.
const PercentTolerance = 0.01

var taxIDPattern = regexp.MustCompile(`^[A-Z0-9]{8,15}$`)

// Result is the structured verdict of a validation pass. Errors maps payload
// field dot-paths to a human-readable message; the caller gets every problem
// at once, not just the first.
type Result struct {
	IsValid bool              `json:"is_valid"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (r *Result) add(fieldPath, message string) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	if _, exists := r.Errors[fieldPath]; !exists {
		r.Errors[fieldPath] = message
	}
	r.IsValid = false
}

// Engine checks onboarding payloads. In non-strict mode only the sections the
// client has touched are checked; strict mode is the submission gate and
// requires every section complete and well-formed. The engine never returns
// an error for bad payload content, only a Result.
type Engine struct {
	validate *validator.Validate
}

// NewEngine creates a validation engine
func NewEngine() *Engine {
	v := validator.New()

	// Resolve field names from json tags so error paths match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("taxid", func(fl validator.FieldLevel) bool {
		return taxIDPattern.MatchString(fl.Field().String())
	})

	return &Engine{validate: v}
}

// Validate checks the four payload sections and returns a per-field verdict.
// Strict mode is the precondition for the submit transition.
func (e *Engine) Validate(payload models.RequestPayload, strict bool) Result {
	result := Result{IsValid: true}

	e.checkPersonal(payload.Personal, strict, &result)
	e.checkBusiness(payload.Business, strict, &result)
	e.checkShareholders(payload.Shareholders, strict, &result)
	e.checkDocuments(payload.Documents, strict, &result)

	return result
}

func (e *Engine) checkPersonal(p *models.PersonalInfo, strict bool, result *Result) {
	if p == nil {
		if strict {
			result.add("personal", "personal information is required")
		}
		return
	}
	e.checkStruct("personal", p, result)
}

func (e *Engine) checkBusiness(b *models.BusinessInfo, strict bool, result *Result) {
	if b == nil {
		if strict {
			result.add("business", "business information is required")
		}
		return
	}
	e.checkStruct("business", b, result)
}

func (e *Engine) checkShareholders(shareholders []models.Shareholder, strict bool, result *Result) {
	if len(shareholders) == 0 {
		if strict {
			result.add("shareholders", "at least one shareholder is required")
		}
		return
	}

	var sum float64
	for i, sh := range shareholders {
		prefix := fmt.Sprintf("shareholders[%d]", i)
		e.checkStruct(prefix, &sh, result)
		e.checkShareholderVariant(prefix, sh, result)
		sum += sh.OwnershipPercent
	}

	// The ownership sum is a hard submission precondition, not a warning
	if strict && math.Abs(sum-100) > PercentTolerance {
		result.add("shareholders", fmt.Sprintf("ownership percentages must sum to 100, got %.2f", sum))
	}
}

// checkShareholderVariant enforces the fields each variant needs beyond the
// shared ones. The Kind discriminant itself is checked by struct tags.
func (e *Engine) checkShareholderVariant(prefix string, sh models.Shareholder, result *Result) {
	switch sh.Kind {
	case models.ShareholderIndividual:
		if isBlank(sh.FirstName) {
			result.add(prefix+".first_name", "first name is required for individual shareholders")
		}
		if isBlank(sh.LastName) {
			result.add(prefix+".last_name", "last name is required for individual shareholders")
		}
	case models.ShareholderCompany:
		if isBlank(sh.LegalName) {
			result.add(prefix+".legal_name", "legal name is required for company shareholders")
		}
		if isBlank(sh.RegistrationNumber) {
			result.add(prefix+".registration_number", "registration number is required for company shareholders")
		}
	}
}

func (e *Engine) checkDocuments(docs models.DocumentSet, strict bool, result *Result) {
	if !strict {
		return
	}
	for _, docType := range models.RequiredDocumentTypes {
		if len(docs[docType]) == 0 {
			result.add("documents."+docType, fmt.Sprintf("at least one %s document is required", docType))
		}
	}
}

// checkStruct runs tag validation on one section and flattens the outcome
// into dot-path errors under the given prefix.
func (e *Engine) checkStruct(prefix string, section interface{}, result *Result) {
	err := e.validate.Struct(section)
	if err == nil {
		return
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		result.add(prefix, "invalid section")
		return
	}

	for _, fe := range validationErrors {
		result.add(prefix+"."+fe.Field(), fieldMessage(fe))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "taxid":
		return fmt.Sprintf("%s must be 8-15 uppercase letters or digits", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s must contain only alphanumeric characters", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation for '%s'", fe.Field(), fe.Tag())
	}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
