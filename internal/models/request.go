package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ShareholderKind discriminates the two shareholder variants
type ShareholderKind string

const (
	ShareholderIndividual ShareholderKind = "individual"
	ShareholderCompany    ShareholderKind = "company"
)

// Document type keys required before submission. Each must carry at least one
// stored file in strict validation.
const (
	DocTypeIdentityProof        = "identity_proof"
	DocTypeAddressProof         = "address_proof"
	DocTypeBusinessRegistration = "business_registration"
	DocTypeTaxCertificate       = "tax_certificate"
)

// RequiredDocumentTypes lists the document sections strict validation checks.
var RequiredDocumentTypes = []string{
	DocTypeIdentityProof,
	DocTypeAddressProof,
	DocTypeBusinessRegistration,
	DocTypeTaxCertificate,
}

// PersonalInfo is the applicant section of the request payload
type PersonalInfo struct {
	FirstName   string `json:"first_name" validate:"required,min=1,max=100"`
	LastName    string `json:"last_name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=6,max=20"`
	BirthDate   string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Nationality string `json:"nationality" validate:"required,len=2"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	TaxID       string `json:"tax_id" validate:"required,taxid"`
}

// BusinessInfo is the company section of the request payload
type BusinessInfo struct {
	LegalName          string   `json:"legal_name" validate:"required,min=2,max=255"`
	TradeName          *string  `json:"trade_name,omitempty"`
	RegistrationNumber string   `json:"registration_number" validate:"required,alphanum"`
	TaxID              string   `json:"tax_id" validate:"required,taxid"`
	LegalForm          string   `json:"legal_form" validate:"required"`
	Sector             string   `json:"sector" validate:"required"`
	Address            string   `json:"address" validate:"required"`
	City               string   `json:"city" validate:"required"`
	AnnualRevenue      *float64 `json:"annual_revenue,omitempty" validate:"omitempty,gte=0"`
}

// Shareholder is one entry of the ordered shareholder list. Kind selects the
// variant: individual entries carry person fields, company entries carry
// registration fields.
type Shareholder struct {
	Kind             ShareholderKind `json:"kind" validate:"required,oneof=individual company"`
	OwnershipPercent float64         `json:"ownership_percent" validate:"gt=0,lte=100"`

	// Individual variant
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty"`
	Nationality *string `json:"nationality,omitempty"`

	// Company variant
	LegalName          *string `json:"legal_name,omitempty"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
}

// StoredFile is the reference returned by the file storage collaborator. Raw
// bytes never enter the request payload.
type StoredFile struct {
	URL          string    `json:"url" validate:"required,url"`
	OriginalName string    `json:"original_name" validate:"required"`
	MimeType     string    `json:"mime_type" validate:"required"`
	Size         int64     `json:"size" validate:"gt=0"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// DocumentSet maps a document-type key to its ordered stored files
type DocumentSet map[string][]StoredFile

// RequestPayload groups the four independently-populated sections
type RequestPayload struct {
	Personal     *PersonalInfo `json:"personal,omitempty"`
	Business     *BusinessInfo `json:"business,omitempty"`
	Shareholders []Shareholder `json:"shareholders,omitempty"`
	Documents    DocumentSet   `json:"documents,omitempty"`
}

// Value implements driver.Valuer so RequestPayload can back a JSONB column
func (p RequestPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for RequestPayload
func (p *RequestPayload) Scan(value interface{}) error {
	if value == nil {
		*p = RequestPayload{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected column type %T for request payload", value)
	}
	return json.Unmarshal(bytes, p)
}

// OnboardingRequest is the central lifecycle entity. Version backs the
// optimistic lock: every status or payload write must carry the version it
// read, and the store rejects stale writes.
type OnboardingRequest struct {
	ID       uuid.UUID `json:"id" db:"id"`
	BankID   uuid.UUID `json:"bank_id" db:"bank_id"`
	AgencyID uuid.UUID `json:"agency_id" db:"agency_id"`
	AgentID  uuid.UUID `json:"agent_id" db:"agent_id"`

	Payload RequestPayload `json:"payload"`

	StatusID uuid.UUID `json:"status_id" db:"status_id"`
	Status   *Status   `json:"status,omitempty" db:"-"` // Loaded via join
	Version  int       `json:"version" db:"version"`

	CreatedBy         uuid.UUID  `json:"created_by" db:"created_by"`
	UpdatedBy         uuid.UUID  `json:"updated_by" db:"updated_by"`
	ValidatedBy       *uuid.UUID `json:"validated_by,omitempty" db:"validated_by"`
	ValidatedAt       *time.Time `json:"validated_at,omitempty" db:"validated_at"`
	ValidationComment *string    `json:"validation_comment,omitempty" db:"validation_comment"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Request/Response DTOs

// UpdatePayloadRequest carries a partial payload update. Only non-nil
// sections are replaced; absent sections keep their stored value.
type UpdatePayloadRequest struct {
	Personal     *PersonalInfo `json:"personal,omitempty"`
	Business     *BusinessInfo `json:"business,omitempty"`
	Shareholders []Shareholder `json:"shareholders,omitempty"`
	Documents    DocumentSet   `json:"documents,omitempty"`
}

// AttachDocumentRequest appends one stored-file reference to a document type
type AttachDocumentRequest struct {
	DocumentType string     `json:"document_type" validate:"required"`
	File         StoredFile `json:"file" validate:"required"`
}

// TransitionRequest asks the controller to move a request to a target status
type TransitionRequest struct {
	TargetStatusCode string  `json:"target_status_code" validate:"required"`
	Comment          *string `json:"comment,omitempty"`
}

// SubmitRequest carries the optional agent comment recorded on submission
type SubmitRequest struct {
	Comment *string `json:"comment,omitempty"`
}

// RequestListResponse represents a paginated list of onboarding requests
type RequestListResponse struct {
	Requests []OnboardingRequest `json:"requests"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// Value implements driver.Valuer so DocumentSet can back a JSONB column
func (d DocumentSet) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(map[string][]StoredFile{})
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for DocumentSet
func (d *DocumentSet) Scan(value interface{}) error {
	if value == nil {
		*d = make(DocumentSet)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unexpected column type %T for document set", value)
	}
	result := make(DocumentSet)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*d = result
	return nil
}
