package models

import (
	"time"

	"github.com/google/uuid"
)

// Bank is the top-level tenant. Requests, agencies and staff all hang off a
// bank; actors may never touch another bank's requests.
type Bank struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	Settings  JSONB     `json:"settings,omitempty" db:"settings"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	CreatedBy uuid.UUID `json:"created_by,omitempty" db:"created_by"`
}

// Agency is a branch of a bank. Agents are attached to an agency and open
// requests on its behalf.
type Agency struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BankID    uuid.UUID `json:"bank_id" db:"bank_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Bank *Bank `json:"bank,omitempty" db:"-"` // Populated via joins
}

// CreateBankRequest represents a request to create a bank
type CreateBankRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Slug string `json:"slug" validate:"required,min=2,max=255,alphanum"`
}

// CreateAgencyRequest represents a request to create an agency under a bank
type CreateAgencyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
	Code string `json:"code" validate:"required,min=2,max=32,alphanum"`
}

// BankListResponse represents a paginated list of banks
type BankListResponse struct {
	Banks    []Bank `json:"banks"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// AgencyListResponse represents a paginated list of agencies
type AgencyListResponse struct {
	Agencies []Agency `json:"agencies"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}
