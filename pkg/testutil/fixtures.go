package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// FixtureBuilder provides methods to create test fixtures
type FixtureBuilder struct{}

// NewFixtureBuilder creates a new fixture builder
func NewFixtureBuilder() *FixtureBuilder {
	return &FixtureBuilder{}
}

// StatusCatalog builds the full seeded status catalog used in tests. Codes
// and metadata mirror the production seed.
func (fb *FixtureBuilder) StatusCatalog() []models.Status {
	signature := models.StepSignature
	refuse := models.StepRefuse
	accept := models.StepAccept
	abandon := models.StepAbandon

	entries := []struct {
		code   string
		label  string
		rank   int
		edit   bool
		client bool
		cto    bool
		n1     bool
		n2     bool
		step   *models.StepKind
	}{
		{code: "REQSTATUS00030", label: "draft", rank: 10, edit: true, client: true},
		{code: "REQSTATUS00031", label: "data-complete", rank: 20},
		{code: "REQSTATUS00032", label: "signature-pending", rank: 30, step: &signature},
		{code: "REQSTATUS00033", label: "submitted", rank: 40, client: true},
		{code: "REQSTATUS00034", label: "correction-required", rank: 50, edit: true, client: true},
		{code: "REQSTATUS00035", label: "cto-review", rank: 60, cto: true},
		{code: "REQSTATUS00036", label: "n2-review", rank: 70, n2: true},
		{code: "REQSTATUS00037", label: "n1-review", rank: 75, n1: true},
		{code: "REQSTATUS00038", label: "rejected", rank: 80, client: true, step: &refuse},
		{code: "REQSTATUS00039", label: "account-opened", rank: 90, client: true, step: &accept},
		{code: "REQSTATUS00040", label: "abandoned", rank: 95, step: &abandon},
	}

	now := time.Now()
	statuses := make([]models.Status, 0, len(entries))
	for _, e := range entries {
		statuses = append(statuses, models.Status{
			ID:            uuid.New(),
			Code:          e.code,
			Label:         e.label,
			Rank:          e.rank,
			IsActive:      true,
			AllowsEdit:    e.edit,
			ClientVisible: e.client,
			RequiresCTO:   e.cto,
			RequiresN1:    e.n1,
			RequiresN2:    e.n2,
			Step:          e.step,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return statuses
}

// ValidPayload builds a payload that passes strict validation: complete
// personal and business sections, shareholders summing to exactly 100, and
// one file per required document type.
func (fb *FixtureBuilder) ValidPayload() models.RequestPayload {
	docs := make(models.DocumentSet)
	for _, docType := range models.RequiredDocumentTypes {
		docs[docType] = []models.StoredFile{fb.StoredFile(docType + ".pdf")}
	}

	return models.RequestPayload{
		Personal: &models.PersonalInfo{
			FirstName:   "Awa",
			LastName:    "Diallo",
			Email:       "awa.diallo@example.com",
			Phone:       "+221771234567",
			BirthDate:   "1988-04-12",
			Nationality: "SN",
			Address:     "12 Rue des Manguiers",
			City:        "Dakar",
			TaxID:       "SN12345678",
		},
		Business: &models.BusinessInfo{
			LegalName:          "Diallo Trading SARL",
			RegistrationNumber: "RC2019B4412",
			TaxID:              "SN87654321",
			LegalForm:          "SARL",
			Sector:             "wholesale",
			Address:            "Zone Industrielle Lot 7",
			City:               "Dakar",
		},
		Shareholders: []models.Shareholder{
			fb.IndividualShareholder("Awa", "Diallo", 60),
			fb.CompanyShareholder("Sahel Capital SA", "RC2015B1203", 40),
		},
		Documents: docs,
	}
}

// IndividualShareholder builds an individual-variant shareholder
func (fb *FixtureBuilder) IndividualShareholder(first, last string, percent float64) models.Shareholder {
	return models.Shareholder{
		Kind:             models.ShareholderIndividual,
		OwnershipPercent: percent,
		FirstName:        StringPtr(first),
		LastName:         StringPtr(last),
		Nationality:      StringPtr("SN"),
	}
}

// CompanyShareholder builds a company-variant shareholder
func (fb *FixtureBuilder) CompanyShareholder(name, regNumber string, percent float64) models.Shareholder {
	return models.Shareholder{
		Kind:               models.ShareholderCompany,
		OwnershipPercent:   percent,
		LegalName:          StringPtr(name),
		RegistrationNumber: StringPtr(regNumber),
	}
}

// StoredFile builds a stored-file reference as the storage collaborator
// would return it
func (fb *FixtureBuilder) StoredFile(name string) models.StoredFile {
	return models.StoredFile{
		URL:          "https://files.example.com/" + uuid.New().String() + "/" + name,
		OriginalName: name,
		MimeType:     "application/pdf",
		Size:         128 * 1024,
		UploadedAt:   time.Now(),
	}
}

// Actor builds an actor descriptor with the given role and tenant scope
func (fb *FixtureBuilder) Actor(role string, bankID, agencyID uuid.UUID) models.Actor {
	return models.Actor{
		UserID:   uuid.New(),
		Role:     role,
		BankID:   &bankID,
		AgencyID: &agencyID,
	}
}

// User creates a test user
func (fb *FixtureBuilder) User(role string, overrides ...func(*models.User)) *models.User {
	id := uuid.New()
	now := time.Now()

	user := &models.User{
		ID:           id,
		Username:     "user-" + id.String()[:8],
		Email:        "user-" + id.String()[:8] + "@example.com",
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMye",
		RoleID:       uuid.New(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Role:         &models.Role{ID: uuid.New(), Name: role},
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// Helper functions

// StringPtr returns a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to a float64
func Float64Ptr(f float64) *float64 {
	return &f
}

// TimePtr returns a pointer to a time
func TimePtr(t time.Time) *time.Time {
	return &t
}

// UUIDPtr returns a pointer to a UUID
func UUIDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
