package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/pkg/testutil"
)

var fixtures = testutil.NewFixtureBuilder()

func TestEngine_StrictEmptyPayload(t *testing.T) {
	e := NewEngine()

	result := e.Validate(models.RequestPayload{}, true)

	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "personal")
	assert.Contains(t, result.Errors, "business")
	assert.Contains(t, result.Errors, "shareholders")
	// Every required document type must be reported, not just the first
	for _, docType := range models.RequiredDocumentTypes {
		assert.Contains(t, result.Errors, "documents."+docType)
	}
}

func TestEngine_StrictValidPayload(t *testing.T) {
	e := NewEngine()

	result := e.Validate(fixtures.ValidPayload(), true)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestEngine_NonStrictSkipsUntouchedSections(t *testing.T) {
	e := NewEngine()

	// Only the personal section has been touched; nothing else is required yet
	payload := models.RequestPayload{Personal: fixtures.ValidPayload().Personal}
	result := e.Validate(payload, false)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestEngine_NonStrictChecksTouchedSection(t *testing.T) {
	e := NewEngine()

	personal := *fixtures.ValidPayload().Personal
	personal.Email = "not-an-email"
	personal.TaxID = "bad tax id"

	result := e.Validate(models.RequestPayload{Personal: &personal}, false)

	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "personal.email")
	assert.Contains(t, result.Errors, "personal.tax_id")
}

func TestEngine_ShareholderSumTolerance(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		percents []float64
		valid    bool
	}{
		{percents: []float64{60, 39.99}, valid: true},  // 99.99, within ±0.01
		{percents: []float64{60, 40}, valid: true},     // exactly 100
		{percents: []float64{60, 40.02}, valid: false}, // 100.02
		{percents: []float64{60, 35}, valid: false},    // 95.0
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("sum=%v", tt.percents), func(t *testing.T) {
			payload := fixtures.ValidPayload()
			payload.Shareholders = []models.Shareholder{
				fixtures.IndividualShareholder("Awa", "Diallo", tt.percents[0]),
				fixtures.CompanyShareholder("Sahel Capital SA", "RC2015B1203", tt.percents[1]),
			}

			result := e.Validate(payload, true)

			if tt.valid {
				assert.True(t, result.IsValid)
				assert.NotContains(t, result.Errors, "shareholders")
			} else {
				require.False(t, result.IsValid)
				assert.Contains(t, result.Errors, "shareholders")
			}
		})
	}
}

func TestEngine_ShareholderSumIsStrictOnly(t *testing.T) {
	e := NewEngine()

	payload := models.RequestPayload{
		Shareholders: []models.Shareholder{
			fixtures.IndividualShareholder("Awa", "Diallo", 30),
		},
	}

	result := e.Validate(payload, false)
	assert.NotContains(t, result.Errors, "shareholders")
}

func TestEngine_ShareholderVariants(t *testing.T) {
	e := NewEngine()

	t.Run("individual missing person fields", func(t *testing.T) {
		payload := fixtures.ValidPayload()
		payload.Shareholders = []models.Shareholder{
			{Kind: models.ShareholderIndividual, OwnershipPercent: 100},
		}

		result := e.Validate(payload, true)

		require.False(t, result.IsValid)
		assert.Contains(t, result.Errors, "shareholders[0].first_name")
		assert.Contains(t, result.Errors, "shareholders[0].last_name")
	})

	t.Run("company missing registration fields", func(t *testing.T) {
		payload := fixtures.ValidPayload()
		payload.Shareholders = []models.Shareholder{
			{Kind: models.ShareholderCompany, OwnershipPercent: 100},
		}

		result := e.Validate(payload, true)

		require.False(t, result.IsValid)
		assert.Contains(t, result.Errors, "shareholders[0].legal_name")
		assert.Contains(t, result.Errors, "shareholders[0].registration_number")
	})

	t.Run("unknown kind rejected by tag validation", func(t *testing.T) {
		payload := fixtures.ValidPayload()
		payload.Shareholders = []models.Shareholder{
			{Kind: "trust", OwnershipPercent: 100},
		}

		result := e.Validate(payload, true)

		require.False(t, result.IsValid)
		assert.Contains(t, result.Errors, "shareholders[0].kind")
	})
}

func TestEngine_DocumentCompleteness(t *testing.T) {
	e := NewEngine()

	payload := fixtures.ValidPayload()
	delete(payload.Documents, models.DocTypeTaxCertificate)
	payload.Documents[models.DocTypeAddressProof] = nil

	result := e.Validate(payload, true)

	require.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "documents."+models.DocTypeTaxCertificate)
	assert.Contains(t, result.Errors, "documents."+models.DocTypeAddressProof)
	assert.NotContains(t, result.Errors, "documents."+models.DocTypeIdentityProof)
}

func TestEngine_ReturnsAllErrorsAtOnce(t *testing.T) {
	e := NewEngine()

	payload := fixtures.ValidPayload()
	payload.Personal.Email = "nope"
	payload.Business.RegistrationNumber = ""
	delete(payload.Documents, models.DocTypeIdentityProof)

	result := e.Validate(payload, true)

	require.False(t, result.IsValid)
	assert.GreaterOrEqual(t, len(result.Errors), 3)
}
