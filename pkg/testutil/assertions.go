package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/models"
)

// AssertErrorResponse asserts the recorder holds the expected status and an
// error body containing the given message fragment
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "unexpected status code")

	var response map[string]interface{}
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err, "failed to decode response")

	if expectedMessage != "" {
		assert.Contains(t, response["error"], expectedMessage, "unexpected error message")
	}
}

// DecodeJSON decodes the recorder body into out
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "failed to decode response body")
}

// RequireRequestStatus asserts the request carries the given status code.
// The status must have been loaded alongside the request.
func RequireRequestStatus(t *testing.T, req *models.OnboardingRequest, code string) {
	t.Helper()
	require.NotNil(t, req.Status, "request status not loaded")
	assert.Equal(t, code, req.Status.Code, "unexpected status code on request %s", req.ID)
}

// AssertLedgerTail asserts the last history entry references the given
// status code
func AssertLedgerTail(t *testing.T, entries []models.HistoryEntry, code string) {
	t.Helper()
	require.NotEmpty(t, entries, "history ledger is empty")
	assert.Equal(t, code, entries[len(entries)-1].StatusCode, "unexpected ledger tail")
}
