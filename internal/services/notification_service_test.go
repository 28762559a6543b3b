package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/pkg/config"
	"github.com/nivobank/backoffice/pkg/logger"
)

func TestNewNotificationService(t *testing.T) {
	log, err := logger.New("info", "json")
	require.NoError(t, err)

	cfg := &config.NotificationConfig{
		BaseURL: "http://localhost:8080",
		Email: config.EmailConfig{
			Enabled:      false,
			SMTPHost:     "smtp.gmail.com",
			SMTPPort:     587,
			SMTPUser:     "test@example.com",
			SMTPPassword: "password",
			FromAddress:  "noreply@example.com",
		},
		Slack: config.SlackConfig{
			Enabled:    false,
			WebhookURL: "https://hooks.slack.com/test",
		},
	}

	svc, err := NewNotificationService(cfg, log)

	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.NotNil(t, svc.templates)
	assert.NotNil(t, svc.templates.RequestSubmitted)
	assert.NotNil(t, svc.templates.CorrectionRequired)
	assert.NotNil(t, svc.templates.AccountOpened)
	assert.NotNil(t, svc.templates.RequestRejected)
	assert.NotNil(t, svc.templates.CorrectionReminder)
}

func TestLoadNotificationTemplates(t *testing.T) {
	templates, err := loadNotificationTemplates()

	require.NoError(t, err)
	assert.NotNil(t, templates)
	assert.NotNil(t, templates.RequestSubmitted)
	assert.NotNil(t, templates.CorrectionRequired)
	assert.NotNil(t, templates.AccountOpened)
	assert.NotNil(t, templates.RequestRejected)
	assert.NotNil(t, templates.CorrectionReminder)
}

func TestPrepareRequestData(t *testing.T) {
	log, err := logger.New("info", "json")
	require.NoError(t, err)

	cfg := &config.NotificationConfig{
		BaseURL: "http://localhost:8080",
		Email: config.EmailConfig{
			Enabled: false,
		},
		Slack: config.SlackConfig{
			Enabled: false,
		},
	}

	svc, err := NewNotificationService(cfg, log)
	require.NoError(t, err)

	comment := "Missing address proof"
	req := &models.OnboardingRequest{
		ID:       uuid.New(),
		BankID:   uuid.New(),
		AgencyID: uuid.New(),
		Payload: models.RequestPayload{
			Personal: &models.PersonalInfo{
				FirstName: "Amina",
				LastName:  "Diallo",
			},
		},
		Status: &models.Status{
			Code: "REQSTATUS00034",
		},
		ValidationComment: &comment,
		UpdatedAt:         time.Now(),
	}

	data := svc.prepareRequestData(req)

	assert.Equal(t, req.ID.String(), data.RequestID)
	assert.Equal(t, req.BankID.String(), data.BankID)
	assert.Equal(t, req.AgencyID.String(), data.AgencyID)
	assert.Equal(t, "REQSTATUS00034", data.StatusCode)
	assert.Equal(t, "Amina Diallo", data.ApplicantName)
	assert.Equal(t, comment, data.Comment)
	assert.Contains(t, data.RequestURL, req.ID.String())
	assert.NotEmpty(t, data.Timestamp)
}

func TestPrepareRequestDataBusinessFallback(t *testing.T) {
	log, err := logger.New("info", "json")
	require.NoError(t, err)

	svc, err := NewNotificationService(&config.NotificationConfig{BaseURL: "http://localhost:8080"}, log)
	require.NoError(t, err)

	req := &models.OnboardingRequest{
		ID: uuid.New(),
		Payload: models.RequestPayload{
			Business: &models.BusinessInfo{
				LegalName: "Sahel Trading SARL",
			},
		},
		UpdatedAt: time.Now(),
	}

	data := svc.prepareRequestData(req)
	assert.Equal(t, "Sahel Trading SARL", data.ApplicantName)
	assert.Empty(t, data.StatusCode)
}

func TestCorrectionRequiredEmailTemplate(t *testing.T) {
	templates, err := loadNotificationTemplates()
	require.NoError(t, err)

	data := RequestNotificationData{
		RequestID:     uuid.New().String(),
		StatusCode:    "REQSTATUS00034",
		ApplicantName: "Amina Diallo",
		Comment:       "Birth date does not match the identity document",
		RequestURL:    "http://localhost:8080/requests/123",
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	var result string
	err = templates.CorrectionRequired.Execute(&testWriter{output: &result}, data)

	require.NoError(t, err)
	assert.Contains(t, result, data.RequestID)
	assert.Contains(t, result, data.ApplicantName)
	assert.Contains(t, result, data.Comment)
	assert.Contains(t, result, "Correction Required")
}

func TestAccountOpenedEmailTemplate(t *testing.T) {
	templates, err := loadNotificationTemplates()
	require.NoError(t, err)

	data := RequestNotificationData{
		RequestID:     uuid.New().String(),
		StatusCode:    "REQSTATUS00039",
		ApplicantName: "Sahel Trading SARL",
		RequestURL:    "http://localhost:8080/requests/123",
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	var result string
	err = templates.AccountOpened.Execute(&testWriter{output: &result}, data)

	require.NoError(t, err)
	assert.Contains(t, result, data.RequestID)
	assert.Contains(t, result, data.ApplicantName)
	assert.Contains(t, result, "Account Opened")
}

func TestRequestRejectedEmailTemplate(t *testing.T) {
	templates, err := loadNotificationTemplates()
	require.NoError(t, err)

	data := RequestNotificationData{
		RequestID:     uuid.New().String(),
		StatusCode:    "REQSTATUS00038",
		ApplicantName: "Amina Diallo",
		Comment:       "Sanctions screening hit",
		RequestURL:    "http://localhost:8080/requests/123",
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	var result string
	err = templates.RequestRejected.Execute(&testWriter{output: &result}, data)

	require.NoError(t, err)
	assert.Contains(t, result, data.RequestID)
	assert.Contains(t, result, data.Comment)
	assert.Contains(t, result, "Request Rejected")
}

func TestCorrectionReminderEmailTemplate(t *testing.T) {
	templates, err := loadNotificationTemplates()
	require.NoError(t, err)

	data := RequestNotificationData{
		RequestID:     uuid.New().String(),
		StatusCode:    "REQSTATUS00034",
		ApplicantName: "Amina Diallo",
		RequestURL:    "http://localhost:8080/requests/123",
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	var result string
	err = templates.CorrectionReminder.Execute(&testWriter{output: &result}, data)

	require.NoError(t, err)
	assert.Contains(t, result, data.RequestID)
	assert.Contains(t, result, "Corrections Still Pending")
}

// testWriter is a helper to capture template execution output
type testWriter struct {
	output *string
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	*w.output += string(p)
	return len(p), nil
}
