package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"time"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/pkg/config"
	"github.com/nivobank/backoffice/pkg/logger"
)

// NotificationChannel represents different notification channels
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSlack NotificationChannel = "slack"
)

// NotificationService handles sending notifications via various channels
type NotificationService struct {
	config      *config.NotificationConfig
	logger      *logger.Logger
	emailClient *EmailClient
	slackClient *SlackClient
	templates   *NotificationTemplates
}

// EmailClient handles email sending
type EmailClient struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
}

// SlackClient handles Slack notifications
type SlackClient struct {
	webhookURL string
	enabled    bool
}

// NotificationTemplates holds parsed email templates
type NotificationTemplates struct {
	RequestSubmitted   *template.Template
	CorrectionRequired *template.Template
	AccountOpened      *template.Template
	RequestRejected    *template.Template
	CorrectionReminder *template.Template
}

// RequestNotificationData holds data for onboarding request notifications
type RequestNotificationData struct {
	RequestID     string
	BankID        string
	AgencyID      string
	StatusCode    string
	ApplicantName string
	Comment       string
	RequestURL    string
	Timestamp     string
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.NotificationConfig, log *logger.Logger) (*NotificationService, error) {
	// Initialize email client if enabled
	var emailClient *EmailClient
	if cfg.Email.Enabled {
		emailClient = &EmailClient{
			smtpHost: cfg.Email.SMTPHost,
			smtpPort: cfg.Email.SMTPPort,
			username: cfg.Email.SMTPUser,
			password: cfg.Email.SMTPPassword,
			from:     cfg.Email.FromAddress,
		}
	}

	// Initialize Slack client if enabled
	var slackClient *SlackClient
	if cfg.Slack.Enabled {
		slackClient = &SlackClient{
			webhookURL: cfg.Slack.WebhookURL,
			enabled:    true,
		}
	}

	// Load templates
	templates, err := loadNotificationTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load notification templates: %w", err)
	}

	return &NotificationService{
		config:      cfg,
		logger:      log,
		emailClient: emailClient,
		slackClient: slackClient,
		templates:   templates,
	}, nil
}

// Notify dispatches a lifecycle event downstream. It is best-effort: every
// failure is logged and swallowed so a transition never rolls back over a
// dead SMTP server or webhook.
func (s *NotificationService) Notify(ctx context.Context, event string, payload map[string]interface{}) {
	if s.slackClient == nil || !s.slackClient.enabled {
		return
	}

	requestID, _ := payload["request_id"].(string)
	statusCode, _ := payload["status_code"].(string)

	var title, color string
	switch event {
	case "onboarding.submitted":
		color = "#2196F3" // Blue
		title = fmt.Sprintf("Request submitted: %s", requestID)
	case "onboarding.transitioned":
		color = "#FFEB3B" // Yellow
		title = fmt.Sprintf("Request %s moved to %s", requestID, statusCode)
	default:
		color = "#9E9E9E"
		title = fmt.Sprintf("%s: %s", event, requestID)
	}

	text := fmt.Sprintf("*Status:* %s", statusCode)
	if bankID, ok := payload["bank_id"].(string); ok {
		text += fmt.Sprintf("\n*Bank:* %s", bankID)
	}
	if agencyID, ok := payload["agency_id"].(string); ok {
		text += fmt.Sprintf("\n*Agency:* %s", agencyID)
	}

	if err := s.sendSlackMessage(ctx, color, title, text); err != nil {
		s.logger.Errorf("Failed to send Slack notification for %s: %v", event, err)
	}
}

// SendStatusNotification emails the agent who owns a request when it reaches
// a status they need to act on or know about.
func (s *NotificationService) SendStatusNotification(
	ctx context.Context,
	req *models.OnboardingRequest,
	agentEmail string,
) error {
	if req.Status == nil {
		return fmt.Errorf("request %s has no resolved status", req.ID)
	}

	s.logger.Infof("Sending status notification for request %s (%s)", req.ID, req.Status.Code)

	data := s.prepareRequestData(req)

	var tmpl *template.Template
	var subject string

	switch {
	case req.Status.Step != nil && *req.Status.Step == models.StepRefuse:
		tmpl = s.templates.RequestRejected
		subject = fmt.Sprintf("Onboarding Request Rejected: %s", data.RequestID)
	case req.Status.Step != nil && *req.Status.Step == models.StepAccept:
		tmpl = s.templates.AccountOpened
		subject = fmt.Sprintf("Account Opened: %s", data.RequestID)
	case req.Status.AllowsEdit && req.ValidatedBy != nil:
		tmpl = s.templates.CorrectionRequired
		subject = fmt.Sprintf("Correction Required: %s", data.RequestID)
	default:
		tmpl = s.templates.RequestSubmitted
		subject = fmt.Sprintf("Onboarding Request Update: %s", data.RequestID)
	}

	var errors []error

	if s.config.Email.Enabled && agentEmail != "" {
		if err := s.sendEmail(ctx, agentEmail, subject, data, tmpl); err != nil {
			s.logger.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %v", errors)
	}

	return nil
}

// SendCorrectionReminder emails the agent about a request that has been
// sitting in correction-required past the configured reminder window.
func (s *NotificationService) SendCorrectionReminder(
	ctx context.Context,
	req *models.OnboardingRequest,
	agentEmail string,
) error {
	s.logger.Infof("Sending correction reminder for request %s", req.ID)

	data := s.prepareRequestData(req)
	subject := fmt.Sprintf("Reminder: Corrections Pending for %s", data.RequestID)

	var errors []error

	if s.config.Email.Enabled && agentEmail != "" {
		if err := s.sendEmail(ctx, agentEmail, subject, data, s.templates.CorrectionReminder); err != nil {
			s.logger.Errorf("Failed to send reminder email: %v", err)
			errors = append(errors, err)
		}
	}

	if s.config.Slack.Enabled {
		text := fmt.Sprintf("*Request:* %s\n*Agency:* %s\n*Waiting since:* %s",
			data.RequestID, data.AgencyID, req.UpdatedAt.Format(time.RFC3339))
		if err := s.sendSlackMessage(ctx, "#FF9800", fmt.Sprintf("Correction overdue: %s", data.RequestID), text); err != nil {
			s.logger.Errorf("Failed to send reminder Slack message: %v", err)
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %v", errors)
	}

	return nil
}

// prepareRequestData prepares request data for templates
func (s *NotificationService) prepareRequestData(req *models.OnboardingRequest) RequestNotificationData {
	data := RequestNotificationData{
		RequestID:  req.ID.String(),
		BankID:     req.BankID.String(),
		AgencyID:   req.AgencyID.String(),
		Timestamp:  req.UpdatedAt.Format(time.RFC3339),
		RequestURL: fmt.Sprintf("%s/requests/%s", s.config.BaseURL, req.ID.String()),
	}

	if req.Status != nil {
		data.StatusCode = req.Status.Code
	}

	if req.Payload.Personal != nil {
		data.ApplicantName = fmt.Sprintf("%s %s", req.Payload.Personal.FirstName, req.Payload.Personal.LastName)
	} else if req.Payload.Business != nil {
		data.ApplicantName = req.Payload.Business.LegalName
	}

	if req.ValidationComment != nil {
		data.Comment = *req.ValidationComment
	}

	return data
}

// sendEmail renders a template and sends it via SMTP
func (s *NotificationService) sendEmail(
	ctx context.Context,
	to string,
	subject string,
	data RequestNotificationData,
	tmpl *template.Template,
) error {
	if s.emailClient == nil {
		return fmt.Errorf("email client not configured")
	}

	// Render template
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	message := fmt.Sprintf("From: %s\r\n", s.emailClient.from)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += body.String()

	// Send email
	auth := smtp.PlainAuth("", s.emailClient.username, s.emailClient.password, s.emailClient.smtpHost)
	addr := fmt.Sprintf("%s:%d", s.emailClient.smtpHost, s.emailClient.smtpPort)

	if err := smtp.SendMail(addr, auth, s.emailClient.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent successfully to %s", to)
	return nil
}

// sendSlackMessage posts an attachment to the configured webhook
func (s *NotificationService) sendSlackMessage(ctx context.Context, color, title, text string) error {
	if s.slackClient == nil || !s.slackClient.enabled {
		return fmt.Errorf("slack client not configured")
	}

	payload := map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"color":  color,
				"title":  title,
				"text":   text,
				"footer": "Back Office",
				"ts":     time.Now().Unix(),
			},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	// Send HTTP request
	req, err := http.NewRequestWithContext(ctx, "POST", s.slackClient.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned non-200 status: %d", resp.StatusCode)
	}

	return nil
}

// loadNotificationTemplates loads email templates
func loadNotificationTemplates() (*NotificationTemplates, error) {
	submittedTmpl, err := template.New("request_submitted").Parse(requestSubmittedEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse submitted template: %w", err)
	}

	correctionTmpl, err := template.New("correction_required").Parse(correctionRequiredEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse correction template: %w", err)
	}

	openedTmpl, err := template.New("account_opened").Parse(accountOpenedEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse account opened template: %w", err)
	}

	rejectedTmpl, err := template.New("request_rejected").Parse(requestRejectedEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rejected template: %w", err)
	}

	reminderTmpl, err := template.New("correction_reminder").Parse(correctionReminderEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder template: %w", err)
	}

	return &NotificationTemplates{
		RequestSubmitted:   submittedTmpl,
		CorrectionRequired: correctionTmpl,
		AccountOpened:      openedTmpl,
		RequestRejected:    rejectedTmpl,
		CorrectionReminder: reminderTmpl,
	}, nil
}
