package adapters

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vest-service/vest_service/pkg/metrics"
)

const (
	resendAPIBaseURL        = "https://api.resend.com"
	resendSandboxFromSender = "onboarding@resend.dev"
)

// EmailServiceConfig holds email service configuration
type EmailServiceConfig struct {
	Provider    string
	APIKey      string
	FromEmail   string
	FromName    string
	Environment string // "development", "staging", "production"
	ReplyTo     string
	// SMTP settings (for mailpit, smtp providers)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// EmailService sends investment lifecycle notifications via the
// configured email provider
type EmailService struct {
	logger     *zap.Logger
	config     EmailServiceConfig
	client     *sendgrid.Client
	httpClient *http.Client
	printer    *message.Printer
}

// NewEmailService creates a new email service
func NewEmailService(logger *zap.Logger, config EmailServiceConfig) (*EmailService, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	if provider == "" {
		return nil, fmt.Errorf("email provider is required")
	}

	if strings.TrimSpace(config.FromEmail) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	var (
		client     *sendgrid.Client
		httpClient *http.Client
	)

	switch provider {
	case "sendgrid":
		if strings.TrimSpace(config.APIKey) == "" {
			return nil, fmt.Errorf("sendgrid api key is required")
		}
		client = sendgrid.NewSendClient(config.APIKey)
	case "resend":
		if strings.TrimSpace(config.APIKey) == "" {
			return nil, fmt.Errorf("resend api key is required")
		}
		httpClient = &http.Client{Timeout: 30 * time.Second}
	case "mailpit", "smtp":
		if config.SMTPHost == "" {
			return nil, fmt.Errorf("smtp host is required for %s provider", provider)
		}
		if config.SMTPPort == 0 {
			config.SMTPPort = 1025 // default mailpit port
		}
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", provider)
	}

	return &EmailService{
		logger:     logger,
		config:     config,
		client:     client,
		httpClient: httpClient,
		printer:    message.NewPrinter(language.English),
	}, nil
}

// SendInvestmentApproved notifies a user that their investment was
// approved and is accruing interest
func (e *EmailService) SendInvestmentApproved(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error {
	e.logger.Info("Sending investment approved email",
		zap.String("email", email),
		zap.String("plan_name", planName))

	subject := "✅ Investment Approved - Vest Service"
	displayAmount := e.formatAmount(amount)
	displayDate := date.Format("January 2, 2006")
	safeName := html.EscapeString(name)
	safePlan := html.EscapeString(planName)

	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><title>Investment Approved</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #d4edda; padding: 30px; border-radius: 8px; text-align: center; border: 1px solid #c3e6cb;">
				<h1 style="color: #155724; margin-bottom: 20px;">✅ Investment Approved!</h1>
				<p style="color: #155724; font-size: 16px; line-height: 1.5; margin-bottom: 20px;">
					Hello %s, your investment of $%s in the <strong>%s</strong> plan has been approved
					and is now accruing interest.
				</p>
				<div style="background-color: white; border-radius: 8px; padding: 16px; margin: 20px 0;">
					<p style="margin: 4px 0; color: #333;"><strong>Plan:</strong> %s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Amount:</strong> $%s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Date:</strong> %s</p>
				</div>
				<p style="color: #155724; font-size: 14px;">
					You can track your investment progress from your dashboard at any time.
				</p>
			</div>
		</body>
		</html>
	`, safeName, displayAmount, safePlan, safePlan, displayAmount, displayDate)

	textContent := fmt.Sprintf(`
Investment Approved!

Hello %s, your investment of $%s in the %s plan has been approved
and is now accruing interest.

Plan: %s
Amount: $%s
Date: %s

You can track your investment progress from your dashboard at any time.

Best regards,
The Vest Service Team
	`, name, displayAmount, planName, planName, displayAmount, displayDate)

	return e.deliver(ctx, "investment_approved", email, subject, htmlContent, textContent)
}

// SendInvestmentRejected notifies a user that their investment was
// rejected and the invested amount returned to their deposit balance
func (e *EmailService) SendInvestmentRejected(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error {
	e.logger.Info("Sending investment rejected email",
		zap.String("email", email),
		zap.String("plan_name", planName))

	subject := "❌ Investment Rejected - Vest Service"
	displayAmount := e.formatAmount(amount)
	displayDate := date.Format("January 2, 2006")
	safeName := html.EscapeString(name)
	safePlan := html.EscapeString(planName)

	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><title>Investment Rejected</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #fff3cd; padding: 30px; border-radius: 8px; border: 1px solid #ffeaa7;">
				<h1 style="color: #856404; margin-bottom: 20px;">Investment Rejected</h1>
				<p style="color: #856404; font-size: 16px; line-height: 1.5; margin-bottom: 20px;">
					Hello %s, unfortunately your investment in the <strong>%s</strong> plan could not
					be approved. The invested amount of $%s has been returned to your deposit balance.
				</p>
				<div style="background-color: white; border-radius: 8px; padding: 16px; margin: 20px 0;">
					<p style="margin: 4px 0; color: #333;"><strong>Plan:</strong> %s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Refunded:</strong> $%s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Date:</strong> %s</p>
				</div>
				<p style="color: #856404; font-size: 14px;">
					If you believe this was a mistake, please contact our support team.
				</p>
			</div>
		</body>
		</html>
	`, safeName, safePlan, displayAmount, safePlan, displayAmount, displayDate)

	textContent := fmt.Sprintf(`
Investment Rejected

Hello %s, unfortunately your investment in the %s plan could not
be approved. The invested amount of $%s has been returned to your
deposit balance.

Plan: %s
Refunded: $%s
Date: %s

If you believe this was a mistake, please contact our support team.

Best regards,
The Vest Service Team
	`, name, planName, displayAmount, planName, displayAmount, displayDate)

	return e.deliver(ctx, "investment_rejected", email, subject, htmlContent, textContent)
}

// SendInvestmentCompleted notifies a user that their investment term
// has ended and the principal plus interest has been paid out
func (e *EmailService) SendInvestmentCompleted(ctx context.Context, email, name string, amount decimal.Decimal, date time.Time, planName string) error {
	e.logger.Info("Sending investment completed email",
		zap.String("email", email),
		zap.String("plan_name", planName))

	subject := "🎉 Investment Completed - Vest Service"
	displayAmount := e.formatAmount(amount)
	displayDate := date.Format("January 2, 2006")
	safeName := html.EscapeString(name)
	safePlan := html.EscapeString(planName)

	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><title>Investment Completed</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #d4edda; padding: 30px; border-radius: 8px; text-align: center; border: 1px solid #c3e6cb;">
				<h1 style="color: #155724; margin-bottom: 20px;">🎉 Investment Completed!</h1>
				<p style="color: #155724; font-size: 16px; line-height: 1.5; margin-bottom: 20px;">
					Congratulations %s! Your investment in the <strong>%s</strong> plan has reached
					the end of its term. Your principal of $%s has been returned to your deposit
					balance and the earned interest credited to your interest balance.
				</p>
				<div style="background-color: white; border-radius: 8px; padding: 16px; margin: 20px 0;">
					<p style="margin: 4px 0; color: #333;"><strong>Plan:</strong> %s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Principal Returned:</strong> $%s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Completed On:</strong> %s</p>
				</div>
				<p style="color: #155724; font-size: 14px;">
					Thank you for investing with Vest Service. Ready for your next investment?
				</p>
			</div>
		</body>
		</html>
	`, safeName, safePlan, displayAmount, safePlan, displayAmount, displayDate)

	textContent := fmt.Sprintf(`
Investment Completed!

Congratulations %s! Your investment in the %s plan has reached the
end of its term. Your principal of $%s has been returned to your
deposit balance and the earned interest credited to your interest
balance.

Plan: %s
Principal Returned: $%s
Completed On: %s

Thank you for investing with Vest Service.

Best regards,
The Vest Service Team
	`, name, planName, displayAmount, planName, displayAmount, displayDate)

	return e.deliver(ctx, "investment_completed", email, subject, htmlContent, textContent)
}

// SendAdminAlert notifies the operations mailbox about a lifecycle
// event that may need review
func (e *EmailService) SendAdminAlert(ctx context.Context, email string, amount decimal.Decimal, date time.Time, kind string) error {
	e.logger.Info("Sending admin alert email",
		zap.String("email", email),
		zap.String("kind", kind))

	subject := "Admin Alert - Vest Service"
	displayAmount := e.formatAmount(amount)
	displayDate := date.UTC().Format(time.RFC1123)
	safeKind := html.EscapeString(kind)

	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><title>Admin Alert</title></head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 24px; border-radius: 8px; border: 1px solid #e9ecef;">
				<h2 style="color: #333; margin-bottom: 16px;">Lifecycle Event: %s</h2>
				<div style="background-color: white; border-radius: 8px; padding: 16px; margin: 20px 0; border: 1px solid #dee2e6;">
					<p style="margin: 4px 0; color: #333;"><strong>Event:</strong> %s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Amount:</strong> $%s</p>
					<p style="margin: 4px 0; color: #333;"><strong>Time (UTC):</strong> %s</p>
				</div>
				<p style="color: #555; line-height: 1.6;">Review the event from the admin dashboard if needed.</p>
			</div>
		</body>
		</html>
	`, safeKind, safeKind, displayAmount, displayDate)

	textContent := fmt.Sprintf(`
Lifecycle Event: %s

Event: %s
Amount: $%s
Time (UTC): %s

Review the event from the admin dashboard if needed.
	`, kind, kind, displayAmount, displayDate)

	return e.deliver(ctx, "admin_alert", email, subject, htmlContent, textContent)
}

// deliver sends via the configured provider and records the outcome
func (e *EmailService) deliver(ctx context.Context, kind, to, subject, htmlContent, textContent string) error {
	err := e.sendEmail(ctx, to, subject, htmlContent, textContent)
	if err != nil {
		metrics.NotificationsSentTotal.WithLabelValues(kind, "failed").Inc()
		return err
	}
	metrics.NotificationsSentTotal.WithLabelValues(kind, "sent").Inc()
	return nil
}

// formatAmount renders a monetary amount with locale-aware grouping
func (e *EmailService) formatAmount(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return e.printer.Sprintf("%.2f", f)
}

// sendEmail is a helper method to send emails via the configured provider
func (e *EmailService) sendEmail(ctx context.Context, to, subject, htmlContent, textContent string) error {
	provider := strings.ToLower(e.config.Provider)

	// Add timeout to context
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch provider {
	case "resend":
		return e.sendViaResend(ctxWithTimeout, to, subject, htmlContent, textContent)
	case "sendgrid":
		return e.sendViaSendgrid(ctxWithTimeout, to, subject, htmlContent, textContent)
	case "mailpit", "smtp":
		return e.sendViaSMTP(ctxWithTimeout, to, subject, htmlContent, textContent)
	default:
		return fmt.Errorf("unsupported email provider: %s", provider)
	}
}

func (e *EmailService) sendViaSendgrid(ctx context.Context, to, subject, htmlContent, textContent string) error {
	if e.client == nil {
		return fmt.Errorf("sendgrid client not configured")
	}

	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, toEmail, textContent, htmlContent)

	if strings.TrimSpace(e.config.ReplyTo) != "" {
		message.SetReplyTo(mail.NewEmail(e.config.FromName, e.config.ReplyTo))
	}

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		e.logger.Error("Failed to send email",
			zap.String("provider", "sendgrid"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		e.logger.Error("Email service returned error",
			zap.String("provider", "sendgrid"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Int("status_code", response.StatusCode),
			zap.String("response_body", response.Body))
		return fmt.Errorf("email service error: status %d, body: %s", response.StatusCode, response.Body)
	}

	e.logger.Info("Email sent successfully",
		zap.String("provider", "sendgrid"),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("status_code", response.StatusCode))

	return nil
}

func (e *EmailService) sendViaResend(ctx context.Context, to, subject, htmlContent, textContent string) error {
	if e.httpClient == nil {
		return fmt.Errorf("resend client not configured")
	}

	fromEmail := strings.TrimSpace(e.config.FromEmail)
	if fromEmail == "" {
		return fmt.Errorf("resend from email is required")
	}

	from := fromEmail
	if strings.TrimSpace(e.config.FromName) != "" {
		from = fmt.Sprintf("%s <%s>", e.config.FromName, fromEmail)
	}

	if isNonProductionEnv(e.config.Environment) {
		domainParts := strings.SplitN(fromEmail, "@", 2)
		if len(domainParts) != 2 || strings.TrimSpace(domainParts[1]) == "" {
			return fmt.Errorf("invalid resend from address: %s", fromEmail)
		}

		domain := strings.ToLower(strings.TrimSpace(domainParts[1]))
		if domain != "resend.dev" {
			originalFrom := from
			fromEmail = resendSandboxFromSender
			if strings.TrimSpace(e.config.FromName) != "" {
				from = fmt.Sprintf("%s <%s>", e.config.FromName, resendSandboxFromSender)
			} else {
				from = resendSandboxFromSender
			}

			e.logger.Warn("Overriding Resend sender address for non-production environment",
				zap.String("original_from", originalFrom),
				zap.String("overridden_from", from),
				zap.String("environment", e.config.Environment))
		}
	}

	payload := map[string]any{
		"from":    from,
		"to":      []string{to},
		"subject": subject,
		"html":    htmlContent,
	}

	if textContent != "" {
		payload["text"] = textContent
	}
	if strings.TrimSpace(e.config.ReplyTo) != "" {
		payload["reply_to"] = e.config.ReplyTo
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIBaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.Error("Failed to send email via Resend",
			zap.String("provider", "resend"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("resend send request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		logFields := []zap.Field{
			zap.String("provider", "resend"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Int("status_code", resp.StatusCode),
			zap.String("environment", e.config.Environment),
			zap.String("response_body", string(respBody)),
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			e.logger.Error("Resend authentication failed", logFields...)
		} else {
			e.logger.Error("Resend returned error", logFields...)
		}

		return fmt.Errorf("resend email error: status %d", resp.StatusCode)
	}

	e.logger.Info("Email sent successfully",
		zap.String("provider", "resend"),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("status_code", resp.StatusCode))

	return nil
}

func (e *EmailService) sendViaSMTP(_ context.Context, to, subject, htmlContent, textContent string) error {
	from := e.config.FromEmail
	if e.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.config.FromName, e.config.FromEmail)
	}

	// Build MIME message
	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	if e.config.ReplyTo != "" {
		msg.WriteString(fmt.Sprintf("Reply-To: %s\r\n", e.config.ReplyTo))
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlContent)

	addr := fmt.Sprintf("%s:%d", e.config.SMTPHost, e.config.SMTPPort)

	var auth smtp.Auth
	if e.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)
	}

	var err error
	if e.config.SMTPUseTLS {
		err = e.sendSMTPWithTLS(addr, auth, e.config.FromEmail, to, msg.Bytes())
	} else {
		err = smtp.SendMail(addr, auth, e.config.FromEmail, []string{to}, msg.Bytes())
	}

	if err != nil {
		e.logger.Error("Failed to send email via SMTP",
			zap.String("provider", e.config.Provider),
			zap.String("to", to),
			zap.String("host", e.config.SMTPHost),
			zap.Error(err))
		return fmt.Errorf("smtp send failed: %w", err)
	}

	e.logger.Info("Email sent successfully",
		zap.String("provider", e.config.Provider),
		zap.String("to", to),
		zap.String("subject", subject))

	return nil
}

func (e *EmailService) sendSMTPWithTLS(addr string, auth smtp.Auth, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: e.config.SMTPHost})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.config.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return err
		}
	}
	if err = client.Mail(from); err != nil {
		return err
	}
	if err = client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if err != nil {
		return err
	}
	err = w.Close()
	if err != nil {
		return err
	}
	return client.Quit()
}

func isNonProductionEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "dev", "development", "local", "staging", "test", "testing":
		return true
	default:
		return false
	}
}
