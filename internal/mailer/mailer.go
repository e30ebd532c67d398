// Package mailer delivers completed audit reports over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"sow-backend/internal/audits/compliance"
)

// Config holds SMTP settings for outbound mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends audit report emails.
type Mailer struct {
	cfg Config
}

// New validates the config and constructs a Mailer.
func New(cfg Config) (*Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("SMTP_HOST is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("SMTP_FROM is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}, nil
}

// SendReport emails the rendered PDF report to a single recipient.
func (m *Mailer) SendReport(ctx context.Context, to, subject, body string, pdf []byte, filename string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient address is required")
	}
	if filename == "" {
		filename = "sow-audit-report.pdf"
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail from %s: %w", m.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to %s: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if len(pdf) > 0 {
		msg.AttachReader(filename, bytes.NewReader(pdf))
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client %s: %w", m.cfg.Host, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return classifySendError(err)
	}
	return nil
}

// classifySendError separates auth failures from transport failures so
// callers can report an actionable message without leaking credentials.
func classifySendError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "535") {
		return fmt.Errorf("smtp authentication failed: %w", err)
	}
	return fmt.Errorf("smtp send failed: %w", err)
}

// ReportBody builds the plain-text email body summarizing a completed audit.
func ReportBody(projectName string, result compliance.Result, pricing compliance.PricingReport, schedule compliance.ScheduleReport) string {
	stats := compliance.Summarize(result)

	var b strings.Builder
	if projectName == "" {
		projectName = "N/A"
	}
	fmt.Fprintf(&b, "SOW Compliance Audit Report - %s\n\n", projectName)
	fmt.Fprintf(&b, "Verdict: %s\n", fallback(result.GoNoGo, "N/A"))
	fmt.Fprintf(&b, "Compliance score: %.1f\n", result.ComplianceScore)
	fmt.Fprintf(&b, "Pillars: %d met, %d partial, %d not met of %d\n", stats.Met, stats.Partial, stats.NotMet, stats.Total)
	fmt.Fprintf(&b, "Risk spread: %d critical, %d high, %d medium, %d low\n\n", stats.CriticalRisk, stats.HighRisk, stats.MediumRisk, stats.LowRisk)

	if result.ExecutiveSummary != "" {
		fmt.Fprintf(&b, "Summary:\n%s\n\n", result.ExecutiveSummary)
	}

	if len(result.CriticalFailures) > 0 {
		b.WriteString("Critical failures:\n")
		for _, f := range result.CriticalFailures {
			fmt.Fprintf(&b, "- %s (%s, risk %s)\n", f.PillarName, f.Status, f.Risk)
		}
		b.WriteString("\n")
	}

	if !pricing.Compliant {
		b.WriteString("Pricing issues:\n")
		for _, issue := range pricing.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
	if !schedule.Compliant {
		b.WriteString("Schedule issues:\n")
		for _, issue := range schedule.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}

	b.WriteString("The full assessment is attached as a PDF.\n")
	return b.String()
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
