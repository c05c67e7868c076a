package notify

import (
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/urlsentry/urlsentry-backend/internal/config"
)

// Notifier sends moderation alerts. Delivery is disabled when no SendGrid API
// key or recipient is configured.
type Notifier struct {
	apiKey  string
	from    string
	to      string
	sandbox bool
}

func New(cfg *config.Config) *Notifier {
	return &Notifier{
		apiKey:  cfg.SendGridAPIKey,
		from:    cfg.AlertFromEmail,
		to:      cfg.AlertToEmail,
		sandbox: cfg.EmailSandbox,
	}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.apiKey != "" && n.to != ""
}

// URLAutoApproved alerts moderators that a URL crossed the report threshold
// and was confirmed without human review. Failures are logged, never
// surfaced to the reporting user.
func (n *Notifier) URLAutoApproved(url string, reportCount int) {
	if !n.enabled() {
		return
	}

	subject := fmt.Sprintf("URL auto-approved after %d reports", reportCount)
	body := fmt.Sprintf(
		"The URL %s was reported by %d distinct users and has been automatically flagged as confirmed malicious.\n\nReview it in the moderation panel.",
		url, reportCount,
	)

	from := mail.NewEmail("URL Sentry", n.from)
	to := mail.NewEmail("Moderation", n.to)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	if n.sandbox {
		settings := mail.NewMailSettings()
		settings.SetSandboxMode(mail.NewSetting(true))
		message.SetMailSettings(settings)
	}

	go func() {
		client := sendgrid.NewSendClient(n.apiKey)
		resp, err := client.Send(message)
		if err != nil {
			slog.Error("moderation alert delivery failed", "error", err, "url", url)
			return
		}
		if resp.StatusCode >= 400 {
			slog.Error("sendgrid rejected moderation alert", "status", resp.StatusCode, "url", url)
		}
	}()
}
