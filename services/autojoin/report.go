package autojoin

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

// SendRunReport mails the summary of a finished run.
func SendRunReport(ctx context.Context, cfg SmtpConfig, summary JoinSummary) error {
	ctx, span := tracer.Start(ctx, "SendRunReport")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("SG Autojoin <%s>", cfg.EmailAddress)
	mail.To = cfg.To
	mail.Subject = fmt.Sprintf("Autojoin run %s: joined %d/%d", summary.RunId, summary.Joined, summary.Attempted)
	mail.Text = []byte(formatRunReport(summary))

	err := mail.Send(
		fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		smtp.PlainAuth("", cfg.EmailAddress, cfg.Password, cfg.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", cfg.Server, cfg.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send run report")
		return err
	}
	return nil
}

func formatRunReport(summary JoinSummary) string {
	return fmt.Sprintf(`Run %s finished.

Starting budget:  %d points
Points spent:     %d points

Attempted:        %d
Joined:           %d
Skipped (points): %d
Skipped (entered/owned): %d
Failed:           %d
`,
		summary.RunId,
		summary.StartingBudget,
		summary.PointsSpent,
		summary.Attempted,
		summary.Joined,
		summary.SkippedInsufficientPoints,
		summary.SkippedAlreadyEntered,
		summary.Failed,
	)
}
