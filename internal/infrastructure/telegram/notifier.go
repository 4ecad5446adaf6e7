package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends run reports to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.ReportSink = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. Empty apiBase uses the public API.
func NewNotifier(botToken, chatID, apiBase string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  strings.TrimSuffix(apiBase, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishReport posts a Markdown summary of the run.
func (n *Notifier) PublishReport(ctx context.Context, report domain.RunReport) error {
	return n.send(ctx, FormatReport(report))
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatReport renders the run as a short Markdown message.
func FormatReport(report domain.RunReport) string {
	var b strings.Builder
	status := "published"
	if report.Failed() {
		status = fmt.Sprintf("%d/%d task(s) failed", report.FailedCount, len(report.Results))
	}
	fmt.Fprintf(&b, "*Daily edition* %s: %s\n", report.StartedAt.Format("2006-01-02"), status)
	for _, r := range report.Results {
		mark := "PASS"
		if !r.Success {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "`[%s]` %s (%.1fs)", mark, r.Name, r.ElapsedSeconds)
		if r.Outcome != domain.OutcomeOK && r.Outcome != domain.OutcomeFailed {
			fmt.Fprintf(&b, " %s", r.Outcome)
		}
		b.WriteString("\n")
	}
	return b.String()
}
