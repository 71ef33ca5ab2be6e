package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shortsforge/automation-engine/internal/config"
	"github.com/shortsforge/automation-engine/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service handles sending notifications via various channels
type Service struct {
	config *config.Config
	client *resty.Client
	dialer func() *gomail.Dialer
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
	s.dialer = func() *gomail.Dialer {
		return gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	return s
}

// Enabled reports whether any channel is configured
func (s *Service) Enabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendRunReport sends the outcome of an automated run via configured channels
func (s *Service) SendRunReport(report *models.RunReport) error {
	message := s.buildRunTeamsMessage(report)
	subject := fmt.Sprintf("Shorts automation - %s: %s", report.Status, runTitle(report))

	html, err := s.buildRunEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	return s.dispatch(message, subject, buildRunEmailText(report), html)
}

// SendAlert sends an urgent alert notification
func (s *Service) SendAlert(alert *models.Alert) error {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: alertColor(alert.Type),
		Title:      fmt.Sprintf("[%s] %s", strings.ToUpper(alert.Type), alert.Title),
		Text:       alert.Message,
	}

	text := fmt.Sprintf("%s\n\n%s\n\nRaised: %s\n", alert.Title, alert.Message,
		alert.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	html := fmt.Sprintf("<h2>%s</h2><p>%s</p><p><small>Raised %s</small></p>",
		template.HTMLEscapeString(alert.Title), template.HTMLEscapeString(alert.Message),
		alert.CreatedAt.UTC().Format("January 2, 2006 at 3:04 PM UTC"))

	return s.dispatch(message, "Shorts automation alert: "+alert.Title, text, html)
}

func (s *Service) dispatch(message *TeamsMessage, subject, text, html string) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(message); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent notification to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(subject, text, html); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent notification via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(message *TeamsMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildRunTeamsMessage(report *models.RunReport) *TeamsMessage {
	mode := "Manual"
	if report.Automated {
		mode = "Automated"
	}

	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: statusColor(report.Status),
		Title:      fmt.Sprintf("Shorts Run %s - %s", report.Status, runTitle(report)),
		Text:       fmt.Sprintf("%s run on topic **%s**", mode, report.Topic),
	}

	facts := []TeamsFact{
		{Name: "Video", Value: report.VideoID},
		{Name: "Status", Value: report.Status.String()},
		{Name: "Started", Value: report.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		{Name: "Duration", Value: report.Duration.Round(time.Second).String()},
	}
	if report.Status == models.StatusUploaded {
		facts = append(facts, TeamsFact{Name: "Watch", Value: "https://youtube.com/shorts/" + report.VideoID})
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Run",
		Facts:         facts,
		Markdown:      true,
	})

	if report.Error != "" {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Error",
			ActivityText:  report.Error,
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(subject, text, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	if err := s.dialer().DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const runEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Shorts Automation Run</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #1e3a8a; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .error { border-left: 4px solid #d13438; padding: 10px; background-color: #fafafa; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
        <p>{{if .Automated}}Automated{{else}}Manual{{end}} run started {{.StartedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <p><strong>Topic:</strong> {{.Topic}}</p>
        <p><strong>Status:</strong> {{.Status}}</p>
        <p><strong>Video:</strong> {{.VideoID}}</p>
        <p><strong>Duration:</strong> {{.Duration | seconds}}</p>
    </div>

    {{if .Error}}
    <div class="error">{{.Error}}</div>
    {{end}}

    <hr>
    <p><small>This message was generated automatically by the Shorts automation engine.</small></p>
</body>
</html>
`

func (s *Service) buildRunEmailHTML(report *models.RunReport) (string, error) {
	t, err := template.New("email").Funcs(template.FuncMap{
		"seconds": func(d time.Duration) string { return d.Round(time.Second).String() },
	}).Parse(runEmailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func buildRunEmailText(report *models.RunReport) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Shorts Automation Run - %s\n", runTitle(report)))
	text.WriteString(fmt.Sprintf("Started: %s\n\n", report.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("Topic: %s\n", report.Topic))
	text.WriteString(fmt.Sprintf("Status: %s\n", report.Status))
	text.WriteString(fmt.Sprintf("Video: %s\n", report.VideoID))
	text.WriteString(fmt.Sprintf("Duration: %s\n", report.Duration.Round(time.Second)))
	if report.Error != "" {
		text.WriteString(fmt.Sprintf("\nError: %s\n", report.Error))
	}
	text.WriteString("\n---\nThis message was generated automatically by the Shorts automation engine.\n")

	return text.String()
}

func runTitle(report *models.RunReport) string {
	if report.Title == "" {
		return report.Topic
	}
	return report.Title
}

func statusColor(status models.VideoStatus) string {
	if status == models.StatusFailed {
		return "d13438"
	}
	return "107c10"
}

func alertColor(kind string) string {
	switch kind {
	case "critical":
		return "d13438"
	case "warning":
		return "ffb900"
	default:
		return "0078d4"
	}
}
