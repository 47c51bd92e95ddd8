package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"leadpulse/config"
)

// FollowUpEmail is a rendered outreach email ready to send.
type FollowUpEmail struct {
	To      string
	Subject string
	Body    string
}

var followUpTemplate = template.Must(template.New("followup").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .intro { margin-bottom: 16px; }
        .body { margin: 16px 0; }
        .outro { margin-top: 24px; color: #555; }
    </style>
</head>
<body>
    <div class="intro">{{.Intro}}{{if .Name}} {{.Name}},{{end}}</div>
    <div class="body">{{.Body}}</div>
    <div class="outro">{{.Outro}}<br>{{.FromName}}</div>
</body>
</html>`))

// RenderFollowUpEmail fills the follow-up layout with a stage or step
// template. When populateName is set the recipient name is appended to the
// greeting line.
func RenderFollowUpEmail(subject, intro, body, outro string, populateName bool, name string) (string, string, error) {
	data := struct {
		Subject  string
		Intro    string
		Body     string
		Outro    string
		Name     string
		FromName string
	}{
		Subject:  subject,
		Intro:    intro,
		Body:     body,
		Outro:    outro,
		FromName: config.AppConfig.FromName,
	}
	if populateName {
		data.Name = name
	}

	var buf bytes.Buffer
	if err := followUpTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render follow-up email: %w", err)
	}
	return subject, buf.String(), nil
}

// FollowUpMailer sends rendered follow-up emails over SMTP.
type FollowUpMailer struct {
	dialer *gomail.Dialer
}

func NewFollowUpMailer() *FollowUpMailer {
	cfg := config.AppConfig
	return &FollowUpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// Send delivers the email and returns the message id stamped on it.
func (m *FollowUpMailer) Send(email FollowUpEmail) (string, error) {
	if config.AppConfig.SMTPHost == "" {
		return "", fmt.Errorf("SMTP is not configured")
	}

	messageID := uuid.New().String()

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", config.AppConfig.FromEmail, config.AppConfig.FromName)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetHeader("X-Entity-Ref-ID", messageID)
	msg.SetBody("text/html", email.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("failed to send follow-up email: %w", err)
	}
	return messageID, nil
}
