package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/hackreg/registration-api/internal/config"
	"github.com/hackreg/registration-api/internal/logging"
)

var verificationTmpl = template.Must(template.New("verification").Parse(
	`<p>Hi,<br>Welcome to {{.EventName}} {{.EventEdition}}. Please verify your email by clicking the link below.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not sign up for a {{.EventName}} account please disregard this email.</p>
<p>Happy Hacking!<br>Team {{.EventName}}</p>`))

var passwordResetTmpl = template.Must(template.New("passwordReset").Parse(
	`<p>Hi,<br>An account registered in {{.EventName}} has issued a password reset. Click the link below to reset your password.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not issue a password reset please disregard this email.</p>
<p>Happy Hacking!<br>Team {{.EventName}}</p>`))

// Composer builds the event-branded account emails and hands them to the
// Sender. Links point at the public frontend; their tokens are the only
// secret in the mail body.
type Composer struct {
	sender Sender
	event  config.EventConfig
	logger *logging.Logger
}

func NewComposer(sender Sender, event config.EventConfig, logger *logging.Logger) *Composer {
	return &Composer{sender: sender, event: event, logger: logger}
}

func (c *Composer) from() string {
	return fmt.Sprintf("%s <noreply@%s>", c.event.Name, c.event.Domain)
}

// SendVerificationEmail mails the verification link carrying the token
func (c *Composer) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify/%s", c.event.Domain, token)

	body, err := c.render(verificationTmpl, link)
	if err != nil {
		return err
	}

	msg := Message{
		From:    c.from(),
		To:      toEmail,
		Subject: fmt.Sprintf("%s Please verify your email", c.event.Name),
		HTML:    body,
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		return err
	}

	c.logger.Info("verification email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail mails the reset link carrying the token
func (c *Composer) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset/%s", c.event.Domain, token)

	body, err := c.render(passwordResetTmpl, link)
	if err != nil {
		return err
	}

	msg := Message{
		From:    c.from(),
		To:      toEmail,
		Subject: fmt.Sprintf("%s Password Reset", c.event.Name),
		HTML:    body,
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		return err
	}

	c.logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (c *Composer) render(tmpl *template.Template, link string) (string, error) {
	data := struct {
		EventName    string
		EventEdition string
		Link         string
	}{
		EventName:    c.event.Name,
		EventEdition: c.event.Edition,
		Link:         link,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
