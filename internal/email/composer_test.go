package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackreg/registration-api/internal/config"
	"github.com/hackreg/registration-api/internal/logging"
)

type capturingSender struct {
	sent []Message
	err  error
}

func (s *capturingSender) Send(ctx context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestComposer(sender Sender) *Composer {
	event := config.EventConfig{
		Name:    "HackReg",
		Edition: "2026",
		Domain:  "hackreg.example",
	}
	return NewComposer(sender, event, logging.NewLogger(true))
}

func TestComposerVerificationEmail(t *testing.T) {
	sender := &capturingSender{}
	composer := newTestComposer(sender)

	err := composer.SendVerificationEmail(context.Background(), "ada@example.com", "tok123")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "HackReg <noreply@hackreg.example>", msg.From)
	assert.Equal(t, "HackReg Please verify your email", msg.Subject)
	assert.Contains(t, msg.HTML, "hackreg.example/verify/tok123")
	assert.Contains(t, msg.HTML, "HackReg 2026")
	assert.Contains(t, msg.HTML, "Happy Hacking!")
}

func TestComposerPasswordResetEmail(t *testing.T) {
	sender := &capturingSender{}
	composer := newTestComposer(sender)

	err := composer.SendPasswordResetEmail(context.Background(), "ada@example.com", "tok456")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "HackReg Password Reset", msg.Subject)
	assert.Contains(t, msg.HTML, "hackreg.example/reset/tok456")
	assert.Contains(t, msg.HTML, "issued a password reset")
}

func TestComposerPropagatesSenderError(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	composer := newTestComposer(sender)

	err := composer.SendVerificationEmail(context.Background(), "ada@example.com", "tok")
	assert.ErrorContains(t, err, "smtp down")

	err = composer.SendPasswordResetEmail(context.Background(), "ada@example.com", "tok")
	assert.ErrorContains(t, err, "smtp down")
}
