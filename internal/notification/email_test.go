package notification

import (
	"context"
	"net/smtp"
	"net/textproto"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/notifications/internal/config"
)

func TestSMTPSenderComposesHTMLMessage(t *testing.T) {
	sender, err := NewSMTPSender(config.EmailConfig{
		SMTPHost: "mail.example.com",
		From:     "no-reply@example.com",
		ReplyTo:  "support@example.com",
	})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Equal(t, "no-reply@example.com", from)
		return nil
	}

	err = sender.Send(context.Background(), EmailMessage{
		To:        "ana@example.com",
		Subject:   "Identidad verificada",
		HTMLBody:  "<p>hola</p>",
		Tag:       "identity_verification_approved",
		Reference: "d-1:u1:email",
	})
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Content-Type: text/html")
	assert.Contains(t, gotMsg, "X-Entity-Ref-Id: d-1:u1:email")
	assert.Contains(t, gotMsg, "<p>hola</p>")
	assert.Contains(t, gotMsg, "Message-Id:")
	assert.True(t, strings.Contains(gotMsg, "Reply-To:"))
}

func TestSMTPSenderClassifiesRejections(t *testing.T) {
	sender, err := NewSMTPSender(config.EmailConfig{SMTPHost: "mail.example.com", From: "a@example.com"})
	require.NoError(t, err)

	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	}
	err = sender.Send(context.Background(), EmailMessage{To: "gone@example.com"})
	assert.True(t, IsPermanent(err))

	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return &textproto.Error{Code: 421, Msg: "try again later"}
	}
	err = sender.Send(context.Background(), EmailMessage{To: "busy@example.com"})
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestNewEmailSenderSelectsProvider(t *testing.T) {
	logger := zerolog.Nop()

	s, err := NewEmailSender(config.EmailConfig{Provider: config.EmailProviderNone}, logger)
	require.NoError(t, err)
	assert.IsType(t, &NoopEmailSender{}, s)

	s, err = NewEmailSender(config.EmailConfig{Provider: config.EmailProviderSMTP, SMTPHost: "h", From: "a@b.c"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	s, err = NewEmailSender(config.EmailConfig{Provider: config.EmailProviderPostmark, PostmarkServerToken: "t", From: "a@b.c"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &PostmarkSender{}, s)

	_, err = NewEmailSender(config.EmailConfig{Provider: config.EmailProviderPostmark, From: "a@b.c"}, logger)
	assert.Error(t, err)

	_, err = NewEmailSender(config.EmailConfig{Provider: "carrier-pigeon"}, logger)
	assert.Error(t, err)
}

func TestPermanentWrapping(t *testing.T) {
	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(assert.AnError))
	wrapped := Permanent(assert.AnError)
	assert.True(t, IsPermanent(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)
}
