package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/mrz1836/postmark"
	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/config"
	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	Tag      string
	// Reference is stable across retries of the same job.
	Reference string
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type EmailExecutor struct {
	sender EmailSender
	tr     *i18n.Translator
	logger zerolog.Logger
}

func NewEmailExecutor(sender EmailSender, tr *i18n.Translator, logger zerolog.Logger) *EmailExecutor {
	return &EmailExecutor{
		sender: sender,
		tr:     tr,
		logger: logger.With().Str("executor", "email").Logger(),
	}
}

func (x *EmailExecutor) Channel() models.Channel { return models.ChannelEmail }

func (x *EmailExecutor) Deliver(ctx context.Context, d Delivery) error {
	to := strings.TrimSpace(d.User.EmailAddress)
	if to == "" {
		x.logger.Debug().Str("job_id", d.Job.ID).Msg("recipient has no email address")
		return nil
	}

	msg, err := d.Event.RenderEmail(x.tr, d.Locale)
	if err != nil {
		return err
	}

	err = x.sender.Send(ctx, EmailMessage{
		To:        to,
		Subject:   msg.Subject,
		HTMLBody:  msg.Body,
		Tag:       string(d.Event.Type()),
		Reference: d.Job.ID,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// Postmark error codes that no retry can fix.
// https://postmarkapp.com/developer/api/overview#error-codes
var postmarkPermanentCodes = map[int64]bool{
	300: true, // invalid email request
	406: true, // inactive recipient
}

type PostmarkSender struct {
	client  *postmark.Client
	from    string
	replyTo string
}

func NewPostmarkSender(cfg config.EmailConfig) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("postmark_server_token is required for the postmark sender")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("from is required for the postmark sender")
	}
	return &PostmarkSender{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:    strings.TrimSpace(cfg.From),
		replyTo: strings.TrimSpace(cfg.ReplyTo),
	}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, msg EmailMessage) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.from,
		ReplyTo:    s.replyTo,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if resp.ErrorCode > 0 {
		perr := fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
		if postmarkPermanentCodes[resp.ErrorCode] {
			return Permanent(perr)
		}
		return perr
	}
	return err
}

func (s *PostmarkSender) String() string {
	return "PostmarkSender"
}

// SMTPSender composes a MIME message and relays it through an SMTP server.
type SMTPSender struct {
	addr     string
	host     string
	auth     smtp.Auth
	from     string
	replyTo  string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for the smtp sender")
	}
	if from == "" {
		return nil, fmt.Errorf("from is required for the smtp sender")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	var auth smtp.Auth
	if strings.TrimSpace(cfg.Username) != "" {
		auth = smtp.PlainAuth("", strings.TrimSpace(cfg.Username), cfg.Password, host)
	}

	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", host, port),
		host:     host,
		auth:     auth,
		from:     from,
		replyTo:  strings.TrimSpace(cfg.ReplyTo),
		sendMail: smtp.SendMail,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.compose(msg)
	if err != nil {
		return Permanent(err)
	}

	err = s.sendMail(s.addr, s.auth, s.from, []string{msg.To}, raw)
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 500 {
		return Permanent(err)
	}
	return err
}

func (s *SMTPSender) compose(msg EmailMessage) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: s.from}})
	h.SetAddressList("To", []*mail.Address{{Address: msg.To}})
	if s.replyTo != "" {
		h.SetAddressList("Reply-To", []*mail.Address{{Address: s.replyTo}})
	}
	h.SetSubject(msg.Subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	if msg.Tag != "" {
		h.Set("X-Notification-Tag", msg.Tag)
	}
	if msg.Reference != "" {
		h.Set("X-Entity-Ref-ID", msg.Reference)
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, msg.HTMLBody); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *SMTPSender) String() string {
	return fmt.Sprintf("SMTPSender(%s)", s.addr)
}

// NoopEmailSender drops every message. Used when no provider is configured.
type NoopEmailSender struct {
	logger zerolog.Logger
}

func NewNoopEmailSender(logger zerolog.Logger) *NoopEmailSender {
	return &NoopEmailSender{logger: logger.With().Str("sender", "noop-email").Logger()}
}

func (s *NoopEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Debug().Str("tag", msg.Tag).Str("reference", msg.Reference).Msg("email delivery disabled, dropping message")
	return nil
}

// NewEmailSender builds the sender selected by cfg.Provider.
func NewEmailSender(cfg config.EmailConfig, logger zerolog.Logger) (EmailSender, error) {
	switch cfg.Provider {
	case config.EmailProviderPostmark:
		return NewPostmarkSender(cfg)
	case config.EmailProviderSMTP:
		return NewSMTPSender(cfg)
	case config.EmailProviderNone, "":
		return NewNoopEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
