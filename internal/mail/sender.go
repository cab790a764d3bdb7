package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/settings"
)

// ErrSMTPHostEmpty is returned when SMTP delivery is enabled but no
// host is configured.
var ErrSMTPHostEmpty = errors.New("smtp host is not configured")

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender delivers mail over SMTP. The email settings group is
// resolved on every send so settings changes take effect without a
// restart.
type SMTPSender struct {
	db *gorm.DB
}

// NewSMTPSender returns an SMTP transport bound to the settings store.
func NewSMTPSender(db *gorm.DB) *SMTPSender {
	return &SMTPSender{db: db}
}

// Send builds the MIME document and delivers it to the configured SMTP
// server. Encryption follows the smtp_encryption setting: "ssl" opens
// an implicit TLS connection, anything else relies on opportunistic
// STARTTLS.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values := settings.Resolve(s.db, settings.GroupEmail, settings.EmailDefaults())

	host := values.Get("smtp_host")
	if host == "" {
		return ErrSMTPHostEmpty
	}

	port := values.Int("smtp_port", 587)
	from := values.Get(settings.KeyEmailFrom)

	body, err := msg.Bytes(from, values.Get(settings.KeyEmailFromName))
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", host, port)

	var auth smtp.Auth
	if username := values.Get("smtp_username"); username != "" {
		auth = smtp.PlainAuth("", username, values.Get("smtp_password"), host)
	}

	if values.Get("smtp_encryption") == "ssl" {
		err = sendImplicitTLS(addr, host, auth, from, msg.To, body)
	} else {
		err = smtp.SendMail(addr, auth, from, []string{msg.To}, body)
	}

	if err != nil {
		return errors.Wrapf(err, "sending mail to %s via %s", msg.To, addr)
	}

	log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("Mail sent")

	return nil
}

// sendImplicitTLS delivers over a connection that is TLS from the
// first byte, as used by servers on port 465.
func sendImplicitTLS(addr, host string, auth smtp.Auth, from, to string, body []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()

		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	if err := client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := writer.Write(body); err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// LogSender is the dev transport: it logs the message instead of
// delivering it. Used whenever smtp_enabled is off.
type LogSender struct{}

// Send logs the message headline and drops it.
func (LogSender) Send(_ context.Context, msg *Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("SMTP disabled, logging mail instead of sending")

	return nil
}

type routingSender struct {
	db   *gorm.DB
	smtp *SMTPSender
	dev  LogSender
}

// NewFromSettings returns a Sender that consults the smtp_enabled
// setting on every send and routes to the SMTP or log transport
// accordingly.
func NewFromSettings(db *gorm.DB) Sender {
	return &routingSender{db: db, smtp: NewSMTPSender(db)}
}

func (r *routingSender) Send(ctx context.Context, msg *Message) error {
	values := settings.Resolve(r.db, settings.GroupEmail, settings.EmailDefaults())

	if values.Bool(settings.KeySMTPEnabled) {
		return r.smtp.Send(ctx, msg)
	}

	return r.dev.Send(ctx, msg)
}
