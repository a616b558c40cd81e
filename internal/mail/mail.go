// Package mail renders and delivers outgoing mail. Messages are queued in
// the mail_outbox table inside the caller's transaction and delivered by
// Worker once that transaction commits.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Mail is one outgoing message. At least one of TextContent and
// HTMLContent should be set.
type Mail struct {
	Receivers   []string
	Subject     string
	TextContent string
	HTMLContent string
}

// Sender delivers mail.
type Sender interface {
	Send(ctx context.Context, mails ...Mail) error
}

// SMTPConfig is populated from the SMTP_* environment variables.
type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	TLS      bool   `env:"TLS" envDefault:"true"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

func (c SMTPConfig) from() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// NewSender returns an SMTPSender, or a NoopSender that only logs when
// SMTP is not configured.
func NewSender(cfg SMTPConfig, logger *zap.SugaredLogger) Sender {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		logger.Infow("SMTP is not configured, mail delivery disabled")
		return NoopSender{logger: logger}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	logger.Infow("mailer enabled", "host", cfg.Host, "port", cfg.Port, "tls", cfg.TLS, "user", maskForLog(cfg.User))
	return &SMTPSender{cfg: cfg, dial: dialSMTP}
}

// NoopSender drops every mail.
type NoopSender struct {
	logger *zap.SugaredLogger
}

func (n NoopSender) Send(_ context.Context, mails ...Mail) error {
	if n.logger != nil {
		for _, m := range mails {
			n.logger.Infow("SMTP is not configured, mail dropped", "subject", m.Subject, "receivers", len(m.Receivers))
		}
	}
	return nil
}

// smtpClient is the subset of *smtp.Client used for a delivery.
type smtpClient interface {
	Extension(ext string) (bool, string)
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

func dialSMTP(addr string) (smtpClient, error) {
	return smtp.Dial(addr)
}

// SMTPSender delivers mail over one SMTP session per Send call, upgrading
// with STARTTLS when enabled and authenticating with PLAIN.
type SMTPSender struct {
	cfg  SMTPConfig
	dial func(addr string) (smtpClient, error)
}

var errNoReceivers = errors.New("mail has no receivers")

func (s *SMTPSender) Send(ctx context.Context, mails ...Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	client, err := s.dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer client.Close()

	if s.cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.cfg.User != "" && s.cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	for _, m := range mails {
		if err := s.deliver(client, m); err != nil {
			return err
		}
	}
	return client.Quit()
}

func (s *SMTPSender) deliver(client smtpClient, m Mail) error {
	if len(m.Receivers) == 0 {
		return errNoReceivers
	}
	from := s.cfg.from()
	msg, err := buildMessage(from, m)
	if err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, to := range m.Receivers {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

// buildMessage renders m as RFC 5322 text. Both bodies present give a
// multipart/alternative message.
func buildMessage(from string, m Mail) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(m.Receivers, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case m.TextContent != "" && m.HTMLContent != "":
		mw := multipart.NewWriter(&buf)
		fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())
		for _, part := range []struct{ ctype, body string }{
			{"text/plain; charset=utf-8", m.TextContent},
			{"text/html; charset=utf-8", m.HTMLContent},
		} {
			pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.ctype}})
			if err != nil {
				return nil, err
			}
			if _, err := io.WriteString(pw, part.body); err != nil {
				return nil, err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
	case m.HTMLContent != "":
		buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		buf.WriteString(m.HTMLContent)
		buf.WriteString("\r\n")
	default:
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(m.TextContent)
		buf.WriteString("\r\n")
	}
	return buf.Bytes(), nil
}

func maskForLog(s string) string {
	if s == "" {
		return "(none)"
	}
	if len(s) <= 2 {
		return "***"
	}
	return s[:1] + "***" + s[len(s)-1:]
}
