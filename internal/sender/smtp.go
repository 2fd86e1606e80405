package sender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	host string

	// to help with testing
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		host:     cfg.Host,
		sendMail: smtp.SendMail,
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return m
}

// Send relays msg through the SMTP server. 5xx replies are permanent
// failures; everything else, including network errors, is transient.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return common.Permanent(errors.New("smtp: message has no recipients"))
	}

	raw := buildMessage(msg, time.Now())

	// net/smtp has no context support; the call runs to completion and the
	// caller's deadline only decides whether we wait for it.
	done := make(chan error, 1)
	go func() {
		done <- m.sendMail(m.addr, m.auth, msg.From, msg.To, raw)
	}()

	select {
	case err := <-done:
		return classifySMTP(err)
	case <-ctx.Done():
		return common.Transient(fmt.Errorf("smtp %s: %w", m.addr, ctx.Err()))
	}
}

func classifySMTP(err error) error {
	if err == nil {
		return nil
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 500 {
		return common.Permanent(fmt.Errorf("smtp: %w", err))
	}
	return common.Transient(fmt.Errorf("smtp: %w", err))
}

func buildMessage(msg Message, now time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return b.Bytes()
}
