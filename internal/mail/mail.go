// Package mail dispatches registration/recovery notifications over
// SMTP. net/smtp is kept to the narrow job of building and sending one
// message so it stays a thin adapter rather than growing its own
// templating engine.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"text/template"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/vaulterr"
)

// Kind identifies which template to render.
type Kind string

const (
	KindPending  Kind = "pending"
	KindRegister Kind = "register"
	KindRecover  Kind = "recover"
	KindRejected Kind = "rejection"
)

const sendTimeout = 3 * time.Second

// Params are the substitution values a template may reference.
type Params struct {
	Login            string
	BaseURL          string
	SetPasswordToken string
}

// Template pairs a mandatory text body with an optional HTML
// alternative.
type Template struct {
	Subject string
	Text    string
	HTML    string
}

// Notifier is the boundary the API logic depends on (through
// svc.ServiceContext.Mail) so it never has to touch a real SMTP
// connection directly.
type Notifier interface {
	Send(ctx context.Context, to string, kind Kind, params Params) error
}

// SMTPNotifier sends mail through a configured SMTP relay.
type SMTPNotifier struct {
	from      string
	hostPort  string
	templates map[Kind]Template
}

// NewSMTPNotifier builds an SMTPNotifier. templates must have an entry
// for every Kind the caller intends to send.
func NewSMTPNotifier(from, hostPort string, templates map[Kind]Template) *SMTPNotifier {
	return &SMTPNotifier{from: from, hostPort: hostPort, templates: templates}
}

// Send renders the template for kind and relays it to to, failing fast
// with mail-send-failed if the template is missing, rendering fails,
// or the dial/send itself times out.
func (n *SMTPNotifier) Send(ctx context.Context, to string, kind Kind, params Params) error {
	tmpl, ok := n.templates[kind]
	if !ok {
		return vaulterr.Newf(vaulterr.MailSendFailed, "no mail template registered for kind %q", kind)
	}

	body, err := render(tmpl, params)
	if err != nil {
		return vaulterr.Newf(vaulterr.MailSendFailed, "render template %q: %v", kind, err)
	}

	done := make(chan error, 1)
	go func() { done <- smtp.SendMail(n.hostPort, nil, n.from, []string{to}, body) }()

	select {
	case err := <-done:
		if err != nil {
			logx.Errorf("mail: send to %s (kind=%s) failed: %v", to, kind, err)
			return vaulterr.Newf(vaulterr.MailSendFailed, "send mail: %v", err)
		}
		return nil
	case <-time.After(sendTimeout):
		return vaulterr.Newf(vaulterr.MailSendFailed, "send mail to %s timed out after %s", to, sendTimeout)
	case <-ctx.Done():
		return vaulterr.Newf(vaulterr.MailSendFailed, "send mail to %s: %v", to, ctx.Err())
	}
}

func render(tmpl Template, params Params) ([]byte, error) {
	text, err := execute(tmpl.Text, params)
	if err != nil {
		return nil, fmt.Errorf("text body: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", tmpl.Subject))

	if tmpl.HTML == "" {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(text)
		return buf.Bytes(), nil
	}

	html, err := execute(tmpl.HTML, params)
	if err != nil {
		return nil, fmt.Errorf("html body: %w", err)
	}

	const boundary = "vault-multipart-boundary"
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)
	fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, text)
	fmt.Fprintf(&buf, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, html)
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

func execute(src string, params Params) (string, error) {
	t, err := template.New("mail").Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}
