package smtpadapter

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"

	"mailtrack/internal/config/configs"
	"mailtrack/internal/core/port"
)

// Mailer renders named HTML templates and sends messages over SMTP. The
// template set is parsed once at construction time.
type Mailer struct {
	cfg  configs.SMTP
	tmpl *template.Template
}

func NewMailer(cfg configs.SMTP) (*Mailer, error) {
	tmpl, err := template.ParseGlob(cfg.TemplateGlob)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Mailer{cfg: cfg, tmpl: tmpl}, nil
}

func (m *Mailer) Render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (m *Mailer) Send(_ context.Context, msg port.Message) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.HTML = msg.HTML

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
