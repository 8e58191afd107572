package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/ItalcolColombia/miit-api-sub000/internal/config"
)

// Mailer wraps SMTP configuration for operational emails.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers a plain-text email.
func (m *Mailer) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}

// SendRecuperacion sends the password-reset token to a user.
func (m *Mailer) SendRecuperacion(to, token string) error {
	body := fmt.Sprintf(
		"Se solicitó un restablecimiento de contraseña.\n\nToken: %s\n\nSi no fue usted, ignore este correo.", token)
	return m.Send(to, "Recuperación de contraseña", body)
}

// SendAlertaDLQ notifies operations when a job lands on a dead-letter queue.
func (m *Mailer) SendAlertaDLQ(to, queue, payload string) error {
	body := fmt.Sprintf("Un trabajo agotó sus reintentos y fue movido a %s.\n\nPayload:\n%s", queue, payload)
	return m.Send(to, fmt.Sprintf("Alerta DLQ: %s", queue), body)
}
