package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"kidcanvas/pkg/logger"
)

type Config struct {
	Host     string
	Port     string
	From     string
	Password string
}

type Mailer struct {
	cfg    Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger logger.Interface
}

func New(cfg Config, l logger.Interface) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail, logger: l}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// Send delivers a plain text message. Without SMTP settings the message is
// only logged so local setups still see verification and invite links.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		m.logger.Info("mailer disabled, to=%s subject=%q body=%q", to, subject, body)
		return nil
	}

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{to}, m.message(to, subject, body))
	if err != nil {
		return fmt.Errorf("mailer - Send - smtp.SendMail: %w", err)
	}
	return nil
}

func (m *Mailer) message(to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}

func VerificationEmail(link string) (subject, body string) {
	return "Verify your KidCanvas account",
		fmt.Sprintf("Welcome to KidCanvas!\n\nClick the following link to verify your account:\n\n%s", link)
}

func PasswordResetEmail(link string) (subject, body string) {
	return "Reset your KidCanvas password",
		fmt.Sprintf("Someone asked to reset your password. If it was you, open this link within one hour:\n\n%s", link)
}

func InviteEmail(familyName, inviter, link string) (subject, body string) {
	return fmt.Sprintf("%s invited you to %s on KidCanvas", inviter, familyName),
		fmt.Sprintf("%s invited you to join the %s family gallery.\n\nAccept the invite here (valid for 7 days):\n\n%s", inviter, familyName, link)
}
