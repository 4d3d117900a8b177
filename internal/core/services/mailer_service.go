package services

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"sogecredit/internal/adapters/persistence/models"
	"sogecredit/internal/config"
)

// MailerService sends transactional mail over SMTP. Sending is fail-silent:
// an unreachable relay must never block account management.
type MailerService struct {
	cfg config.SMTPConfig
}

// NewMailerService creates a new mailer service
func NewMailerService(cfg config.SMTPConfig) *MailerService {
	return &MailerService{cfg: cfg}
}

// Enabled reports whether an SMTP relay is configured
func (s *MailerService) Enabled() bool {
	return s.cfg.Host != ""
}

// SendWelcome sends the account-created email with the initial password
func (s *MailerService) SendWelcome(user *models.User, plainPassword string) {
	body := fmt.Sprintf(
		"Bonjour %s,\n\n"+
			"Votre compte SogeCredit a ete cree.\n\n"+
			"Nom d'utilisateur: %s\n"+
			"Mot de passe initial: %s\n"+
			"Role: %s\n\n"+
			"Veuillez changer votre mot de passe apres votre premiere connexion.\n",
		user.FullName(), user.Username, plainPassword, user.Role,
	)

	s.send(user.Email, "Bienvenue sur SogeCredit", body)
}

func (s *MailerService) send(to, subject, body string) {
	if !s.Enabled() {
		return
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := e.Send(addr, auth); err != nil {
		logrus.WithError(err).WithField("to", to).Warn("Mail not sent")
	}
}
