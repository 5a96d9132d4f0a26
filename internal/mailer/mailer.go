package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.From)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}

func ConfirmEmailBody(username, link string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nPlease confirm your email address by following this link:\n%s\n\nThe link is valid for 7 days.\n",
		username, link,
	)
}

func ResetPasswordBody(username, link string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nA password change was requested for your account. Follow this link to apply it:\n%s\n\nIf you did not request this, ignore the message.\n",
		username, link,
	)
}
