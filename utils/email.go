package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/Yumi00000/WABToDo-back-end/config"
)

var mailLog = logrus.WithField("component", "mailer")

// SendActivationEmail mails the signed activation link to a new account.
// Delivery is best effort: registration succeeds even if SMTP is down or
// unconfigured.
func SendActivationEmail(email, firstName, token string) error {
	if config.AppConfig.SMTPHost == "" {
		mailLog.Debug("SMTP not configured, skipping activation email")
		return nil
	}

	link := fmt.Sprintf("%s/api/users/activate/%s", config.AppConfig.BaseURL, token)

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Activate your account")
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for registering. Click the link below to activate your account:</p>
<p><a href="%s">%s</a></p>
<p>The link expires in 48 hours.</p>`,
		firstName, link, link,
	))

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)
	if err := d.DialAndSend(m); err != nil {
		mailLog.WithError(err).WithField("to", email).Warn("failed to send activation email")
		return err
	}

	return nil
}
