package notify

import "github.com/beancount-pi/notify/integration/email/smtp"

// Config is everything needed to deliver one failure notice.
type Config struct {
	SMTP smtp.Config

	To string `env:"SMTP_TO,required,notEmpty"`
}
