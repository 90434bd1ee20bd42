package smtp

import "time"

// Config holds SMTP relay settings.
// Host, Username, Password and From must be non-empty; the relay is always
// reached with STARTTLS and PLAIN authentication.
type Config struct {
	Host     string        `env:"SMTP_HOST,required,notEmpty"`
	Port     int           `env:"SMTP_PORT" envDefault:"587"`
	Username string        `env:"SMTP_USER,required,notEmpty"`
	Password string        `env:"SMTP_PASS,required,notEmpty"`
	From     string        `env:"SMTP_FROM,required,notEmpty"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
}
