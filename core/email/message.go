package email

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Message is a plain-text email with a single recipient.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Validate checks the envelope fields. Content is not inspected
// beyond header injection.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("%w: sender is required", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	for name, value := range map[string]string{"From": m.From, "To": m.To, "Subject": m.Subject} {
		if strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("%w: %s header must not contain line breaks", ErrInvalidMessage, name)
		}
	}
	return nil
}

// Compose renders the message as a gomail message with a generated Message-ID.
func (m Message) Compose() *gomail.Message {
	msg := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetHeader("Message-ID", messageID(m.From))
	msg.SetBody("text/plain", m.Body)
	return msg
}

// WriteTo writes the RFC 5322 representation of the message to w.
func (m Message) WriteTo(w io.Writer) (int64, error) {
	return m.Compose().WriteTo(w)
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = strings.Trim(from[i+1:], "<> ")
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
