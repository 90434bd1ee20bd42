// Package email defines the message value and the Sender abstraction used to
// deliver it.
//
// A Message is a plain-text email with one sender and one recipient:
//
//	msg := email.Message{
//		From:    "pi@example.com",
//		To:      "ops@example.com",
//		Subject: "beancount-pi: ledger sync FAILED",
//		Body:    "The nightly ledger sync on your Raspberry Pi failed.\n",
//	}
//
// Message.WriteTo renders it as RFC 5322 text (via gomail) with Date,
// Message-ID and MIME headers and a quoted-printable UTF-8 body.
//
// # Senders
//
// Implementations of Sender live elsewhere (see integration/email/smtp).
// DevSender writes messages to a directory instead, which is useful for dry
// runs:
//
//	sender := email.NewDevSender("./outbox")
//	err := sender.Send(ctx, msg)
//
// # Errors
//
// Failures wrap one of ErrFailedToSendEmail, ErrInvalidConfig or
// ErrInvalidMessage, so callers can classify them with errors.Is.
package email
