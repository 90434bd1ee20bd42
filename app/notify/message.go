package notify

import (
	"fmt"

	"github.com/beancount-pi/notify/core/email"
)

const (
	// DefaultReason is used when no reason argument is given.
	DefaultReason = "Unknown failure"

	// Subject is the fixed subject line of every notice.
	Subject = "beancount-pi: ledger sync FAILED"
)

// FailureNotice builds the notification message. reason is used verbatim.
func FailureNotice(reason, from, to string) email.Message {
	return email.Message{
		From:    from,
		To:      to,
		Subject: Subject,
		Body: fmt.Sprintf(
			"The nightly ledger sync on your Raspberry Pi failed.\n\nReason:\n%s\n",
			reason,
		),
	}
}

// ReasonFromArgs returns the first positional argument, or DefaultReason
// when there is none. Remaining arguments are ignored.
func ReasonFromArgs(args []string) string {
	if len(args) == 0 {
		return DefaultReason
	}
	return args[0]
}
