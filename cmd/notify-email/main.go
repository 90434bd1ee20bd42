// Command notify-email sends the ledger sync failure notice.
//
//	notify-email [flags] [reason]
//
// Flags are recognised only before the reason:
//
//	--secrets-file FILE  KEY=VALUE settings file (default /run/secrets/smtp.env)
//	--env-file FILE      dotenv file below the secrets file, repeatable
//	--outbox DIR         write the message to DIR instead of sending it
//	--log-level LEVEL    debug, info, warn or error (default warn)
//
// The first other argument is the reason and is used verbatim, so
// "notify-email -1" reports "-1". Use "--" to end the flags explicitly.
//
// SMTP settings come from the environment and from /run/secrets/smtp.env;
// variables already set in the environment take precedence over the file.
//
// Exit status is 0 on success, 2 when required SMTP settings are missing
// or invalid (nothing is sent), and 1 when delivery fails.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/beancount-pi/notify/app/notify"
	"github.com/beancount-pi/notify/core/config"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer, appOpts ...notify.AppOption) int {
	cmd := newRootCommand(environ, stdout, stderr, appOpts...)
	cmd.SetArgs(args)

	return exitCode(cmd.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrConfiguration):
		fmt.Fprintln(stderr, "[notify] Missing or invalid SMTP env vars; cannot send email.")
		fmt.Fprintf(stderr, "[notify] %v\n", err)
		return exitConfig
	default:
		fmt.Fprintf(stderr, "[notify] Email not sent: %v\n", err)
		return exitFailure
	}
}
