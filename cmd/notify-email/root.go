package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/beancount-pi/notify/app/notify"
	"github.com/beancount-pi/notify/core/config"
	"github.com/beancount-pi/notify/core/email"
	"github.com/beancount-pi/notify/core/envfile"
	"github.com/beancount-pi/notify/core/logger"
)

type rootOptions struct {
	secretsFile string
	envFiles    []string
	outbox      string
	logLevel    string
}

// newRootCommand builds the CLI. Flag parsing is done by parseArgs rather
// than cobra so that a reason starting with "-" is never taken for a flag.
func newRootCommand(environ []string, stdout, stderr io.Writer, appOpts ...notify.AppOption) *cobra.Command {
	opts := &rootOptions{
		secretsFile: envfile.DefaultPath,
		logLevel:    "warn",
	}

	cmd := &cobra.Command{
		Use:   "notify-email [flags] [reason]",
		Short: "Email a ledger sync failure notice",
		Long: `Send one plain-text email reporting that the nightly ledger sync failed.

The first argument that is not a recognised flag is the failure reason
("Unknown failure" when omitted); it is used verbatim even if it starts
with "-". SMTP settings are read from SMTP_HOST, SMTP_PORT, SMTP_USER,
SMTP_PASS, SMTP_FROM and SMTP_TO. Values missing from the environment are
filled from the secrets file.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rest, err := opts.parseArgs(args)
			if err != nil {
				return err
			}
			return opts.run(cmd.Context(), rest, environ, stdout, stderr, appOpts)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

func (o *rootOptions) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("notify-email", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	flags.StringVar(&o.secretsFile, "secrets-file", o.secretsFile, "KEY=VALUE file with SMTP settings (ignored when missing)")
	flags.StringArrayVar(&o.envFiles, "env-file", nil, "dotenv file with lower precedence than the secrets file (repeatable)")
	flags.StringVar(&o.outbox, "outbox", "", "write the message to this directory instead of sending it")
	flags.StringVar(&o.logLevel, "log-level", o.logLevel, "log level: debug, info, warn or error")
	return flags
}

// parseArgs consumes leading known long flags and returns the remaining
// arguments. The first token that is not a known flag, or anything after
// "--", ends flag parsing and is kept literally.
func (o *rootOptions) parseArgs(args []string) ([]string, error) {
	flags := o.flagSet()

	n := len(args)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			n = i + 1
			break
		}
		name, _, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !strings.HasPrefix(arg, "--") || flags.Lookup(name) == nil {
			n = i
			break
		}
		if !hasValue {
			i++
		}
	}
	if err := flags.Parse(args[:n]); err != nil {
		return nil, err
	}
	return append(flags.Args(), args[n:]...), nil
}

func (o *rootOptions) run(ctx context.Context, args, environ []string, stdout, stderr io.Writer, appOpts []notify.AppOption) error {
	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	log := logger.New(logger.WithLevel(level), logger.WithOutput(stderr))

	secrets, err := envfile.Read(o.secretsFile)
	if err != nil {
		return err
	}
	dotenv, err := envfile.ReadDotenv(o.envFiles...)
	if err != nil {
		return err
	}

	opts := []notify.AppOption{
		notify.WithLogger(log),
		notify.WithEnviron(config.ProcessEnv(environ), secrets, dotenv),
	}
	if o.outbox != "" {
		opts = append(opts, notify.WithSender(email.NewDevSender(o.outbox)))
	}
	opts = append(opts, appOpts...)

	app, err := notify.NewApp(opts...)
	if err != nil {
		return err
	}

	if err := app.Notify(ctx, notify.ReasonFromArgs(args)); err != nil {
		return err
	}

	if o.outbox != "" {
		fmt.Fprintf(stdout, "[notify] Email written to %s.\n", o.outbox)
		return nil
	}
	fmt.Fprintln(stdout, "[notify] Email sent.")
	return nil
}
