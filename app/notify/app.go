package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/beancount-pi/notify/core/config"
	"github.com/beancount-pi/notify/core/email"
	"github.com/beancount-pi/notify/core/logger"
	"github.com/beancount-pi/notify/integration/email/smtp"
)

type App struct {
	environ  map[string]string
	logger   *slog.Logger
	sender   email.Sender
	smtpOpts []smtp.Option
}

type AppOption func(*App) error

func NewApp(opts ...AppOption) (*App, error) {
	app := &App{
		logger: logger.Discard(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.environ == nil {
		app.environ = config.ProcessEnv(os.Environ())
	}

	return app, nil
}

// WithLogger sets the logger for delivery records.
func WithLogger(log *slog.Logger) AppOption {
	return func(app *App) error {
		if log == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = log
		return nil
	}
}

// WithEnviron sets the configuration layers, highest precedence first.
// Without it the process environment is used alone.
func WithEnviron(layers ...map[string]string) AppOption {
	return func(app *App) error {
		app.environ = config.Environ(layers...)
		return nil
	}
}

// WithSender replaces SMTP delivery, e.g. with email.DevSender.
// SMTP configuration is still required and validated.
func WithSender(sender email.Sender) AppOption {
	return func(app *App) error {
		if sender == nil {
			return errors.New("sender cannot be nil")
		}
		app.sender = sender
		return nil
	}
}

// WithSMTPOptions passes options to the SMTP client.
func WithSMTPOptions(opts ...smtp.Option) AppOption {
	return func(app *App) error {
		app.smtpOpts = append(app.smtpOpts, opts...)
		return nil
	}
}

// LoadConfig resolves Config from the configured layers.
// Failures wrap config.ErrConfiguration.
func (app *App) LoadConfig() (Config, error) {
	if err := config.RejectBlank(app.environ, "SMTP_PORT", "SMTP_TIMEOUT"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := config.Load(&cfg, app.environ); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Notify resolves configuration, builds the failure notice for reason and
// delivers it once. Configuration errors are returned before any network
// activity and wrap config.ErrConfiguration.
func (app *App) Notify(ctx context.Context, reason string) error {
	start := time.Now()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	sender, err := app.newSender(cfg)
	if err != nil {
		return err
	}

	log := app.logger.With(logger.Component("notify"), logger.Recipient(cfg.To))
	msg := FailureNotice(reason, cfg.SMTP.From, cfg.To)

	if err := sender.Send(ctx, msg); err != nil {
		var stage string
		var derr *smtp.DeliveryError
		if errors.As(err, &derr) {
			stage = derr.Stage.String()
		}
		log.ErrorContext(ctx, "failure notice not sent",
			logger.Action("send"),
			logger.Result("failed"),
			logger.Stage(stage),
			logger.Elapsed(start),
			logger.Error(err),
		)
		return err
	}

	log.InfoContext(ctx, "failure notice sent",
		logger.Action("send"),
		logger.Result("sent"),
		logger.Elapsed(start),
	)
	return nil
}

func (app *App) newSender(cfg Config) (email.Sender, error) {
	opts := append([]smtp.Option{smtp.WithLogger(app.logger)}, app.smtpOpts...)

	client, err := smtp.New(cfg.SMTP, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	if app.sender != nil {
		return app.sender, nil
	}
	return client, nil
}
