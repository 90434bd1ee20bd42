package smtp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/beancount-pi/notify/core/email"
	"github.com/beancount-pi/notify/core/logger"
)

// DefaultTimeout bounds the connection and the whole SMTP conversation.
const DefaultTimeout = 30 * time.Second

// Client implements email.Sender over SMTP with mandatory STARTTLS.
// Each Send opens a fresh connection and closes it before returning.
type Client struct {
	config    Config
	auth      smtp.Auth
	dial      DialFunc
	rootCAs   *x509.CertPool
	localName string
	logger    *slog.Logger
}

// New creates an SMTP-backed sender.
// Configuration problems are reported up front, before any network activity.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: Host is required", email.ErrInvalidConfig)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: Port must be between 1 and 65535", email.ErrInvalidConfig)
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("%w: Username is required", email.ErrInvalidConfig)
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("%w: Password is required", email.ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: From is required", email.ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		config:    cfg,
		auth:      smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		dial:      (&net.Dialer{Timeout: cfg.Timeout}).DialContext,
		localName: "localhost",
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustNew creates an SMTP client that panics on invalid config.
func MustNew(cfg Config, opts ...Option) *Client {
	client, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Addr returns the relay address in host:port form.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Send delivers msg. It never retries: any failure closes the connection
// and returns an error wrapping email.ErrFailedToSendEmail and a *DeliveryError.
func (c *Client) Send(ctx context.Context, msg email.Message) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := c.deliver(ctx, msg); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	return nil
}

func (c *Client) deliver(ctx context.Context, msg email.Message) error {
	addr := c.Addr()
	stage := StageUnconnected

	fail := func(op string, err error) error {
		// A cancelled context surfaces as an i/o timeout on the connection.
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(err, ctxErr)
		}
		c.logger.Debug("smtp step failed",
			logger.Stage(stage.String()),
			logger.Action(op),
			logger.Server(addr),
			logger.Error(err),
		)
		return &DeliveryError{Stage: stage, Op: op, Err: err}
	}
	advance := func(next Stage) {
		stage = next
		c.logger.Debug("smtp stage reached", logger.Stage(stage.String()), logger.Server(addr))
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	conn, err := c.dial(dialCtx, "tcp", addr)
	if err != nil {
		return fail("dial", err)
	}

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return fail("dial", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		_ = conn.Close()
		return fail("greeting", err)
	}
	defer func() {
		_ = client.Close()
		advance(StageClosed)
	}()

	if err := client.Hello(c.localName); err != nil {
		return fail("ehlo", err)
	}
	advance(StageConnected)

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fail("starttls", ErrStartTLSUnsupported)
	}
	// net/smtp re-issues EHLO after the handshake.
	if err := client.StartTLS(c.tlsConfig()); err != nil {
		return fail("starttls", err)
	}
	advance(StageEncryptionNegotiated)

	if err := client.Auth(c.auth); err != nil {
		return fail("auth", err)
	}
	advance(StageAuthenticated)

	if err := client.Mail(envelopeAddress(msg.From)); err != nil {
		return fail("mail", err)
	}
	if err := client.Rcpt(envelopeAddress(msg.To)); err != nil {
		return fail("rcpt", err)
	}

	w, err := client.Data()
	if err != nil {
		return fail("data", err)
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return fail("data", err)
	}
	if err := w.Close(); err != nil {
		return fail("data", err)
	}
	advance(StageSent)

	// The relay has accepted the message; a failed QUIT does not undo that.
	if err := client.Quit(); err != nil {
		c.logger.Debug("smtp quit failed", logger.Server(addr), logger.Error(err))
	}

	return nil
}

func (c *Client) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: c.config.Host,
		RootCAs:    c.rootCAs,
		MinVersion: tls.VersionTLS12,
	}
}

// envelopeAddress extracts the bare address from values such as
// "Pi <pi@example.com>". Unparsable values are used as is.
func envelopeAddress(s string) string {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return s
	}
	return addr.Address
}
