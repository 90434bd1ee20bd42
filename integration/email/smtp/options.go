package smtp

import (
	"context"
	"crypto/x509"
	"log/slog"
	"net"

	"github.com/beancount-pi/notify/core/logger"
)

// DialFunc opens the transport connection to the relay.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the network dialer. The configured timeout still
// applies to the returned connection.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// WithRootCAs sets the certificate pool used to verify the relay.
// The default (nil) uses the system trust store.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		c.rootCAs = pool
	}
}

// WithLocalName sets the name sent with EHLO. Defaults to "localhost".
func WithLocalName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.localName = name
		}
	}
}

// WithLogger sets the logger used for stage transitions.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log.With(logger.Component("smtp"))
		}
	}
}
