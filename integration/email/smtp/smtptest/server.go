package smtptest

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"io"
	"log"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
)

// Message is a mail transaction that completed the DATA phase.
// Data holds the message with CRLF line endings folded to LF.
type Message struct {
	AuthUser string
	From     string
	To       []string
	Data     []byte
}

// Server is a go-smtp relay bound to a loopback port that records traffic.
type Server struct {
	username string
	password string

	startTLS        bool
	rejectAuth      bool
	rejectRecipient bool

	smtp     *gosmtp.Server
	listener net.Listener
	rootCAs  *x509.CertPool
	done     chan struct{}

	mu           sync.Mutex
	connections  int
	authAttempts int
	messages     []Message
	closed       bool
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the only username/password pair AUTH accepts.
// Defaults to "user" / "pass".
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithoutSTARTTLS stops the server from advertising STARTTLS.
func WithoutSTARTTLS() Option {
	return func(s *Server) {
		s.startTLS = false
	}
}

// RejectAuth makes every AUTH attempt fail with 535.
func RejectAuth() Option {
	return func(s *Server) {
		s.rejectAuth = true
	}
}

// RejectRecipient makes every RCPT command fail with 550.
func RejectRecipient() Option {
	return func(s *Server) {
		s.rejectRecipient = true
	}
}

// NewServer starts a server and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	cert, pool, err := newCertificate()
	if err != nil {
		t.Fatalf("smtptest: generate certificate: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("smtptest: listen: %v", err)
	}

	s := &Server{
		username: "user",
		password: "pass",
		startTLS: true,
		listener: listener,
		rootCAs:  pool,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	srv := gosmtp.NewServer(&backend{srv: s})
	srv.Domain = "smtptest"
	srv.ErrorLog = log.New(io.Discard, "", 0)
	if s.startTLS {
		srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	}
	s.smtp = srv

	go func() {
		defer close(s.done)
		_ = srv.Serve(listener)
	}()

	t.Cleanup(s.Close)
	return s
}

// Host returns the listening IP address.
func (s *Server) Host() string {
	return s.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.Host(), strconv.Itoa(s.Port()))
}

// RootCAs returns a pool trusting the server certificate.
func (s *Server) RootCAs() *x509.CertPool {
	return s.rootCAs
}

// Connections returns the number of accepted connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// AuthAttempts returns the number of credentials presented to AUTH.
func (s *Server) AuthAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authAttempts
}

// Messages returns a copy of the completed messages.
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Close stops the listener, drops open connections and waits for Serve to return.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.smtp.Close()
	_ = s.listener.Close()
	<-s.done
}

type backend struct {
	srv *Server
}

func (b *backend) NewSession(_ *gosmtp.Conn) (gosmtp.Session, error) {
	b.srv.mu.Lock()
	b.srv.connections++
	b.srv.mu.Unlock()
	return &session{srv: b.srv}, nil
}

type session struct {
	srv *Server

	authUser string
	from     string
	to       []string
}

func (s *session) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, &gosmtp.SMTPError{
			Code:         504,
			EnhancedCode: gosmtp.EnhancedCode{5, 7, 4},
			Message:      "unsupported authentication mechanism",
		}
	}
	return sasl.NewPlainServer(func(_, username, password string) error {
		s.srv.mu.Lock()
		s.srv.authAttempts++
		s.srv.mu.Unlock()

		if s.srv.rejectAuth || username != s.srv.username || password != s.srv.password {
			return gosmtp.ErrAuthFailed
		}
		s.authUser = username
		return nil
	}), nil
}

func (s *session) Mail(from string, _ *gosmtp.MailOptions) error {
	if s.authUser == "" {
		return gosmtp.ErrAuthRequired
	}
	s.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	if s.srv.rejectRecipient {
		return &gosmtp.SMTPError{
			Code:         550,
			EnhancedCode: gosmtp.EnhancedCode{5, 1, 1},
			Message:      "mailbox unavailable",
		}
	}
	s.to = append(s.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.srv.mu.Lock()
	s.srv.messages = append(s.srv.messages, Message{
		AuthUser: s.authUser,
		From:     s.from,
		To:       append([]string(nil), s.to...),
		Data:     bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")),
	})
	s.srv.mu.Unlock()
	return nil
}

func (s *session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *session) Logout() error {
	return nil
}
