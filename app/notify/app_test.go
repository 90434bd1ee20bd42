package notify_test

import (
	"bytes"
	"context"
	"io"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beancount-pi/notify/app/notify"
	"github.com/beancount-pi/notify/core/config"
	"github.com/beancount-pi/notify/core/email"
	"github.com/beancount-pi/notify/core/logger"
	"github.com/beancount-pi/notify/integration/email/smtp"
	"github.com/beancount-pi/notify/integration/email/smtp/smtptest"
)

var requiredKeys = []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASS", "SMTP_FROM", "SMTP_TO"}

func fullEnviron(srv *smtptest.Server) map[string]string {
	return map[string]string{
		"SMTP_HOST": srv.Host(),
		"SMTP_PORT": strconv.Itoa(srv.Port()),
		"SMTP_USER": "robot",
		"SMTP_PASS": "secret",
		"SMTP_FROM": "pi@example.com",
		"SMTP_TO":   "ops@example.com",
	}
}

func countingDialer(count *atomic.Int32) smtp.DialFunc {
	var d net.Dialer
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		count.Add(1)
		return d.DialContext(ctx, network, addr)
	}
}

func newApp(t *testing.T, srv *smtptest.Server, dials *atomic.Int32, opts ...notify.AppOption) *notify.App {
	t.Helper()

	base := []notify.AppOption{
		notify.WithSMTPOptions(
			smtp.WithRootCAs(srv.RootCAs()),
			smtp.WithDialer(countingDialer(dials)),
		),
	}
	app, err := notify.NewApp(append(base, opts...)...)
	require.NoError(t, err)
	return app
}

func bodyOf(t *testing.T, raw []byte) (*mail.Message, string) {
	t.Helper()

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)

	var r io.Reader = parsed.Body
	if strings.EqualFold(parsed.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
		r = quotedprintable.NewReader(r)
	}
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	return parsed, string(body)
}

func TestApp_Notify_Success(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithCredentials("robot", "secret"))
	var dials atomic.Int32
	app := newApp(t, srv, &dials, notify.WithEnviron(fullEnviron(srv)))

	require.NoError(t, app.Notify(context.Background(), "fava import failed"))

	assert.Equal(t, int32(1), dials.Load())
	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "pi@example.com", msgs[0].From)
	assert.Equal(t, []string{"ops@example.com"}, msgs[0].To)

	parsed, body := bodyOf(t, msgs[0].Data)
	assert.Equal(t, notify.Subject, parsed.Header.Get("Subject"))
	assert.Contains(t, body, "The nightly ledger sync on your Raspberry Pi failed.")
	assert.Contains(t, body, "fava import failed")
}

func TestApp_Notify_DefaultReason(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithCredentials("robot", "secret"))
	var dials atomic.Int32
	app := newApp(t, srv, &dials, notify.WithEnviron(fullEnviron(srv)))

	require.NoError(t, app.Notify(context.Background(), notify.ReasonFromArgs(nil)))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	_, body := bodyOf(t, msgs[0].Data)
	assert.Contains(t, body, "Unknown failure")
}

func TestApp_Notify_MissingConfiguration(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithCredentials("robot", "secret"))

	// Every non-empty subset of the required keys, either removed or blanked.
	for mask := 1; mask < 1<<len(requiredKeys); mask++ {
		for _, blank := range []bool{false, true} {
			var missing []string
			environ := fullEnviron(srv)
			for i, key := range requiredKeys {
				if mask&(1<<i) == 0 {
					continue
				}
				missing = append(missing, key)
				if blank {
					environ[key] = ""
				} else {
					delete(environ, key)
				}
			}

			name := strings.Join(missing, "+")
			if blank {
				name += "/empty"
			}

			t.Run(name, func(t *testing.T) {
				t.Parallel()

				var dials atomic.Int32
				app := newApp(t, srv, &dials, notify.WithEnviron(environ))

				err := app.Notify(context.Background(), "reason")
				require.Error(t, err)
				assert.ErrorIs(t, err, config.ErrConfiguration)
				assert.Zero(t, dials.Load(), "no connection attempt on configuration error")
			})
		}
	}

	assert.Zero(t, srv.Connections())
}

func TestApp_Notify_InvalidPort(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)

	for _, port := range []string{"0", "70000", "-1", "smtp"} {
		t.Run(port, func(t *testing.T) {
			t.Parallel()

			environ := fullEnviron(srv)
			environ["SMTP_PORT"] = port

			var dials atomic.Int32
			app := newApp(t, srv, &dials, notify.WithEnviron(environ))

			err := app.Notify(context.Background(), "reason")
			assert.ErrorIs(t, err, config.ErrConfiguration)
			assert.Zero(t, dials.Load())
		})
	}
}

func TestApp_Notify_AuthRejected(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t, smtptest.WithCredentials("robot", "secret"), smtptest.RejectAuth())

	var logs bytes.Buffer
	var dials atomic.Int32
	app := newApp(t, srv, &dials,
		notify.WithEnviron(fullEnviron(srv)),
		notify.WithLogger(logger.New(logger.WithOutput(&logs))),
	)

	err := app.Notify(context.Background(), "reason")
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrConfiguration)
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)

	assert.Equal(t, int32(1), dials.Load())
	assert.Empty(t, srv.Messages())

	assert.Contains(t, logs.String(), "failure notice not sent")
	assert.Contains(t, logs.String(), "stage=encryption_negotiated")
	assert.Contains(t, logs.String(), "result=failed")
}

func TestApp_EnvironPrecedence(t *testing.T) {
	t.Parallel()

	process := map[string]string{
		"SMTP_HOST": "env.example.com",
		"SMTP_TO":   "env@example.com",
	}
	file := map[string]string{
		"SMTP_HOST": "file.example.com",
		"SMTP_TO":   "file@example.com",
		"SMTP_USER": "robot",
		"SMTP_PASS": "secret",
		"SMTP_FROM": "pi@example.com",
		"SMTP_PORT": "465",
	}

	app, err := notify.NewApp(notify.WithEnviron(process, file))
	require.NoError(t, err)

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env.example.com", cfg.SMTP.Host, "environment wins over file")
	assert.Equal(t, "env@example.com", cfg.To)
	assert.Equal(t, "robot", cfg.SMTP.Username, "file fills unset keys")
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, smtp.DefaultTimeout, cfg.SMTP.Timeout)
}

func TestApp_EmptyEnvironmentValueBeatsFile(t *testing.T) {
	t.Parallel()

	process := map[string]string{"SMTP_PASS": ""}
	file := map[string]string{
		"SMTP_HOST": "mail.example.com",
		"SMTP_USER": "robot",
		"SMTP_PASS": "secret",
		"SMTP_FROM": "pi@example.com",
		"SMTP_TO":   "ops@example.com",
	}

	app, err := notify.NewApp(notify.WithEnviron(process, file))
	require.NoError(t, err)

	_, err = app.LoadConfig()
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestApp_Notify_BlankPortShadowsFile(t *testing.T) {
	t.Parallel()

	srv := smtptest.NewServer(t)

	for _, key := range []string{"SMTP_PORT", "SMTP_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			file := fullEnviron(srv)
			file["SMTP_TIMEOUT"] = "5s"

			var dials atomic.Int32
			app := newApp(t, srv, &dials, notify.WithEnviron(map[string]string{key: ""}, file))

			err := app.Notify(context.Background(), "reason")
			require.ErrorIs(t, err, config.ErrConfiguration)
			assert.Contains(t, err.Error(), key)
			assert.Zero(t, dials.Load())
			assert.Empty(t, srv.Messages())
		})
	}
}

func TestApp_LoadConfig_AbsentPortUsesDefault(t *testing.T) {
	t.Parallel()

	environ := map[string]string{
		"SMTP_HOST": "mail.example.com",
		"SMTP_USER": "robot",
		"SMTP_PASS": "secret",
		"SMTP_FROM": "pi@example.com",
		"SMTP_TO":   "ops@example.com",
	}

	app, err := notify.NewApp(notify.WithEnviron(environ))
	require.NoError(t, err)

	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestApp_WithSender(t *testing.T) {
	t.Parallel()

	environ := map[string]string{
		"SMTP_HOST": "mail.example.com",
		"SMTP_USER": "robot",
		"SMTP_PASS": "secret",
		"SMTP_FROM": "pi@example.com",
		"SMTP_TO":   "ops@example.com",
	}

	var sent []email.Message
	app, err := notify.NewApp(
		notify.WithEnviron(environ),
		notify.WithSender(email.SenderFunc(func(_ context.Context, msg email.Message) error {
			sent = append(sent, msg)
			return nil
		})),
	)
	require.NoError(t, err)

	require.NoError(t, app.Notify(context.Background(), "disk full"))
	require.Len(t, sent, 1)
	assert.Equal(t, notify.FailureNotice("disk full", "pi@example.com", "ops@example.com"), sent[0])
}

func TestApp_WithSender_StillRequiresConfig(t *testing.T) {
	t.Parallel()

	called := false
	app, err := notify.NewApp(
		notify.WithEnviron(map[string]string{}),
		notify.WithSender(email.SenderFunc(func(context.Context, email.Message) error {
			called = true
			return nil
		})),
	)
	require.NoError(t, err)

	err = app.Notify(context.Background(), "reason")
	assert.ErrorIs(t, err, config.ErrConfiguration)
	assert.False(t, called)
}

func TestNewApp_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := notify.NewApp(notify.WithLogger(nil))
	assert.Error(t, err)

	_, err = notify.NewApp(notify.WithSender(nil))
	assert.Error(t, err)
}
