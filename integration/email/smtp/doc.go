// Package smtp delivers email.Message values to an SMTP relay.
//
// Every delivery walks the same sequence on a fresh connection:
//
//	Unconnected → Connected → EncryptionNegotiated → Authenticated → Sent → Closed
//
// The client dials the relay, sends EHLO, requires and performs STARTTLS
// (verified against the system trust store), authenticates with AUTH PLAIN
// and transmits the message. The connection is closed on every path. There
// is no retry: the first failure aborts and is reported as a *DeliveryError
// carrying the last stage reached.
//
// Basic usage:
//
//	cfg := smtp.Config{
//		Host:     "smtp.example.com",
//		Port:     587,
//		Username: "robot@example.com",
//		Password: "app-password",
//		From:     "pi@example.com",
//	}
//
//	client, err := smtp.New(cfg, smtp.WithLogger(log))
//	if err != nil {
//		// errors.Is(err, email.ErrInvalidConfig)
//	}
//
//	err = client.Send(ctx, email.Message{
//		From:    cfg.From,
//		To:      "ops@example.com",
//		Subject: "ledger sync FAILED",
//		Body:    "Reason:\ngit pull timed out\n",
//	})
//
//	var derr *smtp.DeliveryError
//	if errors.As(err, &derr) {
//		log.Error("delivery failed", logger.Stage(derr.Stage.String()))
//	}
//
// # Configuration
//
// Config carries env tags for the config package: SMTP_HOST, SMTP_PORT
// (default 587), SMTP_USER, SMTP_PASS, SMTP_FROM and SMTP_TIMEOUT (default
// 30s). The timeout bounds the dial and the whole conversation; a context
// deadline or cancellation cuts it shorter.
//
// # Testing
//
// Package smtptest provides a loopback relay with STARTTLS. Pass its pool
// with WithRootCAs, and use WithDialer to observe connection attempts.
package smtp
