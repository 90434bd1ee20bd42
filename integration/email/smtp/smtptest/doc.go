// Package smtptest provides an in-process SMTP relay for tests, built on
// github.com/emersion/go-smtp.
//
// The server listens on 127.0.0.1, offers STARTTLS with a freshly generated
// self-signed certificate, accepts AUTH PLAIN and records every message that
// completes the DATA phase:
//
//	srv := smtptest.NewServer(t, smtptest.WithCredentials("robot", "secret"))
//
//	client, _ := smtp.New(smtp.Config{
//		Host: srv.Host(), Port: srv.Port(),
//		Username: "robot", Password: "secret", From: "pi@example.com",
//	}, smtp.WithRootCAs(srv.RootCAs()))
//
//	_ = client.Send(ctx, msg)
//	msgs := srv.Messages()
//
// Options make the server refuse authentication, reject recipients or
// omit STARTTLS so that failure paths can be exercised.
package smtptest
