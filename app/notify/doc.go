// Package notify sends the ledger-sync failure notice.
//
// An App resolves SMTP settings from explicit configuration layers, builds
// a fixed-subject plain-text message around the failure reason and hands it
// to an email.Sender (SMTP by default):
//
//	secrets, err := envfile.Read(envfile.DefaultPath)
//	if err != nil {
//		return err
//	}
//
//	app, err := notify.NewApp(
//		notify.WithEnviron(config.ProcessEnv(os.Environ()), secrets),
//		notify.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	err = app.Notify(ctx, notify.ReasonFromArgs(os.Args[1:]))
//	switch {
//	case errors.Is(err, config.ErrConfiguration):
//		// nothing was sent, no connection was attempted
//	case err != nil:
//		// delivery failed; see smtp.DeliveryError
//	}
//
// Layers passed to WithEnviron are ordered by precedence: a key set in an
// earlier layer, even to an empty value, is never overridden by a later one.
package notify
