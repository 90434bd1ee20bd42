package smtp

import "errors"

// ErrStartTLSUnsupported is returned when the relay does not advertise STARTTLS.
// Credentials are never sent over an unencrypted connection.
var ErrStartTLSUnsupported = errors.New("server does not support STARTTLS")
