package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers return the empty Attr for missing values,
// which slog handlers drop.

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Elapsed records the time since start under the key "elapsed".
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Action names the operation being performed.
func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Result records an operation outcome such as "sent" or "failed".
func Result(result string) slog.Attr {
	return slog.String("result", result)
}

// Stage records the delivery stage reached or failed.
func Stage(stage string) slog.Attr {
	if stage == "" {
		return slog.Attr{}
	}
	return slog.String("stage", stage)
}

// Server records a remote host:port address.
func Server(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("server", addr)
}

// Recipient records an email recipient address.
func Recipient(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("recipient", addr)
}
