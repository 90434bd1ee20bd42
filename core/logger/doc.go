// Package logger builds log/slog loggers and provides attribute helpers.
//
// Create a logger with functional options:
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithOutput(os.Stderr),
//		logger.WithAttr(logger.Component("notify")),
//	)
//
// Levels can be parsed from flags or environment values:
//
//	level, err := logger.ParseLevel("warn")
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil input, so they can be passed
// without nil checks:
//
//	log.Error("delivery failed",
//		logger.Error(err),
//		logger.Action("send"),
//		logger.Elapsed(start),
//	)
//
// Empty attributes are dropped by the standard slog handlers.
package logger
