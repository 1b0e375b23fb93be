package usecase

import "log/slog"

// ResolveLogger guarantees a non-nil logger.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
