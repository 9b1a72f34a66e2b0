// Package logging provides structured logging for Haven Core.
//
// It wraps log/slog with configuration-driven handler selection and
// default service attributes. Components receive a *Logger (or a narrow
// logging interface) via dependency injection; there is no package-level
// global logger.
package logging
