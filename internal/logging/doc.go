// Package logging builds the slog loggers chronicle uses for its own
// diagnostics.
//
// This is deliberately separate from the emission pipeline: entries flowing
// through the pipeline go to the configured sinks, while warnings about the
// pipeline itself (a sink that degraded, a spool write that failed) go
// through these loggers. The package owns the console and JSON handlers,
// standardized attribute keys, and a no-op logger for tests and wiring code
// that cannot fail.
package logging
