// Package pipeline is the emission core: it assembles log entries, applies
// level filtering, and fans each entry out to the enabled sinks.
//
// One Pipeline value owns the mutable runtime settings, the active session,
// and the sinks. Emit is synchronous on the caller's goroutine and never
// returns or raises an error; every internal failure degrades to a
// diagnostics record and, as a last resort, an append to the fixed fallback
// file. The only error surfaced to callers is a ConfigError from Configure.
package pipeline
