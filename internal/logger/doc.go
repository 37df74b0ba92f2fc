// Package logger wraps zap for the whole application.
//
// Loggers travel in a context.Context: WithKV and WithName derive a context whose
// logger carries extra fields or a name, and the package-level helpers (Infof,
// WarnKV, Log and the rest) write through whatever logger the context holds,
// falling back to the global console logger on stderr. The root command stores
// a session_id field this way, so every line of one run can be grouped.
package logger
