// Package log provides slog loggers that sanitize sensitive values.
//
// The SecureHandler wraps any slog handler. It masks values logged under
// sensitive keys such as cookie, authorization or token. URL values stay
// readable: only a userinfo password and the values of sensitive query
// parameters (session, sid, token, key ...) are masked.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("fetched", "url", "http://www.ics.uci.edu/?sid=abc")
//	// url="http://www.ics.uci.edu/?sid=***REDACTED***"
//
// NewFileWriter returns a size-rotating file writer for the --log-file flag.
package log
