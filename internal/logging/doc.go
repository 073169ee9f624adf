// Package logging provides structured logging for rigcheck.
//
// By default logs are slog text lines on stderr at the configured level.
// With --debug, JSON logs are also written to ~/.rigcheck/logs/rigcheck.log
// with size-based rotation, and `rigcheck logs` reads them back. The MCP
// server logs to the file only, since stdout carries the protocol.
package logging
