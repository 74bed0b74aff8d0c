package gateway

import (
	"errors"
	"log/slog"
	"net"
)

// ResilientListener wraps net.Listener so recoverable errors are handled
// gracefully: a flaky accept must not crash the interactions endpoint.
type ResilientListener struct {
	net.Listener
	Logger *slog.Logger
}

// NewResilientListener wraps the given listener. A nil logger falls back
// to the default.
func NewResilientListener(listenerToWrap net.Listener, logger *slog.Logger) *ResilientListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientListener{Listener: listenerToWrap, Logger: logger}
}

// Accept will gracefully handle recoverable errors and continue without
// crashing the server.
func (l *ResilientListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			// If the listener was closed, this is a fatal error. Propagate it.
			if errors.Is(err, net.ErrClosed) {
				return nil, err
			}

			// For any other error, log it and continue to the next
			// connection attempt.
			l.Logger.Warn("recoverable listener error, connection rejected", "error", err)
			continue
		}
		return conn, nil
	}
}
