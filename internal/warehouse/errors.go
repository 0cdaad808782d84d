package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
)

var (
	// ErrUnavailable means a connection could not be acquired or the
	// warehouse refused to talk to us. Maps to HTTP 503.
	ErrUnavailable = errors.New("warehouse unavailable")

	// ErrTimeout means the query exceeded the request deadline. Maps to
	// HTTP 504.
	ErrTimeout = errors.New("warehouse query timeout")

	// ErrNotReadOnly means a statement other than SELECT/WITH reached the
	// adapter. This is a programming bug, not an input error.
	ErrNotReadOnly = errors.New("warehouse adapter is read-only")
)

// classify wraps a driver error with the taxonomy sentinel it belongs to so
// callers can errors.Is their way to an HTTP status.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.Join(ErrTimeout, err)
		}
		return errors.Join(ErrUnavailable, err)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return errors.Join(ErrUnavailable, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "dial tcp"),
		strings.Contains(msg, "too many connections"),
		strings.Contains(msg, "bad connection"):
		return errors.Join(ErrUnavailable, err)
	case strings.Contains(msg, "statement timeout"),
		strings.Contains(msg, "canceling statement due to"):
		return errors.Join(ErrTimeout, err)
	}
	return err
}
