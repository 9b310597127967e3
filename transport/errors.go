package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error describes a failed outbound call: a network failure, a timeout, a
// non-2xx response or a body that could not be decoded.
type Error struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "transport error"
	}

	target := fmt.Sprintf("%s %s", e.Method, e.URL)
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("transport: %s: status %d: %v", target, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("transport: %s: unexpected status %d", target, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("transport: %s: %v", target, e.Err)
	}
	return fmt.Sprintf("transport: %s failed", target)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Timeout reports whether the call was aborted by a deadline.
func (e *Error) Timeout() bool {
	if e == nil || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// TransportFailure marks the error as infrastructural, as opposed to a
// negative authentication decision.
func (e *Error) TransportFailure() bool {
	return e != nil
}

// StatusCode returns the HTTP status of the response, or zero when no
// response was received.
func StatusCode(err error) int {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Status
	}
	return 0
}

func retryable(err *Error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err.Err, context.Canceled) {
		return false
	}
	if err.Status == 0 {
		return err.Err != nil && !errors.Is(err.Err, errDecode)
	}
	return err.Status >= 500 || err.Status == 429
}
