package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrUnavailable reports that the engine control socket is missing or
// unreachable. It is permanent for the call; no retries are performed.
var ErrUnavailable = errors.New("container engine unavailable")

// ErrMalformedResponse reports that the engine answered but the payload
// could not be parsed as the expected structure.
var ErrMalformedResponse = errors.New("malformed engine response")

// RequestError reports that the engine was reachable but rejected the
// call. It carries the HTTP status and the engine's error body so callers
// can distinguish "infrastructure absent" from "request executed but
// failed".
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("engine request failed: status %d: %s", e.StatusCode, e.Body)
}

// IsUnavailable reports whether err means the engine cannot be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// isDecodeError recognizes payload parse failures surfaced by the SDK.
// Truncated bodies decode to an unexpected EOF rather than a syntax error.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
