package remote

import (
	"errors"
	"fmt"

	"github.com/wealthlens/wealthlens/internal/domain"
)

// ErrorKind classifies a failed fetch. Callers branch on the kind, never
// on error strings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoConnection
	KindTimeout
	KindHTTPStatus
	KindMalformedBody
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoConnection:
		return "no_connection"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindMalformedBody:
		return "malformed_body"
	default:
		return "unknown"
	}
}

// Error carries the classified outcome of one domain fetch.
type Error struct {
	Kind   ErrorKind
	Domain domain.Domain
	Status int // HTTP status code, set only for KindHTTPStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("fetch %s: %s (%d): %v", e.Domain, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Domain, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from any error chain, defaulting to
// KindUnknown for errors this package did not produce.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
