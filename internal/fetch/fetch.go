// Package fetch obtains the raw content of a document from a location, either
// a filesystem path or an http(s) URL, and classifies every failure.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher returns the content of the document at location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (string, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, location string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, location string) (string, error) {
	return f(ctx, location)
}

// Kind classifies a fetch failure.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindIO               Kind = "io_error"
	KindNetwork          Kind = "network_error"
	KindTimeout          Kind = "timeout"
	KindHTTPStatus       Kind = "http_status"
	KindWrongContentType Kind = "wrong_content_type"
	KindBinary           Kind = "binary_content"
	KindEmpty            Kind = "empty"
	KindTooLarge         Kind = "too_large"
)

// Error is a classified fetch failure.
type Error struct {
	Kind     Kind
	Location string

	// Set for KindHTTPStatus.
	Status int
	Reason string

	// Set for KindWrongContentType.
	ContentType string

	Err error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindHTTPStatus:
		msg = fmt.Sprintf("HTTP error %d: %s", e.Status, e.Reason)
	case KindWrongContentType:
		msg = fmt.Sprintf("invalid content type: %s, expected text/markdown or text/plain", e.ContentType)
	case KindBinary:
		msg = "content appears to be binary, not text"
	case KindEmpty:
		msg = "content is empty"
	case KindTooLarge:
		msg = "content exceeds size limit"
	case KindNotFound:
		msg = "not found"
	case KindTimeout:
		msg = "request timed out"
	default:
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Location, msg, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Location, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a fetch error, or "" for any other error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err is a fetch error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsTransient reports whether err is a transport level failure (timeout or
// connection error) rather than a definitive answer about the document.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindNetwork:
		return true
	}
	return false
}
