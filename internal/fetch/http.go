package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "doclinks/0.1.0"
	DefaultMaxBytes  = 10 << 20
)

// HTTPOptions configures an HTTPFetcher. Zero values select the defaults.
type HTTPOptions struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	Stats     *Stats
}

// HTTPFetcher fetches text documents over HTTP(S) and rejects responses that
// are not plausibly text.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	stats     *Stats
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		stats:     opts.Stats,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (body string, err error) {
	start := time.Now()
	defer func() {
		if f.stats != nil {
			f.stats.Record(time.Since(start).Milliseconds(), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Location: location, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", transportError(location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := http.StatusText(resp.StatusCode)
		if reason == "" {
			reason = "Unknown error"
		}
		return "", &Error{Kind: KindHTTPStatus, Location: location, Status: resp.StatusCode, Reason: reason}
	}

	contentType := resp.Header.Get("Content-Type")
	if !IsTextContentType(contentType) {
		return "", &Error{Kind: KindWrongContentType, Location: location, ContentType: contentType}
	}

	body, err = readBody(resp.Body, contentType, f.maxBytes)
	if errors.Is(err, errTooLarge) {
		return "", &Error{Kind: KindTooLarge, Location: location, Err: err}
	}
	if err != nil {
		return "", transportError(location, err)
	}
	if body == "" {
		return "", &Error{Kind: KindEmpty, Location: location}
	}
	if LooksBinary(body) {
		return "", &Error{Kind: KindBinary, Location: location}
	}
	return body, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() {
	f.client.CloseIdleConnections()
}

func transportError(location string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, Location: location, Err: err}
	}
	return &Error{Kind: KindNetwork, Location: location, Err: err}
}

var errTooLarge = errors.New("response body exceeds size limit")

// readBody reads the response, decoding it to UTF-8 when the response
// declares a charset. A body longer than maxBytes fails with errTooLarge
// instead of being truncated.
func readBody(r io.Reader, contentType string, maxBytes int64) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return "", fmt.Errorf("%w (%d bytes)", errTooLarge, maxBytes)
	}

	data := raw
	if _, params, err := mime.ParseMediaType(contentType); err == nil && params["charset"] != "" {
		decoded, err := charset.NewReader(bytes.NewReader(raw), contentType)
		if err != nil {
			return "", fmt.Errorf("decode charset: %w", err)
		}
		if data, err = io.ReadAll(decoded); err != nil {
			return "", fmt.Errorf("decode charset: %w", err)
		}
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
}

// IsTextContentType reports whether a declared content type is acceptable.
// An absent content type is accepted.
func IsTextContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text") || strings.Contains(ct, "markdown") || strings.Contains(ct, "plain")
}

// LooksBinary reports whether more than 10% of the characters in s are
// control characters other than newline, carriage return and tab.
func LooksBinary(s string) bool {
	total, control := 0, 0
	for _, r := range s {
		total++
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			control++
		}
	}
	return control*10 > total
}
