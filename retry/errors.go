package retry

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	ai "github.com/mwhitford/manifold"
)

// statusCoder is implemented by SDK errors that carry an HTTP status code.
type statusCoder interface {
	StatusCode() int
}

// IsTransient determines whether an error should be retried.
// Explicitly categorized errors are trusted; everything else falls back to
// heuristic detection of rate limits, server errors, and network failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce ai.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ai.ErrorTransient
	}

	var sc statusCoder
	if errors.As(err, &sc) && isTransientStatusCode(sc.StatusCode()) {
		return true
	}

	if code := googleAPIErrorCode(err); code > 0 && isTransientStatusCode(code) {
		return true
	}

	return isTransientNetworkError(err)
}

// isTransientStatusCode reports whether an HTTP status code indicates a
// transient failure: 429 or any 5xx.
func isTransientStatusCode(code int) bool {
	return code == 429 || (code >= 500 && code < 600)
}

// googleAPIErrorCode extracts a status code from a Google API error message.
// googleapi.Error exposes a Code field rather than a StatusCode method, so
// the message pattern "googleapi: Error NNN" is matched instead.
func googleAPIErrorCode(err error) int {
	msg := err.Error()
	if !strings.Contains(msg, "googleapi:") {
		return 0
	}
	for _, code := range []struct {
		pattern string
		value   int
	}{
		{"Error 429", 429},
		{"Error 500", 500},
		{"Error 502", 502},
		{"Error 503", 503},
		{"Error 504", 504},
	} {
		if strings.Contains(msg, code.pattern) {
			return code.value
		}
	}
	return 0
}

// isTransientNetworkError checks for network-level transient errors.
func isTransientNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && isTransientNetworkError(urlErr.Err) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		switch syscallErr {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ETIMEDOUT:
			return true
		}
	}

	// Message-pattern fallback for errors that lost their type on the way.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset",
		"connection refused",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"server error",
		"bad gateway",
		"gateway timeout",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
