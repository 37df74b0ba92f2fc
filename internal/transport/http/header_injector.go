package http

import (
	"net/http"
)

// HeaderInjector is a custom http.RoundTripper that adds default headers to HTTP requests.
// It wraps another http.RoundTripper; a header the request already sets to a non-empty value is left alone.
type HeaderInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// headers holds the defaults to inject.
	headers http.Header
}

// NewHeaderInjector creates and returns a new instance of HeaderInjector.
// The defaults are copied, later changes to headers do not affect the injector.
func NewHeaderInjector(next http.RoundTripper, headers http.Header) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &HeaderInjector{
		next:    next,
		headers: headers.Clone(),
	}
}

// RoundTrip executes a single HTTP transaction with the missing default headers added.
// It implements the http.RoundTripper interface. The caller's request is not modified.
func (t *HeaderInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	var missing []string

	for name := range t.headers {
		if req.Header.Get(name) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return t.next.RoundTrip(req)
	}

	injected := req.Clone(req.Context())
	if injected.Header == nil {
		injected.Header = make(http.Header, len(missing))
	}

	for _, name := range missing {
		injected.Header[name] = append([]string(nil), t.headers[name]...)
	}

	return t.next.RoundTrip(injected)
}
