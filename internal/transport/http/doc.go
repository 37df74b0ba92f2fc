// Package http provides http.RoundTripper middleware for the HTTP client:
// LogTransport prints every request/response cycle at a configurable verbosity
// without changing what the caller sends or receives, and HeaderInjector adds
// default headers to outgoing requests.
package http
