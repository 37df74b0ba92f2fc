package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/machinebox/graphql"

	"github.com/oshokin/httplog/internal/config"
	http_transport "github.com/oshokin/httplog/internal/transport/http"
)

// Client defines the operations the command line performs over HTTP.
type Client interface {
	// Do sends a single request and returns the response; the caller closes its body.
	Do(ctx context.Context, request *Request) (*http.Response, error)
	// GraphQL runs a query against endpoint and returns the decoded "data" object.
	GraphQL(ctx context.Context, endpoint string, query *GraphQLQuery) (map[string]any, error)
	// SetVerbosity changes how much of the following requests is logged.
	SetVerbosity(level http_transport.Level) error
}

// Request describes one HTTP call.
type Request struct {
	// Method is the HTTP method, GET when empty (POST when Body is set).
	Method string
	// URL is the absolute target URL.
	URL string
	// Header holds request headers.
	Header http.Header
	// Body is the raw request body, nil for none.
	Body io.Reader
}

// GraphQLQuery describes one GraphQL operation.
type GraphQLQuery struct {
	// Query is the GraphQL document.
	Query string
	// Variables are bound to the query variables.
	Variables map[string]any
	// Header holds additional request headers.
	Header http.Header
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// logTransport logs every round trip made by httpClient.
	logTransport *http_transport.LogTransport
}

// NewClient creates and returns a new instance of ClientImpl.
// Requests flow through the header injector first, so the log shows the headers actually sent.
func NewClient(cfg *config.Config, sink http_transport.Sink) (*ClientImpl, error) {
	// Create a cookie jar so redirects and follow-up requests keep session cookies.
	cookies, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	logTransport, err := http_transport.NewLogTransport(
		http.DefaultTransport,
		http_transport.WithLevel(cfg.ParsedVerbosity),
		http_transport.WithSink(sink))
	if err != nil {
		return nil, fmt.Errorf("failed to create logging transport: %w", err)
	}

	// Initialize the HTTP client with custom transport and timeout.
	httpClient := &http.Client{
		Transport: http_transport.NewHeaderInjector(logTransport, cfg.ParsedDefaultHeaders),
		Jar:       cookies,
		Timeout:   cfg.ParsedTimeout,
	}

	return &ClientImpl{
		httpClient:   httpClient,
		logTransport: logTransport,
	}, nil
}

// HTTPClient returns the underlying http.Client.
func (c *ClientImpl) HTTPClient() *http.Client {
	return c.httpClient
}

// SetVerbosity changes how much of the following requests is logged.
func (c *ClientImpl) SetVerbosity(level http_transport.Level) error {
	return c.logTransport.SetLevel(level)
}

// Do sends a single request and returns the response.
func (c *ClientImpl) Do(ctx context.Context, request *Request) (*http.Response, error) {
	if err := validateURL(request.URL); err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(request.Method))
	if method == "" {
		method = http.MethodGet
		if request.Body != nil {
			method = http.MethodPost
		}
	}

	body := request.Body
	if body == nil {
		body = http.NoBody
	}

	httpRequest, err := http.NewRequestWithContext(ctx, method, request.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range request.Header {
		for _, value := range values {
			httpRequest.Header.Add(name, value)
		}
	}

	return c.httpClient.Do(httpRequest)
}

// GraphQL runs a query against endpoint and returns the decoded "data" object.
func (c *ClientImpl) GraphQL(ctx context.Context, endpoint string, query *GraphQLQuery) (map[string]any, error) {
	if err := validateURL(endpoint); err != nil {
		return nil, err
	}

	if strings.TrimSpace(query.Query) == "" {
		return nil, ErrEmptyQuery
	}

	graphqlClient := graphql.NewClient(endpoint, graphql.WithHTTPClient(c.httpClient))

	graphqlRequest := graphql.NewRequest(query.Query)

	for name, value := range query.Variables {
		graphqlRequest.Var(name, value)
	}

	for name, values := range query.Header {
		for _, value := range values {
			graphqlRequest.Header.Add(name, value)
		}
	}

	var graphQLResponse map[string]any
	if err := graphqlClient.Run(ctx, graphqlRequest, &graphQLResponse); err != nil {
		return nil, err
	}

	return graphQLResponse, nil
}

func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrEmptyURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: '%s'", ErrUnsupportedScheme, parsed.Scheme)
	}

	return nil
}
