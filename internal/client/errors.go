package client

import "errors"

var (
	// ErrEmptyURL indicates that a request has no target URL.
	ErrEmptyURL = errors.New("request URL cannot be empty")
	// ErrUnsupportedScheme indicates that a request URL is not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrEmptyQuery indicates that a GraphQL query is empty.
	ErrEmptyQuery = errors.New("graphql query cannot be empty")
)
