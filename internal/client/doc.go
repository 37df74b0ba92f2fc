// Package client builds the HTTP client used by the command line: a cookie-aware
// http.Client whose transport chain injects default headers and logs every
// request/response cycle, plus a GraphQL client running over the same chain.
package client
