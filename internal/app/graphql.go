package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/httplog/internal/client"
	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/logger"
)

// queryFilePrefix marks a query that is read from a file, e.g. "@query.graphql".
const queryFilePrefix = "@"

// GraphQLParams holds the GraphQL operation described on the command line.
type GraphQLParams struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string
	// Query is the GraphQL document, or "@path" to read it from a file.
	Query string
	// Variables are "name=value" pairs. Values that are valid JSON are sent decoded, others as strings.
	Variables []string
	// Headers are "Name: value" lines.
	Headers []string
}

// ExecuteGraphQLCommand runs the GraphQL operation described by params and writes
// the "data" object of the result to out as indented JSON.
func ExecuteGraphQLCommand(ctx context.Context, cfg *config.Config, params *GraphQLParams, out io.Writer) error {
	query, err := loadQuery(params.Query)
	if err != nil {
		return err
	}

	variables, err := parseVariables(params.Variables)
	if err != nil {
		return err
	}

	header, err := parseHeaders(params.Headers)
	if err != nil {
		return err
	}

	sink, closeSink, err := newSink(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeSink(); closeErr != nil {
			logger.Warnf(ctx, "Failed to close log file: %v", closeErr)
		}
	}()

	httpClient, err := client.NewClient(cfg, sink)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP client: %w", err)
	}

	data, err := httpClient.GraphQL(ctx, params.Endpoint, &client.GraphQLQuery{
		Query:     query,
		Variables: variables,
		Header:    header,
	})
	if err != nil {
		return fmt.Errorf("GraphQL request failed: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err = encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to write GraphQL result: %w", err)
	}

	return nil
}

func loadQuery(query string) (string, error) {
	path, found := strings.CutPrefix(query, queryFilePrefix)
	if !found {
		return query, nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}

	return string(content), nil
}

func parseVariables(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil //nolint:nilnil // No variables is a valid result.
	}

	variables := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		name, rawValue, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidVariable, pair)
		}

		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrEmptyVariableName, pair)
		}

		var value any
		if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
			value = rawValue
		}

		variables[name] = value
	}

	return variables, nil
}
