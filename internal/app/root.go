package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/httplog/internal/client"
	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/logger"
	"github.com/oshokin/httplog/internal/utils"
)

// RequestParams holds the request described on the command line.
type RequestParams struct {
	// URL is the target URL.
	URL string
	// Method is the HTTP method, chosen from Data when empty.
	Method string
	// Data is the raw request body.
	Data string
	// Headers are "Name: value" lines.
	Headers []string
	// OutputPath, when set, receives the response body instead of stdout.
	// An existing directory gets a file named after the URL.
	OutputPath string
}

// ExecuteRootCommand sends the request described by params and writes the response body
// to params.OutputPath or to out. The request and response are logged according to cfg.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, params *RequestParams, out io.Writer) error {
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

	request := &client.Request{
		Method: params.Method,
		URL:    params.URL,
		Header: header,
	}

	if params.Data != "" {
		request.Body = strings.NewReader(params.Data)
	}

	resp, err := httpClient.Do(ctx, request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if resp.StatusCode >= http.StatusBadRequest {
		logger.Warnf(ctx, "Server responded with status %s", resp.Status)
	}

	if params.OutputPath != "" {
		return saveResponse(ctx, cfg, resp, params.URL, params.OutputPath)
	}

	written, truncated, err := copyLimited(out, resp.Body, cfg.ParsedMaxResponseSize)
	if err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}

	if truncated {
		logger.Warnf(ctx, "Response truncated to %s", humanize.Bytes(uint64(written)))
	}

	logger.Debugf(ctx, "Wrote %d bytes of response body", written)

	return nil
}

func parseHeaders(lines []string) (http.Header, error) {
	header := make(http.Header, len(lines))

	for _, line := range lines {
		name, value, err := utils.ParseHeaderLine(line)
		if err != nil {
			return nil, err
		}

		header.Add(name, value)
	}

	return header, nil
}
