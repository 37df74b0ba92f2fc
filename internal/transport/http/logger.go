package http

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/httplog/internal/utils"
)

// LogTransport is a custom http.RoundTripper that logs HTTP requests and responses.
// It wraps another http.RoundTripper and writes one block per request and one per response to its Sink.
// Text response bodies are read for logging and handed back to the caller as an equivalent in-memory body.
//
// Header names are written in sorted canonical order, since http.Header does not keep
// the order in which headers were added. Values of a repeated header keep their order.
// A panicking Sink is contained and never reaches the caller.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// sink receives the formatted log blocks.
	sink Sink
	// level holds the current Level; it is replaced as a whole and read once per round trip.
	level atomic.Int32
}

// Option configures a LogTransport.
type Option func(*LogTransport)

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// WithLevel sets the initial verbosity level.
func WithLevel(level Level) Option {
	return func(t *LogTransport) {
		t.level.Store(int32(level))
	}
}

// WithSink sets the destination of the log blocks. A nil sink keeps the default.
func WithSink(sink Sink) Option {
	return func(t *LogTransport) {
		if sink != nil {
			t.sink = sink
		}
	}
}

// NewLogTransport creates and returns a new instance of LogTransport.
// A nil next falls back to http.DefaultTransport. Without options the transport
// logs at LevelNormal through the application logger at info level.
func NewLogTransport(next http.RoundTripper, options ...Option) (*LogTransport, error) {
	if next == nil {
		next = http.DefaultTransport
	}

	t := &LogTransport{
		next: next,
		sink: NewZapSink(zapcore.InfoLevel),
	}

	t.level.Store(int32(LevelNormal))

	for _, option := range options {
		option(t)
	}

	if level := t.Level(); !level.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int32(level))
	}

	return t, nil
}

// Level returns the current verbosity level.
func (t *LogTransport) Level() Level {
	return Level(t.level.Load())
}

// SetLevel replaces the verbosity level for subsequent round trips.
// Round trips already in flight keep the level they started with.
func (t *LogTransport) SetLevel(level Level) error {
	if !level.IsValid() {
		return fmt.Errorf("%w: %d, use LevelNone to disable logging", ErrUnknownLevel, int32(level))
	}

	t.level.Store(int32(level))

	return nil
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface.
// Transport errors are logged and returned unchanged; logging problems never reach the caller.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	level := t.Level()
	if level == LevelNone {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	req = t.logRequest(ctx, req, level)

	// Record the start time to measure the duration of the request.
	startTime := time.Now()

	// Forward the request to the underlying RoundTripper.
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.emit(ctx, failedLinePrefix+err.Error())

		return resp, err
	}

	return t.logResponse(ctx, req, resp, time.Since(startTime).Milliseconds(), level), nil
}

// logRequest writes the request block and returns the request to forward.
// That is req itself, or a clone carrying a replayable body when the body had to be read.
// The END trailer is written on every path.
func (t *LogTransport) logRequest(ctx context.Context, req *http.Request, level Level) (forward *http.Request) {
	var block strings.Builder

	forward = req

	defer func() {
		if r := recover(); r != nil {
			writeLine(&block, requestPrefix, loggingFailedText, fmt.Sprint(r))
		}

		block.WriteString(requestPrefix + " END " + req.Method)
		t.emit(ctx, block.String())
	}()

	writeLine(&block, requestPrefix, req.Method, req.URL.String(), requestProtocol(req))

	if level.logsHeaders() {
		writeHeaders(&block, req.Header)
	}

	if !level.logsBody() || !hasRequestBody(req) {
		return forward
	}

	contentType := req.Header.Get(utils.ContentTypeHeader)
	if !utils.IsTextContentType(contentType) {
		writeLine(&block, binaryBodyPlaceholder(req.ContentLength))

		return forward
	}

	data, forward, err := copyRequestBody(ctx, req)
	if err != nil {
		writeLine(&block, requestPrefix, loggingFailedText, err.Error())

		return forward
	}

	if len(data) == 0 {
		writeLine(&block, emptyBodyPlaceholder)

		return forward
	}

	text, err := utils.DecodeText(data, contentType)
	if err != nil {
		writeLine(&block, requestPrefix, loggingFailedText, err.Error())

		return forward
	}

	writeLine(&block, text)

	return forward
}

// logResponse writes the response block and returns the response the caller should receive.
// When a text body was read for logging, the returned response is a copy carrying an equivalent body.
func (t *LogTransport) logResponse(
	ctx context.Context,
	req *http.Request,
	resp *http.Response,
	elapsedMs int64,
	level Level,
) (result *http.Response) {
	var block strings.Builder

	result = resp

	defer func() {
		if r := recover(); r != nil {
			writeLine(&block, responsePrefix, loggingFailedText, fmt.Sprint(r))
		}

		block.WriteString(responseTrailer)
		t.emit(ctx, block.String())
	}()

	writeLine(&block,
		responsePrefix,
		strconv.Itoa(resp.StatusCode),
		statusMessage(resp),
		responseURL(req, resp),
		"("+strconv.FormatInt(elapsedMs, 10)+"ms)")

	if level.logsHeaders() {
		writeHeaders(&block, resp.Header)
	}

	if !level.logsBody() || !hasResponseBody(resp) {
		return resp
	}

	contentType := resp.Header.Get(utils.ContentTypeHeader)
	if !utils.IsTextContentType(contentType) {
		// The body is left untouched for the caller.
		writeLine(&block, binaryResponseBodyPlaceholder)

		return resp
	}

	data, body, err := DrainBody(resp.Body)
	if err != nil {
		resp.Body = body

		writeLine(&block, responsePrefix, loggingFailedText, err.Error())

		return resp
	}

	rehydrated := *resp
	rehydrated.Body = body
	result = &rehydrated

	text, err := utils.DecodeText(data, contentType)
	if err != nil {
		writeLine(&block, responsePrefix, loggingFailedText, err.Error())

		return result
	}

	writeLine(&block, text)

	return result
}

// emit hands message to the sink. A panic inside the sink is dropped.
func (t *LogTransport) emit(ctx context.Context, message string) {
	defer func() {
		_ = recover()
	}()

	t.sink.Log(ctx, message)
}

// writeLine appends the space-joined parts and a newline.
func writeLine(block *strings.Builder, parts ...string) {
	block.WriteString(strings.Join(parts, " "))
	block.WriteByte('\n')
}

// writeHeaders appends one "Name: value" line per header value.
// Names come in canonical sorted order, repeated values in the order they were added.
func writeHeaders(block *strings.Builder, header http.Header) {
	for _, name := range slices.Sorted(maps.Keys(header)) {
		for _, value := range header[name] {
			block.WriteString(name + ": " + value + "\n")
		}
	}
}

func requestProtocol(req *http.Request) string {
	if req.Proto != "" {
		return req.Proto
	}

	return DefaultProtocol
}

// statusMessage returns the reason phrase of the response, e.g. "OK" for "200 OK".
func statusMessage(resp *http.Response) string {
	if message, found := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); found {
		return message
	}

	if resp.Status != "" && resp.Status != strconv.Itoa(resp.StatusCode) {
		return resp.Status
	}

	return http.StatusText(resp.StatusCode)
}

func responseURL(req *http.Request, resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}

	return req.URL.String()
}

func binaryBodyPlaceholder(contentLength int64) string {
	if contentLength <= 0 {
		return binaryRequestBodyPlaceholder
	}

	return fmt.Sprintf("(binary %s body omitted)", humanize.Bytes(uint64(contentLength)))
}
