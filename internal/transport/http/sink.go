package http

//go:generate $MOCKGEN -source=sink.go -destination=mocks/sink_mock.go

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/httplog/internal/logger"
)

// Sink receives the text blocks produced by LogTransport.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Log writes one message. Delivery is best effort.
	Log(ctx context.Context, message string)
}

// SinkFunc adapts an ordinary function to the Sink interface.
type SinkFunc func(ctx context.Context, message string)

// Log calls f(ctx, message).
func (f SinkFunc) Log(ctx context.Context, message string) {
	f(ctx, message)
}

// ZapSink writes messages through the application logger at a fixed level.
type ZapSink struct {
	level zapcore.Level
}

// NewZapSink creates a Sink that forwards messages to the context logger at the given level.
func NewZapSink(level zapcore.Level) *ZapSink {
	return &ZapSink{level: level}
}

// Log writes message to the logger carried by ctx.
func (s *ZapSink) Log(ctx context.Context, message string) {
	logger.Log(ctx, s.level, message)
}

// WriterSink writes each message as a line to an io.Writer, serializing concurrent callers.
type WriterSink struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewWriterSink creates a Sink writing plain lines to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{writer: w}
}

// Log writes message followed by a newline. Write errors are dropped.
func (s *WriterSink) Log(_ context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = io.WriteString(s.writer, message+"\n")
}
