package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observedContext returns a context whose logger records entries at minLevel and above.
func observedContext(minLevel zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(minLevel)

	return ToContext(context.Background(), zap.New(core).Sugar()), logs
}

// TestParseLogLevel tests the ParseLogLevel function.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zapcore.Level
		valid    bool
	}{
		{input: "debug", expected: zapcore.DebugLevel, valid: true},
		{input: "warn", expected: zapcore.WarnLevel, valid: true},
		{input: "fatal", expected: zapcore.FatalLevel, valid: true},
		{input: "ERROR", expected: zapcore.ErrorLevel, valid: true},
		{input: " Info ", expected: zapcore.InfoLevel, valid: true},
		{input: "verbose", expected: zapcore.InfoLevel},
		{input: "   ", expected: zapcore.InfoLevel},
		{input: "", expected: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			t.Parallel()

			level, valid := ParseLogLevel(tt.input)
			assert.Equal(t, tt.expected, level)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

// TestNew_Level tests that a new logger honours its level and falls back to the global one.
func TestNew_Level(t *testing.T) {
	t.Parallel()

	warnOnly := New(zapcore.WarnLevel)
	assert.False(t, warnOnly.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, warnOnly.Desugar().Core().Enabled(zapcore.ErrorLevel))

	require.NotNil(t, New(nil))
}

// TestSetLevel tests that the global level drives Level and IsDebugLevel.
func TestSetLevel(t *testing.T) {
	// Changes global state.
	originalLevel := Level()
	defer SetLevel(originalLevel)

	SetLevel(zapcore.DebugLevel)
	assert.Equal(t, zapcore.DebugLevel, Level())
	assert.True(t, IsDebugLevel())

	SetLevel(zapcore.WarnLevel)
	assert.Equal(t, zapcore.WarnLevel, Level())
	assert.False(t, IsDebugLevel())
	assert.False(t, Logger().Desugar().Core().Enabled(zapcore.InfoLevel))
}

// TestSetLogger tests that context-free logging goes through the replaced global logger.
func TestSetLogger(t *testing.T) {
	// Changes global state.
	originalLogger := Logger()
	defer SetLogger(originalLogger)

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core).Sugar())

	Warnf(context.Background(), "retrying %s", "GET /items")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "retrying GET /items", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

// TestContextLogger tests that loggers travel with the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(zapcore.DebugLevel)
	ctx = WithKV(ctx, "session_id", "abc")
	ctx = WithName(ctx, "transport")

	Infof(ctx, "sent %d bytes", 42)
	WarnKV(ctx, "slow response", "elapsed_ms", 1500)
	Log(ctx, zapcore.ErrorLevel, "failed")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "sent 42 bytes", entries[0].Message)
	assert.Equal(t, "transport", entries[0].LoggerName)
	assert.Equal(t, "abc", entries[0].ContextMap()["session_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(1500), entries[1].ContextMap()["elapsed_ms"])

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "failed", entries[2].Message)
}

// TestWithName tests that nested names are joined with dots.
func TestWithName(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(zapcore.InfoLevel)
	ctx = WithName(WithName(ctx, "client"), "transport")

	Info(ctx, "request block")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "client.transport", entries[0].LoggerName)
}

// TestLevelFunctions tests that each helper writes at its own level.
func TestLevelFunctions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		log      func(ctx context.Context)
		level    zapcore.Level
		message  string
		hasField bool
	}{
		{
			name:    "Debug",
			log:     func(ctx context.Context) { Debug(ctx, "--> END ", "GET") },
			level:   zapcore.DebugLevel,
			message: "--> END GET",
		},
		{
			name:    "Debugf",
			log:     func(ctx context.Context) { Debugf(ctx, "level %s", "body") },
			level:   zapcore.DebugLevel,
			message: "level body",
		},
		{
			name:     "DebugKV",
			log:      func(ctx context.Context) { DebugKV(ctx, "sink", "key", "value") },
			level:    zapcore.DebugLevel,
			message:  "sink",
			hasField: true,
		},
		{
			name:    "Info",
			log:     func(ctx context.Context) { Info(ctx, "<-- END HTTP") },
			level:   zapcore.InfoLevel,
			message: "<-- END HTTP",
		},
		{
			name:     "InfoKV",
			log:      func(ctx context.Context) { InfoKV(ctx, "saved", "key", "value") },
			level:    zapcore.InfoLevel,
			message:  "saved",
			hasField: true,
		},
		{
			name:    "Warn",
			log:     func(ctx context.Context) { Warn(ctx, "truncated") },
			level:   zapcore.WarnLevel,
			message: "truncated",
		},
		{
			name:    "Error",
			log:     func(ctx context.Context) { Error(ctx, "<-- HTTP FAILED") },
			level:   zapcore.ErrorLevel,
			message: "<-- HTTP FAILED",
		},
		{
			name:    "Errorf",
			log:     func(ctx context.Context) { Errorf(ctx, "status %d", 502) },
			level:   zapcore.ErrorLevel,
			message: "status 502",
		},
		{
			name:     "ErrorKV",
			log:      func(ctx context.Context) { ErrorKV(ctx, "failed", "key", "value") },
			level:    zapcore.ErrorLevel,
			message:  "failed",
			hasField: true,
		},
		{
			name:    "Log",
			log:     func(ctx context.Context) { Log(ctx, zapcore.WarnLevel, "custom level") },
			level:   zapcore.WarnLevel,
			message: "custom level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, logs := observedContext(zapcore.DebugLevel)
			tt.log(ctx)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, tt.message, entries[0].Message)

			if tt.hasField {
				assert.Equal(t, "value", entries[0].ContextMap()["key"])
			}
		})
	}
}

// TestPanicf tests that Panicf logs the message before panicking.
func TestPanicf(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(zapcore.DebugLevel)

	assert.PanicsWithValue(t, "broken sink", func() {
		Panicf(ctx, "broken %s", "sink")
	})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.PanicLevel, logs.All()[0].Level)
}

// TestFromContext_Fallback tests that a context without a logger yields the global logger.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	assert.Same(t, Logger(), FromContext(context.Background()))
	//nolint:staticcheck // A nil context must not panic.
	assert.Same(t, Logger(), FromContext(nil))
}

// TestWithKV_Concurrent tests that concurrent round trips can log with their own fields.
func TestWithKV_Concurrent(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext(zapcore.InfoLevel)

	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			InfoKV(WithKV(ctx, "attempt", i), "round trip")
		}()
	}

	wg.Wait()

	seen := make(map[int64]bool)
	for _, entry := range logs.All() {
		attempt, ok := entry.ContextMap()["attempt"].(int64)
		require.True(t, ok)

		seen[attempt] = true
	}

	assert.Len(t, seen, 10)
}
