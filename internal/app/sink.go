package app

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/constants"
	http_transport "github.com/oshokin/httplog/internal/transport/http"
)

const appendFileOptions = os.O_CREATE | os.O_APPEND | os.O_WRONLY

// newSink returns the destination of the HTTP log and a function releasing it.
// With log_file set the blocks are appended to that file, otherwise they go to the application logger.
func newSink(cfg *config.Config) (http_transport.Sink, func() error, error) {
	if cfg.LogFile == "" {
		return http_transport.NewZapSink(zapcore.InfoLevel), func() error { return nil }, nil
	}

	if dir := filepath.Dir(cfg.LogFile); dir != "." {
		if err := os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(cfg.LogFile), appendFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return http_transport.NewWriterSink(f), f.Close, nil
}
