package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/constants"
	"github.com/oshokin/httplog/internal/logger"
	"github.com/oshokin/httplog/internal/utils"
)

const (
	overwriteFileOptions = os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	partFileSuffix       = ".part"
)

// saveResponse writes the response body to outputPath through a temporary .part file,
// which is renamed once the whole body has been written.
func saveResponse(ctx context.Context, cfg *config.Config, resp *http.Response, rawURL, outputPath string) error {
	targetPath, err := resolveOutputPath(outputPath, rawURL)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(targetPath); dir != "." {
		if err = os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempFilePath := targetPath + partFileSuffix

	// Always overwrite .part files (they indicate incomplete downloads).
	f, err := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	var downloadSucceeded bool

	defer func() {
		if downloadSucceeded {
			return
		}

		closeErr := f.Close()

		if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
				tempFilePath, removeErr, closeErr)
		}
	}()

	startTime := time.Now()

	var writer io.Writer = f

	if logger.Level() <= zap.InfoLevel {
		writer = io.MultiWriter(f, newProgressBar(resp.ContentLength, cfg.ParsedMaxResponseSize))
	}

	written, truncated, err := copyLimited(writer, resp.Body, cfg.ParsedMaxResponseSize)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err = os.Rename(tempFilePath, targetPath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	downloadSucceeded = true

	if truncated {
		logger.Warnf(ctx, "Response truncated to %s", humanize.Bytes(uint64(written)))
	}

	logger.Infof(ctx, "Saved %s to '%s' in %s",
		humanize.Bytes(uint64(written)), targetPath, time.Since(startTime).Round(time.Millisecond))

	return nil
}

// resolveOutputPath returns outputPath, or a file inside it named after rawURL when outputPath is a directory.
func resolveOutputPath(outputPath, rawURL string) (string, error) {
	info, err := os.Stat(outputPath)

	switch {
	case err == nil && info.IsDir():
		return filepath.Join(outputPath, utils.RemoteFilename(rawURL)), nil
	case err == nil, errors.Is(err, os.ErrNotExist):
		return outputPath, nil
	default:
		return "", fmt.Errorf("failed to check output path: %w", err)
	}
}

// copyLimited copies src to dst. A positive limit caps the number of bytes copied,
// and truncated reports whether src had more data than that.
func copyLimited(dst io.Writer, src io.Reader, limit int64) (int64, bool, error) {
	if limit <= 0 {
		written, err := io.Copy(dst, src)

		return written, false, err
	}

	written, err := io.CopyN(dst, src, limit)
	if errors.Is(err, io.EOF) {
		return written, false, nil
	}

	if err != nil {
		return written, false, err
	}

	extra, err := io.CopyN(io.Discard, src, 1)
	if err != nil && !errors.Is(err, io.EOF) {
		return written, false, err
	}

	return written, extra > 0, nil
}

func newProgressBar(contentLength, limit int64) *progressbar.ProgressBar {
	total := contentLength
	if limit > 0 && total > limit {
		total = limit
	}

	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
