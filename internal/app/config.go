package app

import (
	"context"

	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/logger"
)

// ExecuteConfigInitCommand writes a configuration file with the default settings to path.
// An existing file is only replaced when force is set.
func ExecuteConfigInitCommand(ctx context.Context, path string, force bool) error {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if err := config.SaveConfig(config.DefaultConfig(), path, force); err != nil {
		return err
	}

	logger.Infof(ctx, "Configuration written to '%s'", path)

	return nil
}
