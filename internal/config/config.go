package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/httplog/internal/constants"
	"github.com/oshokin/httplog/internal/logger"
	http_transport "github.com/oshokin/httplog/internal/transport/http"
	"github.com/oshokin/httplog/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// LogLevel specifies the application logging level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// Verbosity specifies how much of each request/response is logged (none, headers, body, normal).
	Verbosity string `mapstructure:"verbosity" yaml:"verbosity"`
	// Timeout is the overall timeout of a single request (e.g., "30s").
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
	// UserAgent is sent when a request does not set its own User-Agent.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
	// DefaultHeaders are added to every request that does not already set them.
	DefaultHeaders map[string]string `mapstructure:"default_headers" yaml:"default_headers,omitempty"`
	// LogFile, when set, receives the request/response log instead of the application logger.
	LogFile string `mapstructure:"log_file" yaml:"log_file,omitempty"`
	// MaxResponseSize limits how many bytes are saved from a response (e.g., "10MB"). Empty or "0" disables the limit.
	MaxResponseSize string `mapstructure:"max_response_size" yaml:"max_response_size"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `yaml:"-"`
	// ParsedVerbosity is the parsed transport logging level.
	ParsedVerbosity http_transport.Level `yaml:"-"`
	// ParsedTimeout is the parsed request timeout.
	ParsedTimeout time.Duration `yaml:"-"`
	// ParsedMaxResponseSize is the parsed response size limit in bytes, 0 means unlimited.
	ParsedMaxResponseSize int64 `yaml:"-"`
	// ParsedDefaultHeaders holds DefaultHeaders and UserAgent as canonical HTTP headers.
	ParsedDefaultHeaders http.Header `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".httplog.yaml"

	// DefaultLogLevel is the default application logging level.
	DefaultLogLevel = "info"

	// DefaultVerbosity is the default request/response logging level.
	DefaultVerbosity = "normal"

	// DefaultMaxResponseSize disables the response size limit.
	DefaultMaxResponseSize = "0"

	// userAgentHeader is the HTTP header name for User-Agent.
	userAgentHeader = "User-Agent"
)

// Static error definitions for better error handling.
var (
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidTimeout indicates that the timeout is not a positive duration.
	ErrInvalidTimeout = errors.New("timeout must be positive")
	// ErrInvalidHeaderName indicates that a default header has an empty or malformed name.
	ErrInvalidHeaderName = errors.New("invalid default header name")
	// ErrConfigExists indicates that SaveConfig would overwrite an existing file.
	ErrConfigExists = errors.New("configuration file already exists")
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		Verbosity:       DefaultVerbosity,
		Timeout:         http_transport.DefaultTimeout.String(),
		UserAgent:       http_transport.DefaultUserAgent,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// LoadConfig loads configuration settings from a YAML file.
// A missing file is only tolerated when the default file name is used.
func LoadConfig(configFilename string) (*Config, error) {
	isDefaultFile := configFilename == ""
	if isDefaultFile {
		configFilename = DefaultConfigFilename
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configFilename)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !isDefaultFile || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	parsedVerbosity, err := http_transport.ParseLevel(cfg.Verbosity)
	if err != nil {
		return err
	}

	cfg.ParsedVerbosity = parsedVerbosity

	cfg.ParsedTimeout, err = time.ParseDuration(strings.TrimSpace(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("failed to parse timeout: %w", err)
	}

	if cfg.ParsedTimeout <= 0 {
		return ErrInvalidTimeout
	}

	cfg.ParsedMaxResponseSize = 0

	maxResponseSize := strings.TrimSpace(cfg.MaxResponseSize)
	if maxResponseSize != "" && maxResponseSize != "0" {
		parsedMaxResponseSize, parseErr := humanize.ParseBytes(maxResponseSize)
		if parseErr != nil {
			return fmt.Errorf("failed to parse max response size: %w", parseErr)
		}

		// io.LimitReader accepts only int64 so we transform it safely in order to use it later.
		cfg.ParsedMaxResponseSize = utils.SafeUint64ToInt64(parsedMaxResponseSize)
	}

	headers := make(http.Header, len(cfg.DefaultHeaders)+1)

	for name, value := range cfg.DefaultHeaders {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" || strings.ContainsAny(trimmedName, " \t:") {
			return fmt.Errorf("%w: '%s'", ErrInvalidHeaderName, name)
		}

		headers.Set(trimmedName, value)
	}

	if userAgent := strings.TrimSpace(cfg.UserAgent); userAgent != "" {
		headers.Set(userAgentHeader, userAgent)
	}

	cfg.ParsedDefaultHeaders = headers

	return nil
}

// SaveConfig writes the configuration as YAML to path. An existing file is only replaced when overwrite is set.
func SaveConfig(cfg *Config, path string, overwrite bool) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	exists, err := utils.IsFileExist(path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	if exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(path, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("verbosity", defaults.Verbosity)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("max_response_size", defaults.MaxResponseSize)
}
