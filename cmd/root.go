package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/httplog/internal/app"
	"github.com/oshokin/httplog/internal/config"
	"github.com/oshokin/httplog/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "httplog [flags] {url}",
		Short: "Send an HTTP request and log the request and the response.",
		Long: `httplog sends a single HTTP request and logs what went over the wire.

The verbosity controls how much of each exchange is logged:
- none: nothing
- headers: request and status lines with headers
- body: request and status lines with text bodies
- normal: everything

Binary bodies are never printed. The response body is written to stdout or to the --output file.`,
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(ctx, "Failed to parse flags: %v", err)
			}

			params, err := requestParamsFromFlags(cmd.Flags(), args[0])
			if err != nil {
				logger.Fatalf(ctx, "Failed to parse flags: %v", err)
			}

			if err = app.ExecuteRootCommand(ctx, appConfig, params, os.Stdout); err != nil {
				logger.Fatalf(ctx, "Failed to execute request: %v", err)
			}
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	ctx = logger.WithKV(ctx, "session_id", uuid.NewString())

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmdPersistentFlags := rootCmd.PersistentFlags()

	rootCmdPersistentFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdPersistentFlags.StringP(
		"verbosity",
		"v",
		"",
		"how much of each exchange is logged: none, headers, body, normal.")

	rootCmdPersistentFlags.StringP(
		"timeout",
		"t",
		"",
		"overall request timeout, for example: 10s, 1m.")

	rootCmdPersistentFlags.StringArrayP(
		"header",
		"H",
		nil,
		"extra request header in 'Name: value' form, can be repeated.")

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.StringP(
		"method",
		"X",
		"",
		"HTTP method (default is GET, or POST when --data is set).")

	rootCmdFlags.StringP(
		"data",
		"d",
		"",
		"request body.")

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"file or directory to save the response body to instead of stdout.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = config.ValidateConfig(appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("verbosity"); flag != nil && flag.Changed {
		cfg.Verbosity, _ = flags.GetString("verbosity")
	}

	if flag := flags.Lookup("timeout"); flag != nil && flag.Changed {
		cfg.Timeout, _ = flags.GetString("timeout")
	}

	return config.ValidateConfig(cfg)
}

func requestParamsFromFlags(flags *pflag.FlagSet, url string) (*app.RequestParams, error) {
	params := &app.RequestParams{URL: url}

	var err error

	if params.Method, err = flags.GetString("method"); err != nil {
		return nil, err
	}

	if params.Data, err = flags.GetString("data"); err != nil {
		return nil, err
	}

	if params.Headers, err = flags.GetStringArray("header"); err != nil {
		return nil, err
	}

	if params.OutputPath, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	return params, nil
}
