package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/httplog/internal/app"
	"github.com/oshokin/httplog/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var graphqlCmd = &cobra.Command{
	Use:   "graphql [flags] {endpoint}",
	Short: "Run a GraphQL query and log the exchange",
	Long: `Run a GraphQL query against an endpoint and print the "data" object as JSON.

The query is given inline or read from a file with '@':
httplog graphql https://api.example.com/graphql --query '{ viewer { login } }'
httplog graphql https://api.example.com/graphql --query @repos.graphql --var owner=oshokin --var first=10

Variable values that are valid JSON are sent decoded, everything else is sent as a string.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		flags := cmd.Flags()

		if err := bindFlagsToConfig(flags, appConfig); err != nil {
			logger.Fatalf(ctx, "Failed to parse flags: %v", err)
		}

		params := &app.GraphQLParams{Endpoint: args[0]}
		params.Query, _ = flags.GetString("query")
		params.Variables, _ = flags.GetStringArray("var")
		params.Headers, _ = flags.GetStringArray("header")

		if err := app.ExecuteGraphQLCommand(ctx, appConfig, params, os.Stdout); err != nil {
			logger.Fatalf(ctx, "Failed to execute GraphQL query: %v", err)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	graphqlCmdFlags := graphqlCmd.Flags()

	graphqlCmdFlags.StringP(
		"query",
		"q",
		"",
		"GraphQL document, or '@path' to read it from a file.")

	graphqlCmdFlags.StringArray(
		"var",
		nil,
		"query variable in 'name=value' form, can be repeated.")

	_ = graphqlCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(graphqlCmd)
}
