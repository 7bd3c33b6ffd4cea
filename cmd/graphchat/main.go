package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"graphchat/pkg/logger"
)

var version = "dev"

var (
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "graphchat",
	Short: "Retrieval-augmented chat over a knowledge graph",
	Long: `graphchat ingests documents into a knowledge graph and answers
questions about them, either from the command line or over HTTP.

Typical flow:
  graphchat init --sample-data
  graphchat add ./docs
  graphchat chat`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zapcore.InfoLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		if quiet {
			level = zapcore.WarnLevel
		}
		env := os.Getenv("ENV")
		if env == "" {
			env = "development"
		}
		return logger.InitAt(env, level)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addDocCmd)
	rootCmd.AddCommand(addJSONCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
