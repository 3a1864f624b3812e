package cli

import (
	"context"
	"os"

	"github.com/ChaseRain/lessonslides/internal/app"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "slides",
	Short:         "Generate, browse and present lesson slide decks",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `slides drives the lesson slide generator from the terminal.

Getting started:
- Fill in the form and watch the deck arrive: slides show
- One-shot generation to JSON: slides generate --topic "Fotossíntese" --grade "6º ano"
- Browse the template registry: slides templates
- Draw one slide to PNG: slides render deck.json --index 0 -o slide.png

Configuration comes from config.yaml (or --config), .env and the
environment, exactly as for the HTTP server.`,
}

// GlobalOptions holds the persistent flags.
type GlobalOptions struct {
	ConfigPath string
}

var GlobalOpts GlobalOptions

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadServices builds the service stack from configuration. quiet replaces
// the configured logger with a no-op one, for front ends that own the
// terminal.
func loadServices(ctx context.Context, quiet bool) (*app.App, error) {
	if GlobalOpts.ConfigPath != "" {
		os.Setenv("CONFIG_PATH", GlobalOpts.ConfigPath)
	}
	cfg, log, err := app.Load()
	if err != nil {
		return nil, err
	}
	if quiet {
		log = logger.NewNop()
	}
	return app.Build(ctx, cfg, log)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&GlobalOpts.ConfigPath, "config", "c", "", "Path to config.yaml (overrides CONFIG_PATH)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(renderCmd)
}
