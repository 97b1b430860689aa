package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"legendemer/internal/domain"
	"legendemer/internal/infra"
	"legendemer/internal/orchestrator"
	"legendemer/internal/pipeline"
)

type options struct {
	APIKey string
	Lang   string

	Photo    string
	Species  string
	Weight   string
	Location string
	Story    string
	Kind     string
	OutDir   string
}

var opts options

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "legende",
		Short:         "Turn a portrait and a fishing story into a legendary catch photo or video",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.APIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	root.PersistentFlags().StringVar(&opts.Lang, "lang", "fr", "language of progress messages (fr or en)")

	addCatchFlags := func(cmd *cobra.Command) {
		defaults := domain.DefaultCatchDetails()
		cmd.Flags().StringVar(&opts.Species, "species", defaults.Species, "species of the catch")
		cmd.Flags().StringVar(&opts.Weight, "weight", defaults.Weight, `weight, e.g. "100 kg"`)
		cmd.Flags().StringVar(&opts.Location, "location", defaults.Location, "fishing spot")
		cmd.Flags().StringVar(&opts.Story, "story", defaults.Story, "short anecdote")
		cmd.Flags().StringVarP(&opts.Kind, "kind", "k", string(domain.MediaKindImage), "image or video")
	}

	generate := newGenerateCmd()
	addCatchFlags(generate)
	compose := newComposeCmd()
	addCatchFlags(compose)

	root.AddCommand(generate, compose, newLocationCmd())
	return root
}

// loadConfig reads .env and the environment. --api-key wins over GEMINI_API_KEY.
func loadConfig() (*infra.Config, error) {
	_ = godotenv.Load()
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		if err := os.Setenv("GEMINI_API_KEY", key); err != nil {
			return nil, err
		}
	}
	return infra.LoadConfig()
}

func buildPipeline(ctx context.Context, observer orchestrator.Observer) (*pipeline.Pipeline, *infra.Config, *infra.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := infra.NewLoggerTo(os.Stderr, cfg.AppEnv).With().Str("cmd", "legende").Logger()
	p, err := pipeline.Build(ctx, cfg, cfg.GeminiAPIKey, pipeline.Options{Observer: observer, Logger: &logger})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p, cfg, &logger, nil
}

func catchDetails() domain.CatchDetails {
	return domain.CatchDetails{
		Species:  opts.Species,
		Weight:   opts.Weight,
		Location: opts.Location,
		Story:    opts.Story,
	}
}
