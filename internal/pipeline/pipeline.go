// Package pipeline assembles the gateway, the enricher and the orchestrator
// for one API key. The server rebuilds it whenever the key is reselected.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"legendemer/internal/domain"
	"legendemer/internal/infra"
	"legendemer/internal/orchestrator"
	"legendemer/internal/providers/enrich"
	"legendemer/internal/providers/genai"
)

type Pipeline struct {
	Client       *genai.Client
	Enricher     *enrich.Enricher
	Orchestrator *orchestrator.Orchestrator
}

// Options carries the collaborators that outlive a single key.
type Options struct {
	Observer   orchestrator.Observer
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Build wires a pipeline for apiKey. A blank key fails with
// domain.ErrMissingCredential before any upstream call.
func Build(ctx context.Context, cfg *infra.Config, apiKey string, opts Options) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: config is required: %w", domain.ErrMissingCredential)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("pipeline: %w", domain.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, genai.Options{
		APIKey:            apiKey,
		ImageModel:        cfg.ImageModel,
		VideoModel:        cfg.VideoModel,
		TextModel:         cfg.TextModel,
		RequestsPerMinute: cfg.UpstreamPerMin,
		HTTPClient:        opts.HTTPClient,
		Logger:            opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: gateway: %w", err)
	}

	enricher := enrich.New(client, enrich.Options{
		CacheExpiration: cfg.EnrichCacheTTL,
		Logger:          opts.Logger,
	})

	orch, err := orchestrator.New(orchestrator.Config{
		Images:      client,
		Videos:      client,
		Enricher:    enricher,
		Observer:    opts.Observer,
		APIKey:      apiKey,
		VideoOutput: VideoOutput(cfg),
		Poll:        PollPolicy(cfg),
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: orchestrator: %w", err)
	}

	return &Pipeline{Client: client, Enricher: enricher, Orchestrator: orch}, nil
}

// PollPolicy maps the VIDEO_POLL_* settings. Zero values fall back to the
// orchestrator defaults.
func PollPolicy(cfg *infra.Config) orchestrator.PollPolicy {
	return orchestrator.PollPolicy{
		InitialInterval: cfg.PollInitial,
		Multiplier:      cfg.PollMultiplier,
		MaxInterval:     cfg.PollMaxInterval,
		MaxAttempts:     cfg.PollMaxAttempts,
		Timeout:         cfg.PollTimeout,
	}
}

func VideoOutput(cfg *infra.Config) genai.VideoOutput {
	return genai.VideoOutput{
		Resolution:  cfg.VideoResolution,
		AspectRatio: cfg.VideoAspectRatio,
	}
}
