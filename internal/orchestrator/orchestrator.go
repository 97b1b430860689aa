package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"legendemer/internal/composer"
	"legendemer/internal/domain"
	"legendemer/internal/infra"
	"legendemer/internal/media"
	"legendemer/internal/providers/genai"
)

// ImageGenerator produces a still picture from the portrait and the prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, source domain.SourceImage) (*domain.InlineMedia, error)
}

// VideoGenerator starts a video job and reports its status.
type VideoGenerator interface {
	SubmitVideo(ctx context.Context, prompt string, source domain.SourceImage, out genai.VideoOutput) (*domain.AsyncOperation, error)
	PollVideo(ctx context.Context, op domain.AsyncOperation) (*domain.AsyncOperation, error)
}

// Enricher supplies an optional visual description of the species.
type Enricher interface {
	DescribeSpecies(ctx context.Context, species, location string) (string, error)
}

// Observer receives every state transition.
type Observer interface {
	Observe(event domain.ProgressEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(domain.ProgressEvent)

func (f ObserverFunc) Observe(event domain.ProgressEvent) { f(event) }

// CredentialReselector lets the user pick another API key after an
// upstream-auth failure. The orchestrator never calls it itself.
type CredentialReselector interface {
	SetGeminiAPIKey(ctx context.Context, apiKey string) error
}

// Config carries everything a generation needs. There is no package state.
type Config struct {
	Images      ImageGenerator
	Videos      VideoGenerator
	Enricher    Enricher
	Observer    Observer
	APIKey      string
	VideoOutput genai.VideoOutput
	Poll        PollPolicy
	Logger      *infra.Logger
}

// Orchestrator runs one generation request end to end.
type Orchestrator struct {
	images   ImageGenerator
	videos   VideoGenerator
	enricher Enricher
	observer Observer
	apiKey   string
	output   genai.VideoOutput
	poll     PollPolicy
	logger   *infra.Logger
	now      func() time.Time
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Images == nil || cfg.Videos == nil {
		return nil, fmt.Errorf("orchestrator: image and video generators are required: %w", domain.ErrMissingCredential)
	}
	logger := cfg.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Orchestrator{
		images:   cfg.Images,
		videos:   cfg.Videos,
		enricher: cfg.Enricher,
		observer: cfg.Observer,
		apiKey:   cfg.APIKey,
		output:   cfg.VideoOutput,
		poll:     cfg.Poll.withDefaults(),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Generate runs Idle -> Enriching -> Generating -> (Polling)* -> Done|Failed.
// Invalid requests are rejected before the first transition with an error
// wrapping domain.ErrInvalidRequest. Every other failure is a
// *domain.GenerationError. req.ID only keys the progress events; the result
// always gets a fresh id.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := o.prepare(&req); err != nil {
		return nil, err
	}

	r := &run{o: o, req: req}
	r.logger = o.logger.With().
		Str("request_id", req.ID).
		Str("media_kind", string(req.MediaKind)).
		Logger()

	started := o.now()
	result, err := r.execute(ctx)
	if err != nil {
		genErr := domain.NewGenerationError(err)
		r.emit(domain.StateFailed, domain.Classify(genErr), 0)
		r.logger.Error().
			Err(err).
			Str("error_kind", string(domain.Classify(genErr))).
			Dur("elapsed", o.now().Sub(started)).
			Msg("generation failed")
		return nil, genErr
	}
	r.emit(domain.StateDone, "", 0)
	r.logger.Info().Dur("elapsed", o.now().Sub(started)).Msg("generation completed")
	return result, nil
}

func (o *Orchestrator) prepare(req *domain.GenerationRequest) error {
	kind, err := domain.ParseMediaKind(string(req.MediaKind))
	if err != nil {
		return err
	}
	req.MediaKind = kind
	if err := req.Details.Validate(); err != nil {
		return err
	}
	if len(req.SourceImage.Data) == 0 {
		return fmt.Errorf("%w: source image is required", domain.ErrInvalidRequest)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return nil
}

type run struct {
	o      *Orchestrator
	req    domain.GenerationRequest
	logger zerolog.Logger
}

func (r *run) execute(ctx context.Context) (*domain.GenerationResult, error) {
	r.emit(domain.StateEnriching, "", 0)
	description := r.enrich(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	composition := composer.Compose(r.req.MediaKind, r.req.Details, description)
	r.logger.Debug().
		Int("size_band", composer.SizeBand(r.req.Details.Weight)).
		Int("pose_band", composer.PoseBand(r.req.Details.Weight)).
		Bool("enriched", description != "").
		Msg("prompt composed")

	r.emit(domain.StateGenerating, "", 0)
	var (
		reference string
		err       error
	)
	switch r.req.MediaKind {
	case domain.MediaKindVideo:
		reference, err = r.video(ctx, composition.Prompt)
	default:
		reference, err = r.image(ctx, composition.Prompt)
	}
	if err != nil {
		return nil, err
	}
	return &domain.GenerationResult{
		ID:             uuid.NewString(),
		MediaKind:      r.req.MediaKind,
		MediaReference: reference,
		Prompt:         composition.Prompt,
	}, nil
}

// enrich is best effort: any failure leaves the description empty.
func (r *run) enrich(ctx context.Context) string {
	if r.o.enricher == nil {
		return ""
	}
	description, err := r.o.enricher.DescribeSpecies(ctx, r.req.Details.Species, r.req.Details.Location)
	if err != nil {
		r.logger.Warn().Err(err).Msg("species enrichment failed; continuing without description")
		return ""
	}
	return description
}

func (r *run) image(ctx context.Context, prompt string) (string, error) {
	img, err := r.o.images.GenerateImage(ctx, prompt, r.req.SourceImage)
	if err != nil {
		return "", err
	}
	if img == nil || len(img.Data) == 0 {
		return "", domain.ErrNoMedia
	}
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return media.EncodeDataURI(mimeType, img.Data), nil
}

func (r *run) video(ctx context.Context, prompt string) (string, error) {
	op, err := r.o.videos.SubmitVideo(ctx, prompt, r.req.SourceImage, r.o.output)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", errors.New("video submission returned no operation")
	}
	done := op
	if !op.Done {
		done, err = r.o.poll.await(ctx, *op, r.o.videos.PollVideo, func(attempt int) {
			r.emit(domain.StatePolling, "", attempt)
			r.logger.Debug().Str("operation", op.Name).Int("attempt", attempt).Msg("polling video operation")
		})
		if err != nil {
			return "", err
		}
	}
	if done.ResultReference == "" {
		return "", fmt.Errorf("video operation %s finished without a video: %w", done.Name, domain.ErrNoMedia)
	}
	return media.SignVideoURI(done.ResultReference, r.o.apiKey)
}

func (r *run) emit(state domain.State, kind domain.ErrorKind, attempt int) {
	if r.o.observer == nil {
		return
	}
	r.o.observer.Observe(domain.ProgressEvent{
		RequestID: r.req.ID,
		MediaKind: r.req.MediaKind,
		State:     state,
		Kind:      kind,
		Attempt:   attempt,
		At:        r.o.now(),
	})
}
