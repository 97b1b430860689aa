package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	sdk "google.golang.org/genai"

	"legendemer/internal/domain"
	"legendemer/internal/infra"
)

const (
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultVideoModel  = "veo-3.1-fast-generate-preview"
	DefaultTextModel   = "gemini-2.5-flash"
	DefaultResolution  = "720p"
	DefaultAspectRatio = "9:16"

	defaultRequestsPerMinute = 30
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey            string
	ImageModel        string
	VideoModel        string
	TextModel         string
	RequestsPerMinute int
	HTTPClient        *http.Client
	Logger            *infra.Logger
}

// VideoOutput is the output configuration sent with a video request.
type VideoOutput struct {
	Resolution  string
	AspectRatio string
}

// Tool selects the grounding source of a text query.
type Tool string

const (
	ToolWebSearch  Tool = "web_search"
	ToolMapsSearch Tool = "maps_search"
)

// Source is one citation attached to a grounded answer.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Grounding is the answer of a grounded text query.
type Grounding struct {
	Text    string
	Sources []Source
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*sdk.Content, config *sdk.GenerateContentConfig) (*sdk.GenerateContentResponse, error)
	GenerateVideos(ctx context.Context, model, prompt string, image *sdk.Image, config *sdk.GenerateVideosConfig) (*sdk.GenerateVideosOperation, error)
}

type operationsAPI interface {
	GetVideosOperation(ctx context.Context, op *sdk.GenerateVideosOperation, config *sdk.GetOperationConfig) (*sdk.GenerateVideosOperation, error)
}

// Client is the single gateway to the generative service. Every outbound call
// waits on a shared limiter so a burst of users cannot exhaust the quota.
type Client struct {
	apiKey     string
	imageModel string
	videoModel string
	textModel  string
	models     modelsAPI
	operations operationsAPI
	limiter    *rate.Limiter
	logger     *infra.Logger
}

// NewClient builds a gateway backed by the Gemini API. A missing key is a
// configuration error reported before any call is attempted.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	if opts.APIKey == "" {
		return nil, fmt.Errorf("genai: %w", domain.ErrMissingCredential)
	}
	sdkClient, err := sdk.NewClient(ctx, &sdk.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return newClient(opts, sdkClient.Models, sdkClient.Operations), nil
}

func newClient(opts Options, models modelsAPI, operations operationsAPI) *Client {
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		imageModel: coalesce(opts.ImageModel, DefaultImageModel),
		videoModel: coalesce(opts.VideoModel, DefaultVideoModel),
		textModel:  coalesce(opts.TextModel, DefaultTextModel),
		models:     models,
		operations: operations,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), max(1, rpm/10)),
		logger:     logger,
	}
}

// APIKey returns the credential the client was built with.
func (c *Client) APIKey() string {
	return c.apiKey
}

// GenerateImage sends the portrait and the prompt and returns the first inline
// image part of the answer.
func (c *Client) GenerateImage(ctx context.Context, prompt string, source domain.SourceImage) (*domain.InlineMedia, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	contents := []*sdk.Content{sdk.NewContentFromParts([]*sdk.Part{
		sdk.NewPartFromBytes(source.Data, source.MIMEType),
		sdk.NewPartFromText(prompt),
	}, sdk.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, c.imageModel, contents, &sdk.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("genai: generate image: %w", translate(err))
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			c.logger.Debug().
				Str("model", c.imageModel).
				Int("bytes", len(part.InlineData.Data)).
				Msg("genai: image generated")
			return &domain.InlineMedia{
				Data:     part.InlineData.Data,
				MIMEType: coalesce(part.InlineData.MIMEType, "image/png"),
			}, nil
		}
	}
	return nil, fmt.Errorf("genai: image response carried no inline image: %w", domain.ErrNoMedia)
}

// SubmitVideo starts an image-to-video job and returns its handle.
func (c *Client) SubmitVideo(ctx context.Context, prompt string, source domain.SourceImage, out VideoOutput) (*domain.AsyncOperation, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	op, err := c.models.GenerateVideos(ctx, c.videoModel, prompt,
		&sdk.Image{ImageBytes: source.Data, MIMEType: source.MIMEType},
		&sdk.GenerateVideosConfig{
			NumberOfVideos: 1,
			Resolution:     coalesce(out.Resolution, DefaultResolution),
			AspectRatio:    coalesce(out.AspectRatio, DefaultAspectRatio),
		})
	if err != nil {
		return nil, fmt.Errorf("genai: submit video: %w", translate(err))
	}
	if op == nil || op.Name == "" {
		return nil, errors.New("genai: submit video: operation handle missing")
	}
	c.logger.Info().Str("model", c.videoModel).Str("operation", op.Name).Msg("genai: video operation started")
	return toOperation(op)
}

// PollVideo queries the status of a video job once.
func (c *Client) PollVideo(ctx context.Context, op domain.AsyncOperation) (*domain.AsyncOperation, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.operations.GetVideosOperation(ctx, &sdk.GenerateVideosOperation{Name: op.Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: poll video: %w", translate(err))
	}
	if res == nil {
		return nil, errors.New("genai: poll video: empty operation")
	}
	if res.Name == "" {
		res.Name = op.Name
	}
	return toOperation(res)
}

// Ground runs a text query grounded on web or maps search.
func (c *Client) Ground(ctx context.Context, query string, tool Tool) (*Grounding, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	var t *sdk.Tool
	switch tool {
	case ToolWebSearch:
		t = &sdk.Tool{GoogleSearch: &sdk.GoogleSearch{}}
	case ToolMapsSearch:
		t = &sdk.Tool{GoogleMaps: &sdk.GoogleMaps{}}
	default:
		return nil, fmt.Errorf("genai: unknown grounding tool %q", tool)
	}
	resp, err := c.models.GenerateContent(ctx, c.textModel, sdk.Text(query), &sdk.GenerateContentConfig{
		Tools: []*sdk.Tool{t},
	})
	if err != nil {
		return nil, fmt.Errorf("genai: ground (%s): %w", tool, translate(err))
	}
	out := &Grounding{Text: strings.TrimSpace(resp.Text())}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			switch {
			case chunk == nil:
			case chunk.Maps != nil && chunk.Maps.URI != "":
				out.Sources = append(out.Sources, Source{URI: chunk.Maps.URI, Title: chunk.Maps.Title})
			case chunk.Web != nil && chunk.Web.URI != "":
				out.Sources = append(out.Sources, Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
			}
		}
	}
	if out.Text == "" {
		return nil, fmt.Errorf("genai: ground (%s): empty answer: %w", tool, domain.ErrNoMedia)
	}
	return out, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("genai: rate limit wait: %w", err)
	}
	return nil
}

func toOperation(op *sdk.GenerateVideosOperation) (*domain.AsyncOperation, error) {
	if len(op.Error) > 0 {
		return nil, translate(fmt.Errorf("genai: video operation %s failed: %v", op.Name, op.Error["message"]))
	}
	out := &domain.AsyncOperation{Name: op.Name, Done: op.Done}
	if op.Done && op.Response != nil {
		for _, v := range op.Response.GeneratedVideos {
			if v != nil && v.Video != nil && v.Video.URI != "" {
				out.ResultReference = v.Video.URI
				break
			}
		}
	}
	return out, nil
}

// translate marks credential failures so callers can classify them without
// knowing the SDK error type.
func translate(err error) error {
	var apiErr sdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrCredentialRejected, err)
		}
	}
	return err
}

func coalesce(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
