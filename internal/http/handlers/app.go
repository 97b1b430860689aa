package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"legendemer/internal/domain"
	"legendemer/internal/infra"
	"legendemer/internal/media"
	"legendemer/internal/orchestrator"
	"legendemer/internal/progress"
	"legendemer/internal/providers/enrich"
)

const defaultResultTTL = 30 * time.Minute

// Generator runs one generation request.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// LocationInformer answers the location info lookup.
type LocationInformer interface {
	LocationInfo(ctx context.Context, location string) enrich.LocationInfo
}

type ArtifactFetcher interface {
	Fetch(ctx context.Context, ref string) (*media.Artifact, error)
}

// ArtifactSaver keeps a copy of each result on disk.
type ArtifactSaver interface {
	SaveArtifact(ctx context.Context, kind domain.MediaKind, at time.Time, data []byte) (string, error)
}

// Options configures NewApp. Streamer, Credentials and Store are optional.
type Options struct {
	Logger      *infra.Logger
	Streamer    *progress.Streamer
	Fetcher     ArtifactFetcher
	Credentials orchestrator.CredentialReselector
	Store       ArtifactSaver
	ResultTTL   time.Duration
}

type App struct {
	Logger          *infra.Logger
	Streamer        *progress.Streamer
	Fetcher         ArtifactFetcher
	CredentialStore orchestrator.CredentialReselector
	Store           ArtifactSaver

	results *cache.Cache

	mu        sync.RWMutex
	generator Generator
	locations LocationInformer

	inflightMu sync.Mutex
	inflight   map[string]struct{}

	now func() time.Time
}

// storedResult is what the download endpoint serves back.
type storedResult struct {
	Result    domain.GenerationResult
	CreatedAt time.Time
}

func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	ttl := opts.ResultTTL
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = media.NewFetcher(nil)
	}
	return &App{
		Logger:          logger,
		Streamer:        opts.Streamer,
		Fetcher:         fetcher,
		CredentialStore: opts.Credentials,
		Store:           opts.Store,
		results:         cache.New(ttl, ttl),
		inflight:        make(map[string]struct{}),
		now:             time.Now,
	}
}

// SetPipeline swaps the generator and the location informer. It is called at
// startup and after every credential change.
func (a *App) SetPipeline(gen Generator, locations LocationInformer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generator = gen
	a.locations = locations
}

func (a *App) pipeline() (Generator, LocationInformer) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.generator, a.locations
}

// acquire reserves the single generation slot of a client.
func (a *App) acquire(client string) bool {
	a.inflightMu.Lock()
	defer a.inflightMu.Unlock()
	if _, busy := a.inflight[client]; busy {
		return false
	}
	a.inflight[client] = struct{}{}
	return true
}

func (a *App) release(client string) {
	a.inflightMu.Lock()
	defer a.inflightMu.Unlock()
	delete(a.inflight, client)
}

func (a *App) remember(result domain.GenerationResult, at time.Time) {
	a.results.SetDefault(result.ID, storedResult{Result: result, CreatedAt: at})
}

func (a *App) lookup(id string) (storedResult, bool) {
	v, ok := a.results.Get(id)
	if !ok {
		return storedResult{}, false
	}
	stored, ok := v.(storedResult)
	return stored, ok
}

type errorResponse struct {
	Error              string `json:"error"`
	Message            string `json:"message"`
	ReselectCredential bool   `json:"reselect_credential,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errCode, Message: message})
}
