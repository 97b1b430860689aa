package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"legendemer/internal/composer"
	"legendemer/internal/infra"
	"legendemer/internal/providers/genai"
)

const (
	defaultCacheExpiration = 6 * time.Hour
	cacheCleanupInterval   = time.Hour

	// LocationUnavailable is shown when the location lookup fails.
	LocationUnavailable = "Information non disponible."
)

// Grounder is the part of the gateway used for grounded text queries.
type Grounder interface {
	Ground(ctx context.Context, query string, tool genai.Tool) (*genai.Grounding, error)
}

// LocationInfo is a short note about fishing at a location with an optional
// map citation.
type LocationInfo struct {
	Text        string `json:"text"`
	MapLink     string `json:"map_link,omitempty"`
	SourceTitle string `json:"source_title,omitempty"`
}

type Options struct {
	CacheExpiration time.Duration
	Logger          *infra.Logger
}

// Enricher fetches grounded descriptions. Answers are cached per key and
// concurrent identical lookups share one upstream call. Failures are never cached.
type Enricher struct {
	grounder Grounder
	cache    *cache.Cache
	group    singleflight.Group
	logger   *infra.Logger
}

func New(grounder Grounder, opts Options) *Enricher {
	expiration := opts.CacheExpiration
	if expiration <= 0 {
		expiration = defaultCacheExpiration
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Enricher{
		grounder: grounder,
		cache:    cache.New(expiration, cacheCleanupInterval),
		logger:   logger,
	}
}

// DescribeSpecies returns a web-grounded visual description of the species as
// found at the location.
func (e *Enricher) DescribeSpecies(ctx context.Context, species, location string) (string, error) {
	if strings.TrimSpace(species) == "" {
		return "", errors.New("enrich: species is required")
	}
	key := "species:" + cacheKey(species, location)
	g, err := e.lookup(ctx, key, composer.EnrichmentQuery(species, location), genai.ToolWebSearch)
	if err != nil {
		return "", err
	}
	return g.Text, nil
}

// LocationInfo answers with a maps-grounded note. It degrades to
// LocationUnavailable instead of failing.
func (e *Enricher) LocationInfo(ctx context.Context, location string) LocationInfo {
	if strings.TrimSpace(location) == "" {
		return LocationInfo{Text: LocationUnavailable}
	}
	g, err := e.lookup(ctx, "location:"+cacheKey(location), composer.LocationQuery(location), genai.ToolMapsSearch)
	if err != nil {
		e.logger.Warn().Err(err).Str("location", location).Msg("enrich: location info unavailable")
		return LocationInfo{Text: LocationUnavailable}
	}
	info := LocationInfo{Text: g.Text}
	if len(g.Sources) > 0 {
		info.MapLink = g.Sources[0].URI
		info.SourceTitle = g.Sources[0].Title
	}
	return info
}

func (e *Enricher) lookup(ctx context.Context, key, query string, tool genai.Tool) (*genai.Grounding, error) {
	if cached, ok := e.cache.Get(key); ok {
		if g, ok := cached.(*genai.Grounding); ok {
			return g, nil
		}
	}

	val, err, shared := e.group.Do(key, func() (interface{}, error) {
		if cached, ok := e.cache.Get(key); ok {
			return cached, nil
		}
		g, err := e.grounder.Ground(ctx, query, tool)
		if err != nil {
			return nil, err
		}
		e.cache.SetDefault(key, g)
		return g, nil
	})
	if err != nil {
		return nil, fmt.Errorf("enrich: %s: %w", tool, err)
	}
	g, ok := val.(*genai.Grounding)
	if !ok {
		return nil, fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	e.logger.Debug().Str("key", key).Bool("shared", shared).Msg("enrich: grounded")
	return g, nil
}

func cacheKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}
