package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"legendemer/internal/domain"
	"legendemer/internal/i18n"
	"legendemer/internal/media"
	"legendemer/internal/middleware"
)

// A 10 MB portrait is about 13.4 MB once base64 encoded.
const maxGenerationBody = 16 << 20

type generationRequest struct {
	Image     string              `json:"image"`
	Details   domain.CatchDetails `json:"details"`
	MediaKind string              `json:"media_kind"`
}

type generationResponse struct {
	ID             string           `json:"id"`
	RequestID      string           `json:"request_id"`
	MediaKind      domain.MediaKind `json:"media_kind"`
	MediaReference string           `json:"media_reference"`
	DownloadURL    string           `json:"download_url"`
	Filename       string           `json:"filename"`
}

// Generate runs a generation synchronously. The X-Request-ID only names the
// progress feed; the result id, which keys the download, comes from the server.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale := middleware.LocaleFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxGenerationBody)

	var req generationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, i18n.Text(locale, i18n.KeyInvalidRequest))
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		a.error(w, http.StatusBadRequest, i18n.KeyMissingPhoto, i18n.Text(locale, i18n.KeyMissingPhoto))
		return
	}
	source, err := media.ParseDataURI(req.Image)
	if err == nil {
		err = media.ValidateSourceImage(&source)
	}
	if err != nil {
		a.Logger.Debug().Err(err).Msg("rejected source image")
		a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, i18n.Text(locale, i18n.KeyInvalidRequest))
		return
	}

	gen, _ := a.pipeline()
	if gen == nil {
		a.failure(w, locale, domain.ErrMissingCredential)
		return
	}

	client := middleware.ClientIP(r)
	if !a.acquire(client) {
		a.error(w, http.StatusConflict, i18n.KeyBusy, i18n.Text(locale, i18n.KeyBusy))
		return
	}
	defer a.release(client)

	requestID := middleware.RequestIDFromContext(ctx)
	result, err := gen.Generate(ctx, domain.GenerationRequest{
		ID:          requestID,
		MediaKind:   domain.MediaKind(req.MediaKind),
		Details:     req.Details,
		SourceImage: source,
	})
	if err != nil {
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) && errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, err.Error())
			return
		}
		a.failure(w, locale, err)
		return
	}

	if result.ID == "" || result.ID == requestID {
		result.ID = uuid.NewString()
	}
	createdAt := a.now()
	a.remember(*result, createdAt)
	a.keep(ctx, *result, createdAt)

	a.json(w, http.StatusOK, generationResponse{
		ID:             result.ID,
		RequestID:      requestID,
		MediaKind:      result.MediaKind,
		MediaReference: result.MediaReference,
		DownloadURL:    fmt.Sprintf("/v1/generations/%s/download", result.ID),
		Filename:       domain.DownloadFilename(result.MediaKind, createdAt),
	})
}

// Download serves a recent result as an attachment.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	id := chi.URLParam(r, "id")
	stored, ok := a.lookup(id)
	if !ok {
		a.error(w, http.StatusNotFound, i18n.KeyNotFound, i18n.Text(locale, i18n.KeyNotFound))
		return
	}
	artifact, err := a.Fetcher.Fetch(r.Context(), stored.Result.MediaReference)
	if err != nil {
		a.Logger.Error().Err(err).Str("generation_id", id).Msg("download failed")
		// the fetch error may quote the signed reference
		a.failure(w, locale, &domain.GenerationError{Kind: domain.ErrorKindTransport})
		return
	}
	filename := domain.DownloadFilename(stored.Result.MediaKind, stored.CreatedAt)
	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// Share is not available yet; the client shows the message as is.
func (a *App) Share(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	if _, ok := a.lookup(chi.URLParam(r, "id")); !ok {
		a.error(w, http.StatusNotFound, i18n.KeyNotFound, i18n.Text(locale, i18n.KeyNotFound))
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"available": false,
		"message":   i18n.Text(locale, i18n.KeyShareSoon),
	})
}

// keep writes the artefact to the output directory when one is configured.
// A failure is logged and does not affect the response.
func (a *App) keep(ctx context.Context, result domain.GenerationResult, at time.Time) {
	if a.Store == nil {
		return
	}
	artifact, err := a.Fetcher.Fetch(ctx, result.MediaReference)
	if err == nil {
		var path string
		path, err = a.Store.SaveArtifact(ctx, result.MediaKind, at, artifact.Data)
		if err == nil {
			a.Logger.Info().Str("generation_id", result.ID).Str("path", path).Msg("artifact saved")
			return
		}
	}
	a.Logger.Warn().Err(err).Str("generation_id", result.ID).Msg("could not save artifact")
}

func (a *App) failure(w http.ResponseWriter, locale string, err error) {
	kind := domain.Classify(err)
	a.json(w, statusForKind(kind), errorResponse{
		Error:              string(kind),
		Message:            i18n.FailureText(locale, err),
		ReselectCredential: kind.Reselect(),
	})
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrorKindConfiguration:
		return http.StatusServiceUnavailable
	case domain.ErrorKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
