package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"legendemer/internal/composer"
	"legendemer/internal/domain"
	"legendemer/internal/i18n"
	"legendemer/internal/middleware"
)

type catalogResponse struct {
	Defaults   domain.CatchDetails `json:"defaults"`
	Species    []string            `json:"species"`
	Locations  []string            `json:"locations"`
	MediaKinds []domain.MediaKind  `json:"media_kinds"`
}

// Catalog returns what the catch form is pre-filled with.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, catalogResponse{
		Defaults:   domain.DefaultCatchDetails(),
		Species:    domain.Species,
		Locations:  domain.Locations,
		MediaKinds: []domain.MediaKind{domain.MediaKindImage, domain.MediaKindVideo},
	})
}

type composeRequest struct {
	Details       domain.CatchDetails `json:"details"`
	MediaKind     string              `json:"media_kind"`
	SpeciesVisual string              `json:"species_visual"`
}

type composeResponse struct {
	composer.Composition
	MediaKind domain.MediaKind `json:"media_kind"`
}

// Compose previews the prompt without calling the generative service.
func (a *App) Compose(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, i18n.Text(locale, i18n.KeyInvalidRequest))
		return
	}
	kind, err := domain.ParseMediaKind(req.MediaKind)
	if err == nil {
		err = req.Details.Validate()
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, err.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	a.json(w, http.StatusOK, composeResponse{
		Composition: composer.Compose(kind, req.Details, req.SpeciesVisual),
		MediaKind:   kind,
	})
}
