package handlers

import (
	"net/http"
	"strings"

	"legendemer/internal/domain"
	"legendemer/internal/i18n"
	"legendemer/internal/middleware"
)

// LocationInfo answers with a short maps-grounded note on a fishing spot.
func (a *App) LocationInfo(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, "location is required")
		return
	}
	_, informer := a.pipeline()
	if informer == nil {
		a.failure(w, locale, domain.ErrMissingCredential)
		return
	}
	a.json(w, http.StatusOK, informer.LocationInfo(r.Context(), location))
}
