package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"legendemer/internal/domain"
	"legendemer/internal/i18n"
	"legendemer/internal/middleware"
)

// Progress upgrades to a websocket streaming the states of generation {id}.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	if a.Streamer == nil {
		a.error(w, http.StatusNotFound, i18n.KeyNotFound, i18n.Text(locale, i18n.KeyNotFound))
		return
	}
	a.Streamer.Serve(w, r, chi.URLParam(r, "id"), func(event domain.ProgressEvent) string {
		if event.State == domain.StateFailed && event.Kind != "" {
			return i18n.ErrorText(locale, event.Kind)
		}
		return i18n.StateText(locale, event.State)
	})
}
