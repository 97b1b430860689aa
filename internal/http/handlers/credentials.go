package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"legendemer/internal/domain"
	"legendemer/internal/i18n"
	"legendemer/internal/middleware"
)

type credentialsRequest struct {
	APIKey string `json:"api_key"`
}

// Credentials replaces the active API key. It is the server side of
// "reselect your project" after an upstream_auth failure.
func (a *App) Credentials(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	if a.CredentialStore == nil {
		a.error(w, http.StatusNotFound, i18n.KeyNotFound, i18n.Text(locale, i18n.KeyNotFound))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 8<<10)

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, i18n.Text(locale, i18n.KeyInvalidRequest))
		return
	}
	if err := a.CredentialStore.SetGeminiAPIKey(r.Context(), req.APIKey); err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, i18n.KeyInvalidRequest, i18n.Text(locale, i18n.KeyInvalidRequest))
			return
		}
		a.Logger.Error().Err(err).Msg("credential change rejected")
		a.failure(w, locale, &domain.GenerationError{Kind: domain.ErrorKindConfiguration, Err: err})
		return
	}
	a.Logger.Info().Msg("gemini api key replaced")
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": i18n.Text(locale, i18n.KeyCredentialSaved),
	})
}
