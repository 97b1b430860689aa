package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	gen, _ := a.pipeline()
	status := "ok"
	if gen == nil {
		status = "degraded"
	}
	a.json(w, http.StatusOK, map[string]string{"status": status})
}
