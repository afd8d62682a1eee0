package main

import (
	"encoding/json"
	"net/http"
)

type healthStatus struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// healthy reports that the server is up along with the configured AI provider. The provider is never called.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	status := healthStatus{Status: "ok", Provider: string(app.cfg.AI().Provider)}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		app.serverError(w, r, err)
	}
}
