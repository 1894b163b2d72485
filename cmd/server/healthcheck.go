package main

import (
	"encoding/json"
	"net/http"
	"time"
)

func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(app.StartTime).String(),
		"sessions": app.Registry.Count(),
	})
}
