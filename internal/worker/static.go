package worker

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// serveDashboard serves the embedded stats dashboard. Like the hosted
// original, every path that is not an API or webhook route gets it.
func serveDashboard(w http.ResponseWriter, r *http.Request) {
	content, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(content)
}
