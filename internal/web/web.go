// Package web serves the embedded static pages for the gallery UI.
package web

import (
	"embed"
	"net/http"
)

//go:embed pages
var pagesFS embed.FS

// Page returns a handler serving one embedded HTML page.
func Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := pagesFS.ReadFile("pages/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}
