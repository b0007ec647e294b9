// Package site serves the embedded label scanning page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded page and its assets to mux.
//
//	GET /          -> index.html
//	GET /static/*  -> page assets
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
	mux.Handle("GET /static/", http.StripPrefix("/static", files))
}
