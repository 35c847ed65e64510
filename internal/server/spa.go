package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// spaFileServer serves the built web app from assets. Unknown paths get
// index.html so client-side routes such as /seances/42 load the app; /api/
// paths and non-read methods stay 404.
func spaFileServer(assets fs.FS) http.Handler {
	files := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasPrefix(name, "api/") {
			http.NotFound(w, r)
			return
		}

		info, err := fs.Stat(assets, name)
		switch {
		case name == "" || err != nil || info.IsDir():
			w.Header().Set("Cache-Control", "no-cache")
			r.URL.Path = "/"
		case strings.HasPrefix(name, "assets/") || strings.HasPrefix(name, "_app/immutable/"):
			// Bundler output is content-hashed.
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}

		files.ServeHTTP(w, r)
	})
}
