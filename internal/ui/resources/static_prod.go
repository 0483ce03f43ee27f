//go:build !dev

package resources

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"
)

//go:embed static/*
var staticFS embed.FS

// started stamps Last-Modified on minified assets; embedded files carry no
// modification time of their own.
var started = time.Now()

// Handler serves the embedded static files with long-lived caching.
// Stylesheets and scripts are minified once, on first request.
func Handler() http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	files := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))

	var mu sync.Mutex
	minified := make(map[string][]byte)
	load := func(name string) ([]byte, bool) {
		mu.Lock()
		defer mu.Unlock()
		if b, ok := minified[name]; ok {
			return b, b != nil
		}
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			minified[name] = nil
			return nil, false
		}
		out, err := Minify(name, src)
		if err != nil {
			out = src
		}
		minified[name] = out
		return out, true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		name := strings.TrimPrefix(r.URL.Path, "/static/")
		if strings.HasSuffix(name, ".css") || strings.HasSuffix(name, ".js") {
			if b, ok := load(name); ok {
				http.ServeContent(w, r, name, started, bytes.NewReader(b))
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
