package core

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticHandler serves the unpacked web-app bundle. Missing files are 404s;
// directory listings are never shown.
func staticHandler(root string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(root))
	return func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		if p != "/" {
			fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(p)))
			if err != nil || fi.IsDir() {
				http.NotFound(w, r)
				return
			}
		}
		fs.ServeHTTP(w, r)
	}
}
