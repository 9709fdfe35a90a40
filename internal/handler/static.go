package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const indexFile = "index.html"

// Static отдаёт файлы фронтенда. Неизвестные пути получают index.html, чтобы работала клиентская маршрутизация.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)

	if h.serveFile(w, r, filepath.Join(h.staticDir, filepath.FromSlash(clean))) {
		return
	}
	if h.serveFile(w, r, filepath.Join(h.staticDir, indexFile)) {
		return
	}

	h.writeError(w, http.StatusNotFound, codeNotFound, http.StatusText(http.StatusNotFound))
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
