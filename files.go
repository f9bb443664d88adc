package staticsvr

import (
	"net/http"
	"path"
	"strings"

	"github.com/mywrap/log"
)

const allowedMethods = "GET, HEAD, OPTIONS"

// conditional request headers are dropped so a client never gets a 304 or 412,
// every GET is a full transfer
var conditionalHeaders = []string{
	"If-Modified-Since",
	"If-None-Match",
	"If-Match",
	"If-Unmodified-Since",
}

// fileHandler maps URL paths to files under root.
// Regular files are streamed directly, everything else (directories,
// listings, missing paths, permission errors) is left to http_FileServer.
type fileHandler struct {
	root        http.Dir
	files       http.Handler
	isEnableLog bool
}

func newFileHandler(root string, isLog bool) *fileHandler {
	return &fileHandler{
		root:        http.Dir(root),
		files:       http.FileServer(http.Dir(root)),
		isEnableLog: isLog,
	}
}

func (h *fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodOptions:
		w.Header().Set("Allow", allowedMethods)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", allowedMethods)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
		return
	}
	for _, k := range conditionalHeaders {
		r.Header.Del(k)
	}

	// http_FileServer redirects ".../index.html" to ".../",
	// a page asking for index.html must get the file itself
	if !strings.HasSuffix(r.URL.Path, "/") && h.serveRegularFile(w, r) {
		return
	}
	h.files.ServeHTTP(w, r)
}

// serveRegularFile returns false without writing anything if the path is not
// an openable regular file
func (h *fileHandler) serveRegularFile(w http.ResponseWriter, r *http.Request) bool {
	name := path.Clean("/" + r.URL.Path)
	f, err := h.root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		log.Condf(h.isEnableLog, "error Stat %v %v: %v",
			GetRequestId(r), name, err)
		return false
	}
	if info.IsDir() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
