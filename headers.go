package staticsvr

import "net/http"

const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderCacheControl = "Cache-Control"

	AllowAnyOrigin = "*"
	NoCache        = "no-store, no-cache, must-revalidate"
)

// AddHeaders returns a handler that allows cross-origin reads from any origin
// and disables caching on every response h writes, whatever its status.
// The headers are set right before the status line is written, so handlers
// that reset headers on error (like http_ServeContent) cannot drop them.
func AddHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hw := &headerWriter{ResponseWriter: w}
		h.ServeHTTP(hw, r)
		if !hw.wroteHeader { // handler wrote nothing, net/http would send 200
			hw.WriteHeader(http.StatusOK)
		}
	})
}

// headerWriter finalizes the header block once, on the first WriteHeader or Write
type headerWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.Header().Set(HeaderAllowOrigin, AllowAnyOrigin)
		w.Header().Set(HeaderCacheControl, NoCache)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http_ResponseController reach the connection
func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
