package staticsvr

import (
	"net/http"
	"testing"
)

func TestAddHeaders(t *testing.T) {
	for _, handler := range []http.HandlerFunc{
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("body")) },
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		},
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderCacheControl, "max-age=3600")
			w.Header().Add(HeaderAllowOrigin, "http://example.com")
			w.Write([]byte("cached"))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderCacheControl, "max-age=3600")
			w.Header().Del(HeaderCacheControl) // like http_ServeContent on error
			http.NotFound(w, r)
		},
	} {
		res := serve(AddHeaders(handler), "GET", "/", nil)
		checkHeaders(t, res)
	}
}

func TestAddHeaders_Unwrap(t *testing.T) {
	h := AddHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(interface{ Unwrap() http.ResponseWriter }); !ok {
			t.Errorf("ResponseWriter cannot be unwrapped")
		}
	}))
	serve(h, "GET", "/", nil)
}
