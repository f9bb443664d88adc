// Package staticsvr serves a local directory over plain HTTP for browser based
// tools: every response allows any origin and forbids caching, so a page can
// fetch local files from another origin and always gets the current content.
// Requests are logged with an auto-generated requestId in the request_Context,
// and the number of requests and their durations are monitored per path.
package staticsvr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/mywrap/gofast"
	"github.com/mywrap/log"
	"github.com/mywrap/metric"
)

// DefaultPort is the port the ROS Bag Map Generator page expects
const DefaultPort = 8000

// MetricPath is reserved for the metric dump, a file with this name in the
// document root cannot be served while metric is enabled
const MetricPath = "/__metric"

const shutdownTimeout = 5 * time.Second

var (
	ErrPortInUse = errors.New("port already in use")
	ErrBadRoot   = errors.New("bad document root")
)

// Config defines what and where a Server serves. It is read once by
// NewServerWithConf and never mutated after.
type Config struct {
	Dir      string // document root, made absolute by NewServerWithConf
	Host     string // empty means all interfaces
	Port     int    // 0 lets the kernel choose a port
	IsLog    bool
	IsMetric bool
	// HTTP holds timeouts for the underlying http_Server,
	// its Addr and Handler are overwritten. Nil means NewDefaultConfig
	HTTP *http.Server
}

// NewConfig returns the config of the original script: serve dir on
// port 8000 of all interfaces with log and metric enabled
func NewConfig(dir string) Config {
	return Config{Dir: dir, Port: DefaultPort, IsLog: true, IsMetric: true}
}

// Server must be inited by calling func NewServer or NewServerWithConf
type Server struct {
	config *http.Server
	// should not access this Router directly, files are served by
	// its NotFound handler
	Router             *httprouter.Router
	root               string
	host               string
	port               int
	isEnableLog        bool
	isEnableMetric     bool
	Metric             metric.Metric // nil if metric is disabled
	IsMetricResetDaily bool

	listener net.Listener
	running  atomic.Bool
}

// NewServer inits a Server that serves dir on port 8000 of all interfaces.
func NewServer(dir string) (*Server, error) {
	return NewServerWithConf(NewConfig(dir))
}

// NewServerWithConf is used for choosing host, port or turning off log, metric.
func NewServerWithConf(conf Config) (*Server, error) {
	root, err := resolveRoot(conf.Dir)
	if err != nil {
		return nil, err
	}
	if conf.Port < 0 || conf.Port > 65535 {
		return nil, fmt.Errorf("invalid port %v", conf.Port)
	}
	httpConf := conf.HTTP
	if httpConf == nil {
		httpConf = NewDefaultConfig()
	}
	s := &Server{
		config:             httpConf,
		Router:             httprouter.New(),
		root:               root,
		host:               conf.Host,
		port:               conf.Port,
		isEnableLog:        conf.IsLog,
		isEnableMetric:     conf.IsMetric,
		IsMetricResetDaily: true,
	}
	if s.isEnableMetric {
		s.Metric = metric.NewMemoryMetric()
		if s.IsMetricResetDaily {
			gofast.NewCron(s.Metric.Reset, 24*time.Hour, 0)
		}
		s.AddHandler("GET", MetricPath, s.handleMetric())
	}
	s.AddHandlerNotFound(newFileHandler(root, s.isEnableLog).ServeHTTP)
	s.config.Handler = s.Handler()
	return s, nil
}

func resolveRoot(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: empty path", ErrBadRoot)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w %v: %v", ErrBadRoot, dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w %v: %v", ErrBadRoot, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w %v: not a directory", ErrBadRoot, abs)
	}
	return abs, nil
}

// AddHandler defines a route other than the served files.
func (s *Server) AddHandler(method string, path string, handler http.HandlerFunc) {
	defer func() { // in case of adding a same handler twice
		if r := recover(); r != nil {
			log.Infof("error when AddHandler: %v", r)
		}
	}()
	s.Router.HandlerFunc(method, path, s.augment(method, path, handler))
}

// AddHandlerNotFound sets the handler called when no route matches,
// NewServerWithConf sets it to serve files from the document root
func (s *Server) AddHandlerNotFound(handler http.HandlerFunc) {
	s.Router.NotFound = s.augment("", "", handler)
}

func (s *Server) augment(method string, path string,
	handler http.HandlerFunc) http.HandlerFunc {
	augmented := handler
	if s.isEnableMetric {
		augmented = s.augmentMetric(method, path, augmented)
	}
	if s.isEnableLog {
		augmented = s.augmentLog(augmented)
	}
	return augmented
}

func (s *Server) augmentMetric(method string, path string,
	handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var metricKey string
		if method != "" && path != "" {
			metricKey = fmt.Sprintf("%v_%v", path, method)
		} else {
			metricKey = fmt.Sprintf("%v_%v", r.URL.Path, r.Method)
		}
		s.Metric.Count(metricKey)
		beginTime := time.Now()
		handler(w, r)
		s.Metric.Duration(metricKey, time.Since(beginTime))
	}
}

func (s *Server) augmentLog(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestId := gofast.GenUUID()
		ctx := context.WithValue(r.Context(), CtxRequestId, requestId)
		query := r.URL.Query().Encode()
		if query != "" {
			query = "?" + query
		}
		log.Condf(s.isEnableLog, "http request %v from %v: %v %v%v",
			requestId, r.RemoteAddr, r.Method, r.URL.Path, query)
		handler(w, r.WithContext(ctx))
		log.Condf(s.isEnableLog, "http responded %v to %v: %v %v%v",
			requestId, r.RemoteAddr, r.Method, r.URL.Path, query)
	}
}

// Handler returns the whole handler chain: CORS and no-cache headers
// around the router
func (s *Server) Handler() http.Handler {
	return AddHeaders(s.Router)
}

// Listen binds the TCP listener, after it returns nil the server is running
// and Addr returns the bound address.
func (s *Server) Listen() error {
	if s.listener != nil {
		return errors.New("server is already listening")
	}
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w: %v", ErrPortInUse, addr)
		}
		return fmt.Errorf("listen %v: %w", addr, err)
	}
	s.listener = lis
	s.config.Addr = lis.Addr().String()
	s.running.Store(true)
	return nil
}

// Serve accepts connections until ctx is done, then shuts down gracefully
// and returns nil. Listen is called first if it has not been.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.running.Store(false)

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.config.Serve(s.listener) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Infof("shutting down server on %v", s.Addr())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.config.Shutdown(shutdownCtx); err != nil {
		log.Infof("error Shutdown: %v", err)
		s.config.Close()
	}
	<-serveErr
	return nil
}

// ListenAndServe binds the listener then serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Addr returns the bound address if listening, else the configured one
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// URL is the address a browser on this machine should open
func (s *Server) URL() string {
	port := strconv.Itoa(s.port)
	if s.listener != nil {
		if _, p, err := net.SplitHostPort(s.listener.Addr().String()); err == nil {
			port = p
		}
	}
	return "http://localhost:" + port
}

// Dir returns the absolute document root
func (s *Server) Dir() string { return s.root }

// Running reports whether the server is between a successful Listen and
// the end of Serve
func (s *Server) Running() bool { return s.running.Load() }

// NewDefaultConfig is my suggestion of a http server config for a file server,
// feel free to modified base on your circumstance
func NewDefaultConfig() *http.Server {
	return &http.Server{
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      20 * time.Minute,
	}
}

func (s *Server) handleMetric() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentMetric := s.Metric.GetCurrentMetric()
		sort.Sort(metric.SortByAveDur(currentMetric))
		beauty, err := json.MarshalIndent(currentMetric, "", "\t")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(beauty)
	}
}

// GetRequestId returns the auto generated unique requestId
func GetRequestId(r *http.Request) string {
	return fmt.Sprintf("%v", r.Context().Value(CtxRequestId))
}

// ctxKeyType is used for avoiding context key conflict
type ctxKeyType string

// CtxRequestId is a internal request id
const CtxRequestId ctxKeyType = "CtxRequestId"
