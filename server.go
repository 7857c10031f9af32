package halcyon

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Builder assembles a Router and a Config into a Server. It is the only way
// to construct a Server; once Build returns, the resulting Router is
// immutable (spec.md §4.6, §4.9's "External Interfaces").
type Builder struct {
	items            []Servable
	config           Config
	logger           *Logger
	exceptionHandler func(err error, req *Request) *Response
	configPath       string
}

// NewBuilder returns a Builder with DefaultConfig and a stdout Logger.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// Serve registers a top-level route or scope.
func (b *Builder) Serve(item Servable) *Builder {
	b.items = append(b.items, item)
	return b
}

// SetConfig replaces the Builder's Config wholesale.
func (b *Builder) SetConfig(c Config) *Builder {
	b.config = c
	return b
}

// SetRequestHeaderLimit sets Config.MaxHeaderBytes.
func (b *Builder) SetRequestHeaderLimit(bytes int) *Builder {
	b.config.MaxHeaderBytes = bytes
	return b
}

// SetLogger installs a Logger, overriding the default stdout one.
func (b *Builder) SetLogger(l *Logger) *Builder {
	b.logger = l
	return b
}

// SetExceptionHandler installs the centralized handler invoked whenever a
// Service returns (or panics with) an error that was not converted to a
// Response by an extractor or middleware (spec.md §7).
func (b *Builder) SetExceptionHandler(f func(error, *Request) *Response) *Builder {
	b.exceptionHandler = f
	return b
}

// LoadConfigFile reads format (.json/.toml/.yaml/.yml, by extension) from
// path and decodes it into the Builder's Config via mapstructure, mirroring
// the teacher's Air.Serve config-file branch (SPEC_FULL.md §4.10). If
// Config.WatchConfigFile is true at Build time, the file is also watched for
// changes for the lifetime of the resulting Server.
func (b *Builder) LoadConfigFile(path string) (*Builder, error) {
	if err := decodeConfigFile(path, &b.config); err != nil {
		return nil, err
	}
	b.configPath = path
	return b, nil
}

func decodeConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &m)
	case ".toml":
		err = toml.Unmarshal(raw, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &m)
	default:
		return fmt.Errorf("halcyon: unsupported config file extension: %s", path)
	}
	if err != nil {
		return err
	}

	return mapstructure.Decode(m, cfg)
}

// Build validates and compiles every registered route/scope into an
// immutable Router and returns the Server ready to Bind and Run.
func (b *Builder) Build() (*Server, error) {
	router, err := buildRouter(b.items)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = NewLogger(os.Stdout, b.config.LogLevel)
	}

	s := &Server{
		router:           router,
		config:           b.config,
		logger:           logger,
		exceptionHandler: b.exceptionHandler,
		configPath:       b.configPath,
		closing:          make(chan struct{}),
	}

	if b.config.WatchConfigFile && b.configPath != "" {
		if err := s.watchConfigFile(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Server owns a Router, a Config, and zero or more listeners. It drives one
// connection task per accepted connection (spec.md §4.9, §5) and supports
// graceful shutdown (spec.md §4.9's numbered shutdown sequence).
type Server struct {
	router           *Router
	config           Config
	logger           *Logger
	exceptionHandler func(err error, req *Request) *Response
	configPath       string

	mu        sync.Mutex
	httpSrvs  []*http.Server
	listeners []net.Listener

	watcher *fsnotify.Watcher
	closing chan struct{}
}

// Bind adds a plaintext TCP listener at host:port. It does not start
// accepting connections until Run is called.
func (s *Server) Bind(host string, port int) error {
	return s.bind(fmt.Sprintf("%s:%d", host, port), nil, "tcp")
}

// BindTLS adds a TLS-wrapped TCP listener at host:port using tlsConfig,
// constructed by the caller (TLS context construction is outside this
// module's scope per spec.md §1).
func (s *Server) BindTLS(host string, port int, tlsConfig *tls.Config) error {
	return s.bind(fmt.Sprintf("%s:%d", host, port), tlsConfig, "tcp")
}

// BindLocal adds a UNIX domain socket listener at path, optionally
// TLS-wrapped if tlsConfig is non-nil.
func (s *Server) BindLocal(path string, tlsConfig *tls.Config) error {
	return s.bind(path, tlsConfig, "unix")
}

func (s *Server) bind(addr string, tlsConfig *tls.Config, network string) error {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return err
	}
	if tlsConfig != nil {
		ln = tls.NewListener(ln, tlsConfig)
	}

	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: s.config.HeaderReadTimeout,
		WriteTimeout:      0, // enforced via http.ResponseController.SetWriteDeadline in conn.go's writeResponse instead
		IdleTimeout:       s.config.KeepAliveIdleTimeout,
		MaxHeaderBytes:    s.config.MaxHeaderBytes,
		ConnContext:       func(ctx context.Context, c net.Conn) context.Context { return withConn(ctx, c) },
		ErrorLog:          nil,
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.httpSrvs = append(s.httpSrvs, hs)
	s.mu.Unlock()

	return nil
}

// Addresses returns the actual addresses of every bound listener, useful
// when a "0" port was requested.
func (s *Server) Addresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]string, len(s.listeners))
	for i, ln := range s.listeners {
		addrs[i] = ln.Addr().String()
	}
	return addrs
}

// Run blocks, serving every bound listener concurrently (one errgroup
// goroutine per listener, per SPEC_FULL.md §5's workers realization), until
// every listener's Serve returns (normally via Shutdown/Close, or with an
// error).
func (s *Server) Run() error {
	s.mu.Lock()
	listeners := append([]net.Listener{}, s.listeners...)
	httpSrvs := append([]*http.Server{}, s.httpSrvs...)
	s.mu.Unlock()

	if len(listeners) == 0 {
		return fmt.Errorf("halcyon: Run called with no bound listener; call Bind/BindTLS/BindLocal first")
	}

	var g errgroup.Group
	for i := range listeners {
		ln, hs := listeners[i], httpSrvs[i]
		g.Go(func() error {
			err := hs.Serve(ln)
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// Shutdown implements spec.md §4.9's graceful shutdown sequence: stop
// accepting new connections, allow in-flight requests to finish within
// Config.ShutdownGrace, then cancel whatever remains.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.closing)
	if s.watcher != nil {
		s.watcher.Close()
	}

	grace, cancel := context.WithTimeout(ctx, s.config.ShutdownGrace)
	defer cancel()

	s.mu.Lock()
	httpSrvs := append([]*http.Server{}, s.httpSrvs...)
	s.mu.Unlock()

	var g errgroup.Group
	for i := range httpSrvs {
		hs := httpSrvs[i]
		g.Go(func() error { return hs.Shutdown(grace) })
	}

	if err := g.Wait(); err != nil {
		s.Close()
		return err
	}
	return nil
}

// Close closes every listener immediately, abandoning in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	httpSrvs := append([]*http.Server{}, s.httpSrvs...)
	s.mu.Unlock()

	var firstErr error
	for _, hs := range httpSrvs {
		if err := hs.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// watchConfigFile starts an fsnotify watch on the Builder's config file,
// re-decoding it into the Server's Config on every write event
// (SPEC_FULL.md §4.10). The reload is guarded by s.mu so a connection task
// reading s.config never observes a partially-decoded value.
func (s *Server) watchConfigFile() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.configPath)); err != nil {
		w.Close()
		return err
	}
	s.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.configPath) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				var cfg Config
				s.mu.Lock()
				cfg = s.config
				s.mu.Unlock()

				if err := decodeConfigFile(s.configPath, &cfg); err != nil {
					s.logger.Warnf("halcyon: config reload failed: %v", err)
					continue
				}

				s.mu.Lock()
				s.config = cfg
				s.mu.Unlock()
				s.logger.Infof("halcyon: reloaded config file %s", s.configPath)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warnf("halcyon: config watcher error: %v", err)
			case <-s.closing:
				return
			}
		}
	}()

	return nil
}

// ServeRequest is the in-process dispatch entry point used for testing: it
// routes and serves req without touching any socket, invoking callback with
// the resulting Response (spec.md §4.9, §6's "programmatic serve_request").
// The path argument is accepted for parity with the spec's signature but is
// redundant with req.Path, which must already be set; if both are given and
// differ, path wins.
func (s *Server) ServeRequest(path string, req *Request, callback func(*Response, error)) {
	if path != "" {
		req.Path = path
	}

	result := s.router.Match(req.Method, req.Path)

	switch result.Outcome {
	case NotFound:
		callback(ErrorResponse(errNotFound, 404), nil)
		return
	case MethodNotAllowed:
		resp := ErrorResponse(errMethodNotAllowed, 405)
		resp.Headers.Set(HeaderAllow, result.AllowHeader())
		callback(resp, nil)
		return
	}

	cr := result.Route
	req.PathParams = result.Params
	req.state = cr.state

	if cr.maxBody > 0 {
		req.Body = limitStream(req.Body, cr.maxBody)
	} else if s.config.MaxBodyBytes > 0 {
		req.Body = limitStream(req.Body, s.config.MaxBodyBytes)
	}

	resp, err := s.invoke(cr.service, req)
	if err != nil {
		resp = s.handleException(err, req)
	}
	callback(resp, nil)
}

// NewTestRequest builds a Request suitable for Server.ServeRequest, without
// any network I/O: method and path are required; body, if any, is given as
// raw bytes with an exact size hint.
func NewTestRequest(method, path string, headers map[string]string, body []byte) *Request {
	req := newRequest()
	req.Method = method

	if i := strings.IndexByte(path, '?'); i >= 0 {
		req.Path = path[:i]
		req.Query = ParseQuery(path[i+1:])
	} else {
		req.Path = path
	}

	req.RawURI = path
	req.Proto = "HTTP/1.1"

	for k, v := range headers {
		req.Headers.Add(k, v)
	}

	if body == nil {
		req.Body = EmptyStream
	} else {
		req.Body = BytesStream(body)
	}

	return req
}
