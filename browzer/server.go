package browzer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"

	"dqx0.com/go/web/browzer/internal/http1"
	"dqx0.com/go/web/internal/obs"
	"dqx0.com/go/web/internal/pool"
)

const (
	defaultMaxHeaderBytes = 64 << 10
	maxLineBytes          = 8 << 10
	gzipMinBytes          = 256

	// After the response, unread client bytes are drained for at most this
	// long so closing does not reset the connection under the response.
	lingerTimeout  = 250 * time.Millisecond
	lingerMaxBytes = 256 << 10

	rejectTimeout = 100 * time.Millisecond
)

// WebServer binds a TCP listener, owns the route table and dispatches every
// accepted connection to a fixed pool of workers.
//
// Exported fields must be set before Listen is called.
type WebServer struct {
	// HideBanner suppresses the "HTTP server running" log line.
	HideBanner bool
	// Logger receives all server logs. Nil discards them.
	Logger *slog.Logger
	// Meter receives connection and request measurements. Nil discards them.
	Meter obs.Meter
	// QueueSize caps connections waiting for a worker; past it new
	// connections get 503. 0 leaves the queue unbounded.
	QueueSize int
	// ReadHeaderTimeout bounds reading the request header block.
	ReadHeaderTimeout time.Duration
	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration
	// MaxHeaderBytes bounds the header block; 0 means 64 KiB.
	MaxHeaderBytes int
	// EnableGzip compresses larger bodies for clients sending
	// Accept-Encoding: gzip.
	EnableGzip bool

	listener net.Listener
	workers  int
	builder  *RouterBuilder
	router   atomic.Pointer[Router]

	mu        sync.Mutex
	pool      *pool.Pool
	listening bool
	closing   atomic.Bool
}

// New binds addr and prepares a server with the given number of workers.
// A bind failure means the service cannot start and is returned as is.
func New(addr string, workers int) (*WebServer, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", pool.ErrInvalidSize, workers)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("browzer: bind %s: %w", addr, err)
	}
	return &WebServer{
		listener: ln,
		workers:  workers,
		builder:  NewRouterBuilder(nil),
	}, nil
}

// Addr is the bound listener address.
func (s *WebServer) Addr() net.Addr { return s.listener.Addr() }

// Handle registers h for method and path. Failures are logged and returned;
// the server keeps running without the route.
func (s *WebServer) Handle(method, path string, h Handler) error {
	if err := s.builder.add(method, path, h); err != nil {
		s.log().Error("route registration failed", "method", method, "path", path, "error", err)
		return err
	}
	return nil
}

func (s *WebServer) Get(path string, h HandlerFunc) error    { return s.Handle(MethodGet, path, h) }
func (s *WebServer) Head(path string, h HandlerFunc) error   { return s.Handle(MethodHead, path, h) }
func (s *WebServer) Post(path string, h HandlerFunc) error   { return s.Handle(MethodPost, path, h) }
func (s *WebServer) Put(path string, h HandlerFunc) error    { return s.Handle(MethodPut, path, h) }
func (s *WebServer) Patch(path string, h HandlerFunc) error  { return s.Handle(MethodPatch, path, h) }
func (s *WebServer) Delete(path string, h HandlerFunc) error { return s.Handle(MethodDelete, path, h) }

// Routes lists the registered routes in registration order.
func (s *WebServer) Routes() []RouteInfo {
	if r := s.router.Load(); r != nil {
		return r.Routes()
	}
	return s.builder.Routes()
}

// Listen freezes the route table, starts the workers and accepts
// connections until Shutdown, after which it returns ErrServerClosed.
// Per-connection failures are logged and never stop the loop.
func (s *WebServer) Listen() error {
	log := s.log()

	s.mu.Lock()
	if s.listening {
		s.mu.Unlock()
		return errors.New("browzer: Listen called more than once")
	}
	if s.closing.Load() {
		s.mu.Unlock()
		return ErrServerClosed
	}
	p, err := pool.New(s.workers, pool.WithQueueSize(s.QueueSize), pool.WithLogger(log))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.pool = p
	s.listening = true
	s.mu.Unlock()

	router := s.builder.Build()
	s.router.Store(router)

	if !s.HideBanner {
		log.Info("HTTP server running", "addr", s.listener.Addr().String(), "workers", s.workers, "routes", len(router.all))
	}

	var tempDelay time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > time.Second {
				tempDelay = time.Second
			}
			log.Error("failed to accept connection", "error", err, "retry_in", tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0
		s.meter().Counter("browzer.conn.accepted", 1)

		shared := s.router.Load()
		if err := p.Execute(func() { s.serveConn(conn, shared) }); err != nil {
			log.Error("failed to assign worker to connection", "remote", conn.RemoteAddr().String(), "error", err, "pending", p.Pending())
			s.meter().Counter("browzer.conn.error", 1, obs.Label{Key: "stage", Value: "dispatch"})
			if errors.Is(err, pool.ErrQueueFull) {
				go reject(conn)
			} else {
				_ = conn.Close()
			}
		}
	}
}

// Shutdown closes the listener so Listen returns, then waits for the
// workers to finish every accepted connection. If ctx ends first its error
// is returned and in-flight connections keep running.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}

	s.mu.Lock()
	p := s.pool
	s.mu.Unlock()
	if p != nil {
		if perr := p.Shutdown(ctx); perr != nil {
			return perr
		}
	}
	if err == nil {
		s.log().Info("HTTP server stopped")
	}
	return err
}

// serveConn is the job run by a worker for one connection: read the header
// block, parse it, route it, write the response and close.
func (s *WebServer) serveConn(conn net.Conn, router *Router) {
	defer lingerClose(conn)
	start := time.Now()
	id := newRequestID()
	remote := conn.RemoteAddr().String()
	log := s.log().With("request_id", id, "remote", remote)

	if router == nil {
		s.connError(log, "route", ErrRouterNotReady)
		return
	}

	if s.ReadHeaderTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.ReadHeaderTimeout))
	}
	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)

	rr := &http1.Reader{BR: br, MaxLineBytes: maxLineBytes, MaxHeaderBytes: s.headerLimit()}
	lines, err := rr.ReadHeaderLines()
	if err != nil {
		if err == io.EOF {
			log.Debug("connection closed before sending a request")
			return
		}
		if errors.Is(err, http1.ErrHeaderTooLarge) || errors.Is(err, http1.ErrLineTooLong) {
			err = fmt.Errorf("%w: %w", ErrHeaderTooLarge, err)
			s.connError(log, "read", err)
			s.write(conn, bw, nil, badRequest(), log)
			return
		}
		s.connError(log, "read", err)
		return
	}

	req, err := ParseRequest(lines)
	if err != nil {
		s.connError(log, "parse", err)
		s.write(conn, bw, nil, badRequest(), log)
		return
	}
	req.RequestID = id
	req.RemoteAddr = remote
	ctx := WithRequestID(context.Background(), id)
	if tr, ok := traceFromHeader(req.Header); ok {
		ctx = WithTrace(ctx, tr)
		log = log.With("trace_id", tr.TraceID)
	}
	req = req.WithContext(ctx)

	resp := s.dispatch(router, req, log)
	if !s.write(conn, bw, req, resp, log) {
		return
	}

	status := resp.StatusCode
	if status == 0 {
		status = StatusOK
	}
	elapsed := time.Since(start)
	s.meter().Counter("browzer.request", 1,
		obs.Label{Key: "method", Value: req.Method},
		obs.Label{Key: "status", Value: strconv.Itoa(status)})
	s.meter().Histogram("browzer.request.duration_ms", float64(elapsed.Microseconds())/1000)
	log.Debug("request handled", "method", req.Method, "path", req.Path, "status", status, "duration", elapsed)
}

// dispatch runs the router, turning a handler panic into a 500.
func (s *WebServer) dispatch(router *Router, req *Request, log *slog.Logger) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "method", req.Method, "path", req.Path, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			resp = internalError()
		}
	}()
	return router.HandleRequest(req)
}

// write serializes resp onto conn. The handler's response is never mutated:
// the request ID header and any gzip encoding are applied to a copy.
// It reports whether the response was fully flushed.
func (s *WebServer) write(conn net.Conn, bw *bufio.Writer, req *Request, resp *Response, log *slog.Logger) bool {
	out := *resp
	out.Header = resp.Header.Clone()
	if out.Header == nil {
		out.Header = Header{}
	}
	body := []byte(resp.Body)
	if req != nil {
		out.Header.Set("X-Request-Id", req.RequestID)
		if s.EnableGzip && acceptsGzip(req.Header) && len(body) >= gzipMinBytes && !out.Header.Has("Content-Encoding") {
			zipped, err := gzipBytes(body)
			if err != nil {
				log.Warn("gzip failed, sending identity body", "error", err)
			} else {
				body = zipped
				out.Header.Set("Content-Encoding", "gzip")
				out.Header.Set("Vary", "Accept-Encoding")
			}
		}
	}

	if s.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	if err := out.write(bw, body); err != nil {
		s.connError(log, "write", err)
		return false
	}
	if err := bw.Flush(); err != nil {
		s.connError(log, "flush", err)
		return false
	}
	return true
}

func (s *WebServer) connError(log *slog.Logger, stage string, err error) {
	log.Warn("dropping connection", "stage", stage, "error", err)
	s.meter().Counter("browzer.conn.error", 1, obs.Label{Key: "stage", Value: stage})
}

func (s *WebServer) log() *slog.Logger {
	return obs.OrDiscard(s.Logger)
}

func (s *WebServer) meter() obs.Meter {
	if s.Meter == nil {
		return obs.NopMeter{}
	}
	return s.Meter
}

func (s *WebServer) headerLimit() int {
	if s.MaxHeaderBytes <= 0 {
		return defaultMaxHeaderBytes
	}
	return s.MaxHeaderBytes
}

// reject answers 503 without reading the request and closes conn. The
// write gets a short deadline since no worker owns the connection.
func reject(conn net.Conn) {
	defer lingerClose(conn)
	_ = conn.SetWriteDeadline(time.Now().Add(rejectTimeout))
	bw := bufio.NewWriter(conn)
	resp := serviceUnavailable()
	if resp.write(bw, []byte(resp.Body)) == nil {
		_ = bw.Flush()
	}
}

// lingerClose half-closes conn, discards what the client still sends until
// it closes its side or lingerTimeout passes, then closes.
func lingerClose(conn net.Conn) {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err == nil {
			_ = conn.SetReadDeadline(time.Now().Add(lingerTimeout))
			_, _ = io.Copy(io.Discard, io.LimitReader(conn, lingerMaxBytes))
		}
	}
	_ = conn.Close()
}

// acceptsGzip reports whether Accept-Encoding lists gzip (or *) without
// q=0.
func acceptsGzip(h Header) bool {
	v, _ := h.Fold("Accept-Encoding")
	for _, entry := range strings.Split(v, ",") {
		coding, params, _ := strings.Cut(entry, ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "x-gzip" && coding != "*" {
			continue
		}
		if !zeroQuality(params) {
			return true
		}
	}
	return false
}

// zeroQuality reports whether params carries q=0 (also q=0.0, q=0.000).
func zeroQuality(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && q == 0
	}
	return false
}

func gzipBytes(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
