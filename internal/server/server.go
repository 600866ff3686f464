// Package server serves the snippet catalog over HTTP: an HTML browser page,
// a JSON API and a WebSocket that tells open pages when the catalog reloads.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/config"
	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/logging"
	"github.com/memora-solutions/snippetkit/internal/validation"
	"github.com/memora-solutions/snippetkit/internal/watcher"
)

// ShutdownTimeout bounds graceful shutdown once the run context is cancelled.
const ShutdownTimeout = 5 * time.Second

// RequestIDHeader carries the id logged with each request. A UUID sent by
// the client is kept; anything else is replaced.
const RequestIDHeader = "X-Request-ID"

// Server is the catalog browser server.
type Server struct {
	config  *config.Config
	store   *catalog.Store
	logger  logging.Logger
	errs    *errors.Handler
	watcher *watcher.FileWatcher

	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn
	pingPeriod   time.Duration

	httpServer  *http.Server
	listenAddr  net.Addr
	serverMutex sync.RWMutex

	shutdownOnce sync.Once
}

// Client is one WebSocket connection.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server

	// ctx ends when the hub drops the client.
	ctx    context.Context
	cancel context.CancelFunc
}

// UpdateMessage is pushed to WebSocket clients.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Version   string    `json:"version,omitempty"`
	Snippets  int       `json:"snippets"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message types sent over the WebSocket.
const (
	MessageCatalogReloaded = "catalog_reloaded"
	MessageReloadFailed    = "catalog_reload_failed"
)

// New creates a server for store. A nil logger discards log output.
func New(cfg *config.Config, store *catalog.Store, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: nil config")
	}
	if store == nil {
		return nil, fmt.Errorf("server: nil catalog store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	logger = logger.WithComponent("server")
	return &Server{
		config:     cfg,
		store:      store,
		logger:     logger,
		errs:       errors.NewHandler(logger),
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		pingPeriod: pingPeriod,
	}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/snippets", s.handleSnippets)
	mux.HandleFunc("GET /api/snippets/{id}", s.handleSnippet)
	mux.HandleFunc("POST /api/snippets/{id}/render", s.handleRender)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/popular", s.handlePopular)

	return s.addMiddleware(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully. When the
// catalog comes from a file, the file is watched and reloaded on change.
func (s *Server) Start(ctx context.Context) error {
	if s.config.Catalog.Path != "" {
		if err := s.setupFileWatcher(ctx); err != nil {
			return err
		}
	}

	listener, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		if s.watcher != nil {
			s.watcher.Stop()
		}
		return fmt.Errorf("listening on %s: %w", s.config.Server.Addr(), err)
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.serverMutex.Lock()
	s.httpServer = server
	s.listenAddr = listener.Addr()
	s.serverMutex.Unlock()

	go s.runWebSocketHub(ctx)
	go s.relayReloads(ctx, s.store.Watch())
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, err, "Server shutdown failed")
		}
	}()

	s.logger.Info(ctx, "Catalog browser listening",
		"addr", listener.Addr().String(),
		"snippets", s.store.Current().Len())

	if err := server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound listener address, or nil before Start listens.
func (s *Server) Addr() net.Addr {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	return s.listenAddr
}

func (s *Server) setupFileWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(s.config.Watch.Debounce, s.logger)
	if err != nil {
		return err
	}
	fw.AddFilter(watcher.NoTempFilter)
	if err := fw.AddFile(s.config.Catalog.Path); err != nil {
		fw.Stop()
		return fmt.Errorf("watching catalog: %w", err)
	}
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		s.logger.Info(ctx, "Catalog file changed", "path", events[0].Path, "event", events[0].Type.String())
		return s.store.Reload()
	})

	s.watcher = fw
	return fw.Start(ctx)
}

// relayReloads turns store reload events into WebSocket broadcasts until ctx
// is cancelled, then unsubscribes events.
func (s *Server) relayReloads(ctx context.Context, events <-chan catalog.ReloadEvent) {
	defer s.store.Unwatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.broadcastMessage(reloadMessage(event))
		}
	}
}

func reloadMessage(event catalog.ReloadEvent) UpdateMessage {
	msg := UpdateMessage{
		Type:      MessageCatalogReloaded,
		Version:   event.Version,
		Snippets:  event.Snippets,
		Timestamp: event.Timestamp,
	}
	if event.Err != nil {
		msg.Type = MessageReloadFailed
		msg.Error = event.Err.Error()
	}
	return msg
}

func (s *Server) broadcastMessage(msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "Failed to marshal message")
		data = []byte(`{"type":"` + MessageCatalogReloaded + `"}`)
	}

	select {
	case s.broadcast <- data:
	default:
		s.logger.Warn(context.Background(), nil, "Broadcast queue full, dropping message", "type", msg.Type)
	}
}

func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)

		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		if origin := r.Header.Get("Origin"); origin != "" && s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.WithRequestID(requestID).Debug(r.Context(), "Request served",
			"method", r.Method,
			"path", logging.SanitizeForLog(r.URL.Path),
			"duration", time.Since(start))
	})
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")
}

func (s *Server) isAllowedOrigin(origin string) bool {
	return validation.ValidateOrigin(origin, s.allowedOrigins()) == nil
}

// allowedOrigins resolves the default origins against the bound port, which
// differs from the configured one when listening on port 0.
func (s *Server) allowedOrigins() []string {
	cfg := s.config.Server
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		cfg.Port = addr.Port
	}
	return cfg.Origins()
}

// Shutdown closes WebSocket clients, stops the file watcher and shuts the
// HTTP server down. Only the first call has an effect; its error combines
// every step that failed.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		var watcherErr, httpErr error
		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
				watcherErr = fmt.Errorf("stopping file watcher: %w", err)
			}
		}

		s.clientsMutex.Lock()
		clients := make([]*Client, 0, len(s.clients))
		for _, client := range s.clients {
			close(client.send)
			clients = append(clients, client)
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		// Close waits for the peer's close frame, so connections close in
		// parallel.
		var wg sync.WaitGroup
		for _, client := range clients {
			wg.Add(1)
			go func(client *Client) {
				defer wg.Done()
				client.conn.Close(websocket.StatusGoingAway, "server shutting down")
				client.cancel()
			}(client)
		}
		wg.Wait()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				httpErr = fmt.Errorf("shutting down http server: %w", err)
			}
		}
		shutdownErr = errors.CombineErrors(watcherErr, httpErr)
	})

	return shutdownErr
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}
