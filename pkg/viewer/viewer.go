// Package viewer streams generated geometry to browser viewers over
// websockets. Every connected client receives the latest design on connect
// and each new design as it is published; clients may also send a JSON
// generation request, whose result is broadcast to everyone.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chazu/biomimic/pkg/design"
	"github.com/chazu/biomimic/pkg/generator"
	"github.com/chazu/biomimic/pkg/render"
	"github.com/chazu/biomimic/pkg/store"
)

// Message types sent to clients.
const (
	TypeDesign = "design"
	TypeError  = "error"
)

const writeTimeout = 10 * time.Second

// Message is the JSON frame pushed to clients.
type Message struct {
	Type     string           `json:"type"`
	Design   *design.Design   `json:"design,omitempty"`
	Geometry *render.Geometry `json:"geometry,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Hub tracks connected clients and the most recent design.
type Hub struct {
	session *generator.Session
	store   store.Store
	logger  *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	latest  *Message
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithStore saves every design generated on behalf of a client.
func WithStore(s store.Store) Option {
	return func(h *Hub) { h.store = s }
}

// NewHub returns a hub that generates client requests through session.
func NewHub(session *generator.Session, opts ...Option) *Hub {
	h := &Hub{
		session: session,
		logger:  slog.Default(),
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			// The preview server is a local development tool.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler serves the websocket at /ws and the latest message at /latest.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/latest", h.serveLatest)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish makes res the latest design and broadcasts it.
func (h *Hub) Publish(res generator.Result) {
	g := render.FromMesh(res.Mesh, res.Design.DisplayName())
	msg := &Message{Type: TypeDesign, Design: res.Design, Geometry: &g}

	h.mu.Lock()
	h.latest = msg
	h.mu.Unlock()

	h.broadcast(msg)
}

// Generate runs req through the session and publishes the result. A
// request superseded by a newer one returns generator.ErrSuperseded and
// publishes nothing.
func (h *Hub) Generate(ctx context.Context, req generator.Request) (generator.Result, error) {
	res, err := h.session.Generate(ctx, req)
	if err != nil {
		return generator.Result{}, err
	}
	if h.store != nil {
		if err := h.store.Save(res.Design); err != nil {
			h.logger.Warn("save design", "id", res.Design.ID, "err", err)
		}
	}
	h.Publish(res)
	return res, nil
}

func (h *Hub) serveLatest(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	msg := h.latest
	h.mu.RUnlock()
	if msg == nil {
		http.Error(w, "no design yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		h.logger.Warn("encode latest", "err", err)
	}
}

// ServeWS upgrades the connection and serves one client until it leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	// Holding connMu while registering keeps broadcasts to this client
	// queued until the latest design has gone out, so it never arrives
	// after a newer one.
	connMu := &sync.Mutex{}
	connMu.Lock()
	h.mu.Lock()
	h.clients[conn] = connMu
	latest := h.latest
	h.mu.Unlock()
	defer h.remove(conn)

	h.logger.Debug("viewer connected", "remote", r.RemoteAddr)
	if latest != nil {
		err = h.write(conn, latest)
	}
	connMu.Unlock()
	if err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", "err", err)
			}
			return
		}

		req := generator.NewRequest(generator.RandomSeed())
		if err := json.Unmarshal(data, &req); err != nil {
			h.send(conn, connMu, &Message{Type: TypeError, Error: "invalid request: " + err.Error()})
			continue
		}
		if _, err := h.Generate(r.Context(), req); err != nil {
			if errors.Is(err, generator.ErrSuperseded) {
				continue
			}
			h.send(conn, connMu, &Message{Type: TypeError, Error: err.Error()})
		}
	}
}

func (h *Hub) send(conn *websocket.Conn, connMu *sync.Mutex, msg *Message) error {
	connMu.Lock()
	defer connMu.Unlock()
	return h.write(conn, msg)
}

// write sends msg; the caller holds the connection's mutex.
func (h *Hub) write(conn *websocket.Conn, msg *Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write", "err", err)
		return err
	}
	return nil
}

type client struct {
	conn *websocket.Conn
	mu   *sync.Mutex
}

func (h *Hub) broadcast(msg *Message) {
	h.mu.RLock()
	clients := make([]client, 0, len(h.clients))
	for conn, connMu := range h.clients {
		clients = append(clients, client{conn: conn, mu: connMu})
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, c := range clients {
		if err := h.send(c.conn, c.mu, msg); err != nil {
			failed = append(failed, c.conn)
		}
	}

	for _, conn := range failed {
		conn.Close()
		h.remove(conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("viewer listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.mu.RLock()
		for conn := range h.clients {
			conn.Close()
		}
		h.mu.RUnlock()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
