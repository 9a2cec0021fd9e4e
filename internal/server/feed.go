// Package server streams debug frames to wireframe viewers over websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/ccd/internal/core/observability/log"
)

const (
	writeTimeout    = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	// clientBuffer is how many frames a viewer may lag behind before it is
	// disconnected.
	clientBuffer = 16
)

var ErrFeedClosed = errors.New("feed closed")

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.send) })
}

// Feed fans every broadcast frame out to the connected viewers. Viewers only
// receive; anything they send is discarded.
type Feed struct {
	upgrader websocket.Upgrader
	logger   log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewFeed(logger log.Log) *Feed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger.Named("feed"),
		clients: make(map[*client]struct{}),
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.Close()
		return
	}
	f.clients[c] = struct{}{}
	f.mu.Unlock()
	f.logger.Debug("viewer connected", log.String("remote", conn.RemoteAddr().String()))

	go f.write(c)
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			f.drop(c)
			return
		}
	}
}

func (f *Feed) write(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			f.drop(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

func (f *Feed) drop(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; !ok {
		return
	}
	delete(f.clients, c)
	c.stop()
	f.logger.Debug("viewer disconnected", log.String("remote", c.conn.RemoteAddr().String()))
}

// Broadcast encodes v as JSON once and queues it for every viewer. Viewers
// whose queue is full are disconnected.
func (f *Feed) Broadcast(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFeedClosed
	}
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			delete(f.clients, c)
			c.stop()
			f.logger.Warn("slow viewer dropped", log.String("remote", c.conn.RemoteAddr().String()))
		}
	}
	return nil
}

func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every viewer. Later broadcasts fail with ErrFeedClosed.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		c.stop()
	}
	return nil
}

// ListenAndServe serves the feed on addr under /feed until ctx is done.
func (f *Feed) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/feed", f)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		f.logger.Info("debug feed listening", log.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = f.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = f.Close()
		return srv.Shutdown(shutdownCtx)
	}
}
