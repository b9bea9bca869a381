// Package browser keeps the per-browser state of the storefront: each
// browser session owns one cart, one session provider and the notices
// waiting to be shown to it.
package browser

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/cart"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/notice"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
)

const DefaultIdleTimeout = 2 * time.Hour

// Client is one browser session. Callers hold Lock for the whole request so
// requests from the same browser are applied one at a time.
type Client struct {
	sync.Mutex

	ID      string
	Cart    *cart.Cart
	Session *session.Provider
	Notices *notice.Queue

	lastSeen time.Time
}

type Registry struct {
	identity session.IdentityClient
	idle     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

func NewRegistry(identity session.IdentityClient, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Registry{
		identity: identity,
		idle:     idle,
		now:      time.Now,
		clients:  make(map[string]*Client),
	}
}

// Get returns the client for browser id, creating it on first sight. token
// is the access token the browser remembered from an earlier visit; it is
// only used when the client is created.
func (r *Registry) Get(id, token string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[id]; ok {
		c.lastSeen = r.now()
		return c
	}

	q := &notice.Queue{}
	c := &Client{
		ID:       id,
		Cart:     cart.New(q),
		Session:  session.NewProvider(r.identity, token, q),
		Notices:  q,
		lastSeen: r.now(),
	}
	r.clients[id] = c
	return c
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep drops clients that have not been seen for longer than the idle
// timeout and returns how many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []*Client
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			stale = append(stale, c)
			delete(r.clients, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Session.Close()
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes every client.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("Evicted idle browser sessions", "count", n)
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Session.Close()
	}
}
