// Package push fans order events out to tenant terminals over long-lived streams.
//
// Connections are indexed by tenant and by user within the tenant. Quotas are enforced on
// attach: a user over quota loses their oldest connection, a tenant over quota refuses new
// ones. Dead streams are found lazily when a write fails; there is no heartbeat.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxPerUser      = 3
	DefaultMaxPerTenant    = 50
	DefaultStaleAfter      = 60 * time.Second
	DefaultSweepMaxAge     = time.Hour
	defaultSendConcurrency = 16
)

type Config struct {
	MaxPerUser   int
	MaxPerTenant int

	// StaleAfter is the age past which a user's own connections are purged when that user
	// attaches again.
	StaleAfter time.Duration

	// SendConcurrency bounds parallel writes of one broadcast.
	SendConcurrency int
}

func DefaultConfig() Config {
	return Config{
		MaxPerUser:      DefaultMaxPerUser,
		MaxPerTenant:    DefaultMaxPerTenant,
		StaleAfter:      DefaultStaleAfter,
		SendConcurrency: defaultSendConcurrency,
	}
}

type connection struct {
	tenantID    string
	userID      string
	transport   ports.Transport
	connectedAt time.Time
}

// Manager is the ConnectionRegistry and Notifier backed by live transports.
type Manager struct {
	mu      sync.Mutex
	tenants map[string]map[string][]*connection

	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

func NewManager(cfg Config, now func() time.Time, logger *slog.Logger) *Manager {
	if cfg.SendConcurrency <= 0 {
		cfg.SendConcurrency = defaultSendConcurrency
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		tenants: make(map[string]map[string][]*connection),
		cfg:     cfg,
		now:     now,
		logger:  logger.With("component", "push_manager"),
	}
}

// AddConnection purges the user's stale connections, evicts the user's oldest one when the
// user is at quota and refuses the attach when the tenant is at quota.
func (m *Manager) AddConnection(tenantID, userID string, t ports.Transport) bool {
	var closing []ports.Transport
	defer func() {
		for _, c := range closing {
			c.Close()
		}
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	users := m.tenants[tenantID]
	own := users[userID]

	live := own[:0:0]
	for _, c := range own {
		if now.Sub(c.connectedAt) > m.cfg.StaleAfter {
			closing = append(closing, c.transport)
			continue
		}
		live = append(live, c)
	}
	own = live

	if len(own) >= m.cfg.MaxPerUser {
		oldest := oldestIndex(own)
		if oldest < 0 {
			m.store(tenantID, userID, own)
			m.logger.Warn("connection refused, user quota is zero", "tenant_id", tenantID, "user_id", userID)
			return false
		}
		closing = append(closing, own[oldest].transport)
		own = append(own[:oldest:oldest], own[oldest+1:]...)
		m.logger.Info("evicted oldest connection", "tenant_id", tenantID, "user_id", userID)
	}

	if m.tenantCountLocked(tenantID)-len(users[userID])+len(own) >= m.cfg.MaxPerTenant {
		m.store(tenantID, userID, own)
		m.logger.Warn("connection refused, tenant quota reached", "tenant_id", tenantID, "user_id", userID)
		return false
	}

	own = append(own, &connection{
		tenantID:    tenantID,
		userID:      userID,
		transport:   t,
		connectedAt: now,
	})
	m.store(tenantID, userID, own)
	return true
}

// RemoveConnection drops t from both indexes and closes it.
func (m *Manager) RemoveConnection(tenantID, userID string, t ports.Transport) {
	m.mu.Lock()
	removed := m.removeLocked(tenantID, userID, t)
	m.mu.Unlock()

	if removed {
		t.Close()
	}
}

// Broadcast writes the event to every connection of the tenant. Connections whose write
// fails are removed. A cancelled ctx does not stop the sends.
func (m *Manager) Broadcast(ctx context.Context, tenantID string, event order.Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("failed to encode event", "tenant_id", tenantID, "error", err)
		return 0
	}

	m.mu.Lock()
	var targets []*connection
	for _, conns := range m.tenants[tenantID] {
		targets = append(targets, conns...)
	}
	m.mu.Unlock()

	var (
		deadMu    sync.Mutex
		dead      []*connection
		delivered int
	)
	g := new(errgroup.Group)
	g.SetLimit(m.cfg.SendConcurrency)
	for _, c := range targets {
		g.Go(func() error {
			sendErr := c.transport.Send(data)

			deadMu.Lock()
			defer deadMu.Unlock()
			if sendErr != nil {
				dead = append(dead, c)
				return nil
			}
			delivered++
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range dead {
		m.logger.InfoContext(ctx, "dropping dead connection", "tenant_id", c.tenantID, "user_id", c.userID)
		m.RemoveConnection(c.tenantID, c.userID, c.transport)
	}
	return delivered
}

// SweepStale drops connections older than maxAge across all tenants.
func (m *Manager) SweepStale(maxAge time.Duration) int {
	var closing []ports.Transport

	m.mu.Lock()
	now := m.now()
	for tenantID, users := range m.tenants {
		for userID, conns := range users {
			live := conns[:0:0]
			for _, c := range conns {
				if now.Sub(c.connectedAt) > maxAge {
					closing = append(closing, c.transport)
					continue
				}
				live = append(live, c)
			}
			m.store(tenantID, userID, live)
		}
	}
	m.mu.Unlock()

	for _, t := range closing {
		t.Close()
	}
	return len(closing)
}

// CloseAll drops every connection, ending their streams. Used on shutdown.
func (m *Manager) CloseAll() int {
	var closing []ports.Transport

	m.mu.Lock()
	for _, users := range m.tenants {
		for _, conns := range users {
			for _, c := range conns {
				closing = append(closing, c.transport)
			}
		}
	}
	m.tenants = make(map[string]map[string][]*connection)
	m.mu.Unlock()

	for _, t := range closing {
		t.Close()
	}
	return len(closing)
}

func (m *Manager) ConnectionCount(tenantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tenantCountLocked(tenantID)
}

func (m *Manager) UserConnectionCount(tenantID, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tenants[tenantID][userID])
}

func (m *Manager) tenantCountLocked(tenantID string) int {
	n := 0
	for _, conns := range m.tenants[tenantID] {
		n += len(conns)
	}
	return n
}

// store replaces the user's bucket, pruning empty buckets.
func (m *Manager) store(tenantID, userID string, conns []*connection) {
	users, ok := m.tenants[tenantID]
	if len(conns) == 0 {
		if ok {
			delete(users, userID)
			if len(users) == 0 {
				delete(m.tenants, tenantID)
			}
		}
		return
	}
	if !ok {
		users = make(map[string][]*connection)
		m.tenants[tenantID] = users
	}
	users[userID] = conns
}

func (m *Manager) removeLocked(tenantID, userID string, t ports.Transport) bool {
	conns := m.tenants[tenantID][userID]
	for i, c := range conns {
		if c.transport == t {
			m.store(tenantID, userID, append(conns[:i:i], conns[i+1:]...))
			return true
		}
	}
	return false
}

func oldestIndex(conns []*connection) int {
	idx := -1
	for i, c := range conns {
		if idx < 0 || c.connectedAt.Before(conns[idx].connectedAt) {
			idx = i
		}
	}
	return idx
}
