package push_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/push"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    [][]byte
	closed  bool
	sendErr error
}

func (f *fakeTransport) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTransport) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManager(cfg push.Config) (*push.Manager, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	return push.NewManager(cfg, clock.Now, nil), clock
}

func testEvent(t *testing.T) order.Event {
	t.Helper()
	key, _ := kernel.NewOrderKey("butcher-1", "1001")
	q, _ := kernel.ParseQuantity("1kg")
	item, _ := order.NewItem("A", "Ribeye", "", q, order.ItemDetails{})
	o, err := order.NewOrder(key, "Alice", []*order.Item{item}, time.Now())
	require.NoError(t, err)
	return order.NewEvent(order.EventNewOrder, o, time.Now())
}

func TestManager_AddConnection(t *testing.T) {
	t.Run("should evict exactly the oldest connection when user is at quota", func(t *testing.T) {
		m, clock := newManager(push.DefaultConfig())
		first, second, third := &fakeTransport{}, &fakeTransport{}, &fakeTransport{}
		require.True(t, m.AddConnection("butcher-1", "u1", first))
		clock.Advance(10 * time.Second)
		require.True(t, m.AddConnection("butcher-1", "u1", second))
		clock.Advance(10 * time.Second)
		require.True(t, m.AddConnection("butcher-1", "u1", third))
		clock.Advance(10 * time.Second)

		fourth := &fakeTransport{}
		accepted := m.AddConnection("butcher-1", "u1", fourth)

		assert.True(t, accepted)
		assert.Equal(t, 3, m.UserConnectionCount("butcher-1", "u1"))
		assert.True(t, first.isClosed())
		assert.False(t, second.isClosed())
		assert.False(t, third.isClosed())
		assert.False(t, fourth.isClosed())
	})

	t.Run("should purge the user's stale connections before enforcing quota", func(t *testing.T) {
		m, clock := newManager(push.DefaultConfig())
		old1, old2 := &fakeTransport{}, &fakeTransport{}
		m.AddConnection("butcher-1", "u1", old1)
		m.AddConnection("butcher-1", "u1", old2)
		other := &fakeTransport{}
		m.AddConnection("butcher-1", "u2", other)
		clock.Advance(61 * time.Second)

		fresh := &fakeTransport{}
		require.True(t, m.AddConnection("butcher-1", "u1", fresh))

		assert.Equal(t, 1, m.UserConnectionCount("butcher-1", "u1"))
		assert.True(t, old1.isClosed())
		assert.True(t, old2.isClosed())
		assert.False(t, other.isClosed(), "other users are not purged")
		assert.Equal(t, 2, m.ConnectionCount("butcher-1"))
	})

	t.Run("should hard reject at tenant quota", func(t *testing.T) {
		cfg := push.DefaultConfig()
		cfg.MaxPerTenant = 2
		m, _ := newManager(cfg)
		require.True(t, m.AddConnection("butcher-1", "u1", &fakeTransport{}))
		require.True(t, m.AddConnection("butcher-1", "u2", &fakeTransport{}))

		rejected := &fakeTransport{}
		assert.False(t, m.AddConnection("butcher-1", "u3", rejected))
		assert.Equal(t, 2, m.ConnectionCount("butcher-1"))

		assert.True(t, m.AddConnection("butcher-2", "u3", &fakeTransport{}), "other tenants are unaffected")
	})

	t.Run("should let a user at quota rotate even when tenant is full", func(t *testing.T) {
		cfg := push.DefaultConfig()
		cfg.MaxPerUser = 1
		cfg.MaxPerTenant = 2
		m, _ := newManager(cfg)
		require.True(t, m.AddConnection("butcher-1", "u1", &fakeTransport{}))
		require.True(t, m.AddConnection("butcher-1", "u2", &fakeTransport{}))

		assert.True(t, m.AddConnection("butcher-1", "u1", &fakeTransport{}))
		assert.Equal(t, 2, m.ConnectionCount("butcher-1"))
	})

	t.Run("should fail when user quota is zero", func(t *testing.T) {
		cfg := push.DefaultConfig()
		cfg.MaxPerUser = 0
		m, _ := newManager(cfg)

		assert.False(t, m.AddConnection("butcher-1", "u1", &fakeTransport{}))
		assert.Zero(t, m.ConnectionCount("butcher-1"))
	})
}

func TestManager_RemoveConnection(t *testing.T) {
	m, _ := newManager(push.DefaultConfig())
	a, b := &fakeTransport{}, &fakeTransport{}
	m.AddConnection("butcher-1", "u1", a)
	m.AddConnection("butcher-1", "u1", b)

	m.RemoveConnection("butcher-1", "u1", a)
	assert.Equal(t, 1, m.UserConnectionCount("butcher-1", "u1"))
	assert.True(t, a.isClosed())

	m.RemoveConnection("butcher-1", "u1", b)
	m.RemoveConnection("butcher-1", "u1", b)
	assert.Zero(t, m.ConnectionCount("butcher-1"))
}

func TestManager_Broadcast(t *testing.T) {
	t.Run("should deliver the envelope to every tenant connection", func(t *testing.T) {
		m, _ := newManager(push.DefaultConfig())
		a, b, foreign := &fakeTransport{}, &fakeTransport{}, &fakeTransport{}
		m.AddConnection("butcher-1", "u1", a)
		m.AddConnection("butcher-1", "u2", b)
		m.AddConnection("butcher-2", "u1", foreign)

		delivered := m.Broadcast(context.Background(), "butcher-1", testEvent(t))

		assert.Equal(t, 2, delivered)
		require.Len(t, a.messages(), 1)
		require.Len(t, b.messages(), 1)
		assert.Empty(t, foreign.messages())

		var envelope map[string]any
		require.NoError(t, json.Unmarshal(a.messages()[0], &envelope))
		assert.Equal(t, "new-order", envelope["type"])
		assert.Contains(t, envelope, "order")
		assert.Contains(t, envelope, "timestamp")
	})

	t.Run("should remove transports whose write fails", func(t *testing.T) {
		m, _ := newManager(push.DefaultConfig())
		healthy := &fakeTransport{}
		broken := &fakeTransport{sendErr: errors.New("broken pipe")}
		m.AddConnection("butcher-1", "u1", healthy)
		m.AddConnection("butcher-1", "u2", broken)

		delivered := m.Broadcast(context.Background(), "butcher-1", testEvent(t))

		assert.Equal(t, 1, delivered)
		assert.Equal(t, 1, m.ConnectionCount("butcher-1"))
		assert.Zero(t, m.UserConnectionCount("butcher-1", "u2"))
		assert.True(t, broken.isClosed())
	})

	t.Run("should deliver after the caller's context is cancelled", func(t *testing.T) {
		m, _ := newManager(push.DefaultConfig())
		terminal := &fakeTransport{}
		m.AddConnection("butcher-1", "u1", terminal)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		assert.Equal(t, 1, m.Broadcast(ctx, "butcher-1", testEvent(t)))
		assert.Len(t, terminal.messages(), 1)
	})

	t.Run("should deliver nothing to a tenant without connections", func(t *testing.T) {
		m, _ := newManager(push.DefaultConfig())
		assert.Zero(t, m.Broadcast(context.Background(), "butcher-1", testEvent(t)))
	})
}

func TestManager_SweepStale(t *testing.T) {
	m, clock := newManager(push.DefaultConfig())
	old := &fakeTransport{}
	m.AddConnection("butcher-1", "u1", old)
	clock.Advance(50 * time.Minute)
	young := &fakeTransport{}
	m.AddConnection("butcher-2", "u1", young)
	clock.Advance(11 * time.Minute)

	swept := m.SweepStale(time.Hour)

	assert.Equal(t, 1, swept)
	assert.True(t, old.isClosed())
	assert.False(t, young.isClosed())
	assert.Zero(t, m.ConnectionCount("butcher-1"))
	assert.Equal(t, 1, m.ConnectionCount("butcher-2"))
}

func TestManager_CloseAll(t *testing.T) {
	m, _ := newManager(push.DefaultConfig())
	a, b := &fakeTransport{}, &fakeTransport{}
	m.AddConnection("butcher-1", "u1", a)
	m.AddConnection("butcher-2", "u2", b)

	assert.Equal(t, 2, m.CloseAll())

	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.Zero(t, m.ConnectionCount("butcher-1"))
	assert.Zero(t, m.ConnectionCount("butcher-2"))
}
