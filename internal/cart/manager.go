package cart

import (
	"context"
	"sync"
	"time"

	"github.com/emberlane/storefront-backend/internal/checkout"
	"github.com/emberlane/storefront-backend/pkg/logger"
	"github.com/emberlane/storefront-backend/pkg/metrics"
	"github.com/emberlane/storefront-backend/pkg/money"
)

// IDStoreFactory builds the persistence port for one session's cart id.
type IDStoreFactory func(sessionID string) IDStore

// ManagerConfig carries the constants shared by every session store.
type ManagerConfig struct {
	FreeShippingThreshold money.Amount
	CoalesceWindow        time.Duration
	IdleEviction          time.Duration
	Rewriter              checkout.Rewriter
}

// Manager hands out one Store per storefront session. Stores are created
// lazily on first access, hydrated once from the persisted cart id, and
// evicted after sitting idle; the authoritative cart lives remotely, so
// eviction loses nothing but warm state.
type Manager struct {
	gw      Gateway
	ids     IDStoreFactory
	log     *logger.Logger
	met     *metrics.StoreMetrics
	cfg     ManagerConfig
	mu      sync.Mutex
	stores  map[string]*Store
	hydrate sync.Map // sessionID -> *sync.Once
}

func NewManager(gw Gateway, ids IDStoreFactory, log *logger.Logger, met *metrics.StoreMetrics, cfg ManagerConfig) *Manager {
	return &Manager{
		gw:     gw,
		ids:    ids,
		log:    log,
		met:    met,
		cfg:    cfg,
		stores: make(map[string]*Store),
	}
}

// ForSession returns the session's store, hydrating it on first use. A
// hydration failure is logged and leaves an empty store; the next mutation
// will rebuild remote state anyway.
func (m *Manager) ForSession(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = NewStore(m.gw, m.ids(sessionID), m.log, m.met, Config{
			SessionID:             sessionID,
			FreeShippingThreshold: m.cfg.FreeShippingThreshold,
			CoalesceWindow:        m.cfg.CoalesceWindow,
			Rewriter:              m.cfg.Rewriter,
		})
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	onceVal, _ := m.hydrate.LoadOrStore(sessionID, &sync.Once{})
	onceVal.(*sync.Once).Do(func() {
		if err := store.Hydrate(ctx); err != nil {
			m.log.Error(m.log.WithSessionID(ctx, sessionID), "cart hydration failed", err)
		}
	})
	return store
}

// PruneIdle drops stores untouched for longer than the idle eviction window.
// Returns the number evicted.
func (m *Manager) PruneIdle(now time.Time) int {
	if m.cfg.IdleEviction <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleEviction)

	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for sessionID, store := range m.stores {
		if store.LastUsed().Before(cutoff) {
			delete(m.stores, sessionID)
			m.hydrate.Delete(sessionID)
			evicted++
		}
	}
	return evicted
}

// Run prunes idle stores until ctx is done. Intended for a background
// goroutine started at boot.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.IdleEviction
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.PruneIdle(now); n > 0 {
				m.log.Info(m.log.WithField(ctx, "evicted", n), "pruned idle cart stores")
			}
		}
	}
}
