package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/notfawkes/FitMeat/internal/basket"
	"golang.org/x/sync/singleflight"
)

const (
	// IdleTTL is how long a session basket stays resident without being read
	// or mutated. An expired basket is restored from the snapshot store on the
	// next access, so expiry is not data loss when persistence is configured.
	IdleTTL = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute

	persistTimeout = 5 * time.Second
)

type entry struct {
	basket      *basket.Basket
	lastAccess  time.Time
	unsubscribe func()
}

// persistQueue serializes snapshot writes for one session. Each mutation
// overwrites pending; a single worker drains it, so writes reach the store in
// mutation order and the last write always reflects the newest basket state.
// Without this, a slow Upsert from an earlier mutation could land after the
// Delete issued by Clear and resurrect already-ordered items on restore.
type persistQueue struct {
	mu      sync.Mutex
	pending []basket.LineItem
	dirty   bool
	running bool
}

// Manager owns one Basket per active session. Views never share a global
// basket; they ask the manager for the session's basket and the manager
// handles lifecycle, restore and persistence behind the scenes.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	store SnapshotStore // nil disables persistence, baskets are memory-only
	cache SnapshotCache
	sfg   singleflight.Group // Prevents restore stampede per session

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(store SnapshotStore, cache SnapshotCache) *Manager {
	m := &Manager{
		sessions:    make(map[string]*entry),
		store:       store,
		cache:       cache,
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Basket returns the live basket for the session, restoring it from the
// snapshot store on first access if a snapshot exists.
func (m *Manager) Basket(ctx context.Context, sessionID string) (*basket.Basket, error) {
	m.mu.Lock()
	if e, ok := m.sessions[sessionID]; ok {
		e.lastAccess = time.Now()
		b := e.basket
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()

	// Use singleflight so concurrent first requests for the same session
	// restore exactly once.
	v, err, _ := m.sfg.Do(sessionID, func() (interface{}, error) {
		m.mu.Lock()
		if e, ok := m.sessions[sessionID]; ok {
			e.lastAccess = time.Now()
			b := e.basket
			m.mu.Unlock()
			return b, nil
		}
		m.mu.Unlock()

		b, err := m.restore(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		m.attach(sessionID, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*basket.Basket), nil
}

func (m *Manager) restore(ctx context.Context, sessionID string) (*basket.Basket, error) {
	if m.store == nil {
		return basket.New(), nil
	}

	if m.cache != nil {
		snapshot, err := m.cache.Get(ctx, sessionID)
		if err == nil {
			return basket.Restore(snapshot.Items), nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}
	}

	snapshot, err := m.store.Get(ctx, sessionID)
	if err != nil && errors.Is(err, ErrSnapshotNotFound) {
		return basket.New(), nil
	}
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if errSet := m.cache.Set(cacheCtx, sessionID, snapshot); errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()
	}

	return basket.Restore(snapshot.Items), nil
}

// attach registers the basket under the session and subscribes the
// persistence hook. The hook hands the items to the session's persistQueue so
// basket mutations never block on storage.
func (m *Manager) attach(sessionID string, b *basket.Basket) {
	var unsubscribe func()
	if m.store != nil {
		q := &persistQueue{}
		unsubscribe = b.Subscribe(func(items []basket.LineItem) {
			m.enqueuePersist(sessionID, q, items)
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &entry{
		basket:      b,
		lastAccess:  time.Now(),
		unsubscribe: unsubscribe,
	}
}

// enqueuePersist records the latest basket state and makes sure exactly one
// worker is draining the queue. It runs on the mutating goroutine (under the
// basket's lock), so states are enqueued in mutation order.
func (m *Manager) enqueuePersist(sessionID string, q *persistQueue, items []basket.LineItem) {
	q.mu.Lock()
	q.pending = items
	q.dirty = true
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			q.mu.Lock()
			if !q.dirty {
				q.running = false
				q.mu.Unlock()
				return
			}
			next := q.pending
			q.dirty = false
			q.mu.Unlock()

			m.persist(sessionID, next)
		}
	}()
}

func (m *Manager) persist(sessionID string, items []basket.LineItem) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if len(items) == 0 {
		err := m.store.Delete(ctx, sessionID)
		if err != nil && !errors.Is(err, ErrSnapshotNotFound) {
			log.Printf("snapshot delete error: %v \n", err)
		}
	} else {
		err := m.store.Upsert(ctx, &Snapshot{SessionID: sessionID, Items: items})
		if err != nil {
			log.Printf("snapshot upsert error: %v \n", err)
		}
	}

	if m.cache != nil {
		if err := m.cache.Delete(ctx, sessionID); err != nil {
			log.Printf("cache invalidate error: %v \n", err)
		}
	}
}

// cleanupLoop periodically evicts baskets idle past the TTL
func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireSessions()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) expireSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if time.Since(e.lastAccess) > IdleTTL {
			if e.unsubscribe != nil {
				e.unsubscribe()
			}
			delete(m.sessions, id)
		}
	}
}

// ActiveSessions reports how many baskets are currently resident.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the background cleanup and waits for it and any in-flight
// snapshot writes to finish
func (m *Manager) Close() error {
	close(m.stopCleanup)
	m.wg.Wait()
	return nil
}
