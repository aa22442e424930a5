package session

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flexigpt/turnblock-go/spec"
)

const (
	DefaultTTL         = 24 * time.Hour
	DefaultMaxSessions = 4096
)

type StoreConfig struct {
	TTL         time.Duration
	MaxSessions int

	Dispatcher spec.Dispatcher
	Logger     *slog.Logger
}

// Store keeps sessions in LRU order and evicts them after TTL of disuse or
// when there are more than MaxSessions. A session with a turn awaiting the
// user does not expire. An evicted session is closed, which releases any
// caller still waiting on one of its turns.
type Store struct {
	mu sync.Mutex

	ttl         time.Duration
	maxSessions int

	lru *list.List                       // front=MRU
	m   map[spec.SessionID]*list.Element // id -> element(Value=*item)

	cfg StoreConfig
	now func() time.Time
}

type item struct {
	s        *Session
	lastUsed time.Time
}

func NewStore(cfg StoreConfig) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxS := cfg.MaxSessions
	if maxS <= 0 {
		maxS = DefaultMaxSessions
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{
		ttl:         ttl,
		maxSessions: maxS,
		lru:         list.New(),
		m:           map[spec.SessionID]*list.Element{},
		cfg:         cfg,
		now:         time.Now,
	}
}

// NewSession creates a session bound to presenter.
func (st *Store) NewSession(ctx context.Context, presenter spec.Presenter) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if presenter == nil {
		return nil, spec.ErrNoPresenter
	}
	if st.cfg.Dispatcher == nil {
		return nil, fmt.Errorf("%w: store has no dispatcher", spec.ErrInvalidArgument)
	}

	id := spec.SessionID(uuid.Must(uuid.NewV7()).String())
	s, err := newSession(SessionConfig{
		ID:         id,
		Presenter:  presenter,
		Dispatcher: st.cfg.Dispatcher,
		Logger:     st.cfg.Logger,
		Touch:      func() { st.touch(id) },
	})
	if err != nil {
		return nil, err
	}

	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictExpiredLocked(now)
	e := st.lru.PushFront(&item{s: s, lastUsed: now})
	st.m[id] = e
	st.evictOverLimitLocked()

	return s, nil
}

func (st *Store) Get(id spec.SessionID) (*Session, bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.evictExpiredLocked(now)

	e := st.m[id]
	if e == nil {
		return nil, false
	}
	it, _ := e.Value.(*item)
	if it == nil || it.s == nil || it.s.closed.Load() {
		st.deleteElemLocked(e)
		return nil, false
	}

	it.lastUsed = now
	st.lru.MoveToFront(e)
	return it.s, true
}

// Delete closes and removes a session. It reports whether it existed.
func (st *Store) Delete(id spec.SessionID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if e := st.m[id]; e != nil {
		st.deleteElemLocked(e)
		return true
	}
	return false
}

// CloseAll closes every session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	defer st.mu.Unlock()

	for e := st.lru.Front(); e != nil; {
		next := e.Next()
		st.deleteElemLocked(e)
		e = next
	}
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Len()
}

func (st *Store) evictExpiredLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for e := st.lru.Back(); e != nil; {
		prev := e.Prev()
		it, ok := e.Value.(*item)
		if !ok || it == nil || it.s == nil {
			st.deleteElemLocked(e)
			e = prev
			continue
		}
		if now.Sub(it.lastUsed) <= st.ttl {
			break
		}
		if it.s.waiting() {
			// Turns have no timeout; the session lives until it is answered.
			it.lastUsed = now
			st.lru.MoveToFront(e)
			e = prev
			continue
		}
		st.cfg.Logger.Debug("session expired", "session", it.s.id)
		st.deleteElemLocked(e)
		e = prev
	}
}

func (st *Store) evictOverLimitLocked() {
	if st.maxSessions <= 0 {
		return
	}
	for st.lru.Len() > st.maxSessions {
		e := st.lru.Back()
		if e == nil {
			return
		}
		st.deleteElemLocked(e)
	}
}

func (st *Store) deleteElemLocked(e *list.Element) {
	it, _ := e.Value.(*item)
	if it != nil && it.s != nil {
		delete(st.m, it.s.id)
		it.s.close()
	}
	st.lru.Remove(e)
}

// touch updates lastUsed and MRU position for an existing session.
// Safe to call frequently; does not allocate.
func (st *Store) touch(id spec.SessionID) {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictExpiredLocked(now)

	e := st.m[id]
	if e == nil {
		return
	}
	it, _ := e.Value.(*item)
	if it == nil || it.s == nil || it.s.closed.Load() {
		st.deleteElemLocked(e)
		return
	}
	it.lastUsed = now
	st.lru.MoveToFront(e)
}
