package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"agribot/internal/models"
)

const stripeCount = 64

// MemoryStore is the in-process store used when no Redis is configured.
// Sessions are sharded across stripes so unrelated sessions never contend on
// one lock.
type MemoryStore struct {
	capacity int
	ttl      time.Duration
	stripes  [stripeCount]stripe
	now      func() time.Time
}

type stripe struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *models.SessionContext
	touched time.Time
}

// NewMemoryStore builds an in-memory store. capacity <= 0 falls back to
// DefaultCapacity; ttl <= 0 disables expiry.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &MemoryStore{capacity: capacity, ttl: ttl, now: time.Now}
	for i := range s.stripes {
		s.stripes[i].sessions = make(map[string]*entry)
	}
	return s
}

func (s *MemoryStore) stripeFor(id string) *stripe {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.stripes[h.Sum32()%stripeCount]
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.SessionContext, error) {
	st := s.stripeFor(id)
	st.mu.Lock()
	defer st.mu.Unlock()

	e := st.sessions[id]
	if e == nil || s.expired(e) {
		delete(st.sessions, id)
		return emptyContext(id), nil
	}
	return cloneSession(e.session), nil
}

func (s *MemoryStore) Append(_ context.Context, id string, exchange models.Exchange) error {
	st := s.stripeFor(id)
	st.mu.Lock()
	defer st.mu.Unlock()

	e := s.liveEntry(st, id)
	// Most recent first; the oldest tail entry falls off at capacity.
	exchanges := append([]models.Exchange{exchange}, e.session.Exchanges...)
	if len(exchanges) > s.capacity {
		exchanges = exchanges[:s.capacity]
	}
	e.session.Exchanges = exchanges
	e.touched = s.now()
	return nil
}

func (s *MemoryStore) SetContext(_ context.Context, id string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	st := s.stripeFor(id)
	st.mu.Lock()
	defer st.mu.Unlock()

	e := s.liveEntry(st, id)
	for k, v := range values {
		e.session.Context[k] = v
	}
	e.touched = s.now()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	st := s.stripeFor(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// liveEntry returns the session entry for id, replacing expired or missing
// ones. Caller holds the stripe lock.
func (s *MemoryStore) liveEntry(st *stripe, id string) *entry {
	e := st.sessions[id]
	if e == nil || s.expired(e) {
		e = &entry{session: emptyContext(id), touched: s.now()}
		st.sessions[id] = e
	}
	return e
}

func (s *MemoryStore) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.touched) > s.ttl
}

func cloneSession(in *models.SessionContext) *models.SessionContext {
	out := &models.SessionContext{
		SessionID: in.SessionID,
		CreatedAt: in.CreatedAt,
		Exchanges: append([]models.Exchange{}, in.Exchanges...),
		Context:   make(map[string]string, len(in.Context)),
	}
	for k, v := range in.Context {
		out.Context[k] = v
	}
	return out
}
