package services

import (
	"sync"
	"sync/atomic"
	"time"

	"indiflow-dashboard-api/models"

	"github.com/google/uuid"
)

// Snapshot is the result of one complete dashboard load.
type Snapshot struct {
	Stats    models.DashboardStats       `json:"stats"`
	Users    []models.User               `json:"-"`
	Training []models.TrainingSubmission `json:"-"`
	LoadedAt time.Time                   `json:"loaded_at"`
}

// Session holds the state of one open developer dashboard. A load replaces
// the snapshot as a whole, so readers never see a partial refresh.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	snapshot Snapshot
	chat     []models.ChatMessage
	lastSeen time.Time

	uploading atomic.Bool
	loading   atomic.Int32
}

func NewSession(now time.Time) *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: now, lastSeen: now}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) Stats() models.DashboardStats {
	return s.Snapshot().Stats
}

func (s *Session) apply(snap Snapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func (s *Session) appendChat(msg models.ChatMessage) {
	s.mu.Lock()
	s.chat = append(s.chat, msg)
	s.mu.Unlock()
}

// ChatHistory returns the conversation in the order it happened.
func (s *Session) ChatHistory() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) beginUpload() bool { return s.uploading.CompareAndSwap(false, true) }
func (s *Session) endUpload()        { s.uploading.Store(false) }
func (s *Session) Uploading() bool   { return s.uploading.Load() }

func (s *Session) beginLoad()    { s.loading.Add(1) }
func (s *Session) endLoad()      { s.loading.Add(-1) }
func (s *Session) Loading() bool { return s.loading.Load() > 0 }

// SessionRegistry tracks the open dashboard sessions by ID.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session), now: time.Now}
}

func (r *SessionRegistry) Open() *Session {
	s := NewSession(r.now())
	r.mu.Lock()
	r.sessions[s.ID] = s
	sessionsOpen.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	return s
}

// Get returns the session and marks it as seen.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

func (r *SessionRegistry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	sessionsOpen.Set(float64(len(r.sessions)))
	return true
}

func (r *SessionRegistry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Prune closes sessions not seen for longer than idle and reports how many
// were removed. A non-positive idle keeps everything.
func (r *SessionRegistry) Prune(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	sessionsOpen.Set(float64(len(r.sessions)))
	return removed
}
