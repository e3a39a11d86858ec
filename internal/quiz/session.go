package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUnseen    Status = ""
	StatusPending   Status = "pending"
	StatusCorrect   Status = "correct"
	StatusIncorrect Status = "incorrect"
)

func (s Status) Terminal() bool {
	return s == StatusCorrect || s == StatusIncorrect
}

// Entry is the recorded state of one number within a session.
type Entry struct {
	Status    Status    `json:"status"`
	StudentID int64     `json:"student_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session holds the answered-numbers map of one client.
type Session struct {
	id string

	mu       sync.Mutex
	numbers  map[int]Entry
	lastSeen time.Time
}

func NewSession(id string) *Session {
	return &Session{
		id:       id,
		numbers:  make(map[int]Entry),
		lastSeen: time.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Status(number int) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numbers[number].Status
}

func (s *Session) set(number int, status Status, studentID int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numbers[number] = Entry{Status: status, StudentID: studentID, UpdatedAt: now}
}

// Snapshot returns a copy of the answered-numbers map.
func (s *Session) Snapshot() map[int]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]Entry, len(s.numbers))
	for n, entry := range s.numbers {
		out[n] = entry
	}
	return out
}

// resolvedCount is the number of numbers answered in this session, whoever
// answered them.
func (s *Session) resolvedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, entry := range s.numbers {
		if entry.Status.Terminal() {
			count++
		}
	}
	return count
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionStore keeps sessions in memory. A session that has been idle for
// longer than the TTL is discarded; a TTL <= 0 keeps sessions forever.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (s *SessionStore) NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, creating it on first use or when the old one
// has expired.
func (s *SessionStore) Get(id string) *Session {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if ok && s.expired(sess, now) {
		ok = false
	}
	if !ok {
		sess = NewSession(id)
		s.sessions[id] = sess
	}
	sess.touch(now)
	return sess
}

// Lookup returns the live session for id without creating one.
func (s *SessionStore) Lookup(id string) (*Session, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, now) {
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && sess.idleSince(now) > s.ttl
}
