// Package account manages user accounts and session tokens.
package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/swotlab/swotlab/internal/store"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	MinPasswordLength = 8
	// bcrypt only accepts passwords up to 72 bytes.
	MaxPasswordLength = 72
)

var (
	ErrInvalidEmail       = errors.New("email is required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExpiresAt is CreatedAt plus ttl.
func (s Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

type Option func(*Service)

// WithSessionTTL sets how long a session stays valid after login.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service keeps the users and sessions collections resident and writes each
// collection back whole after every change. Write failures are logged only.
type Service struct {
	mu       sync.Mutex
	users    []User
	sessions map[string]Session

	store    store.Store
	ttl      time.Duration
	hashCost int
	now      func() time.Time
	logger   zerolog.Logger
}

// Load reads users and sessions from st. Unreadable collections start empty.
func Load(ctx context.Context, st store.Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		sessions: map[string]Session{},
		store:    st,
		ttl:      DefaultSessionTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		logger:   logger.With().Str("component", "account").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := st.Load(ctx, store.Users, &s.users); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load users, starting empty")
		s.users = nil
	}
	if _, err := st.Load(ctx, store.Sessions, &s.sessions); err != nil || s.sessions == nil {
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to load sessions, starting empty")
		}
		s.sessions = map[string]Session{}
	}
	return s
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	if s.findByEmail(email) != nil {
		s.mu.Unlock()
		return nil, ErrEmailTaken
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	s.users = append(s.users, user)
	snapshot := append([]User(nil), s.users...)
	s.mu.Unlock()

	s.persist(ctx, store.Users, snapshot)
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &user, nil
}

// Login checks the password and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	s.mu.Lock()
	user := s.findByEmail(normalizeEmail(email))
	var hash, userID string
	if user != nil {
		hash, userID = user.PasswordHash, user.ID
	}
	s.mu.Unlock()

	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	session := Session{Token: token, UserID: userID, CreatedAt: s.now().UTC()}

	s.mu.Lock()
	s.sessions[token] = session
	snapshot := s.sessionsSnapshot()
	s.mu.Unlock()

	s.persist(ctx, store.Sessions, snapshot)
	return &session, nil
}

// Authenticate resolves a session token. Expired sessions are removed and
// reported as unauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, bool) {
	if token == "" {
		return nil, false
	}

	s.mu.Lock()
	session, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	if !s.now().Before(session.ExpiresAt(s.ttl)) {
		delete(s.sessions, token)
		snapshot := s.sessionsSnapshot()
		s.mu.Unlock()

		s.persist(ctx, store.Sessions, snapshot)
		return nil, false
	}
	user := s.findByID(session.UserID)
	s.mu.Unlock()

	if user == nil {
		return nil, false
	}
	return user, true
}

// Logout drops the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) {
	s.mu.Lock()
	if _, ok := s.sessions[token]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, token)
	snapshot := s.sessionsSnapshot()
	s.mu.Unlock()

	s.persist(ctx, store.Sessions, snapshot)
}

// PurgeExpired removes every expired session and returns how many were dropped.
func (s *Service) PurgeExpired(ctx context.Context) int {
	s.mu.Lock()
	now := s.now()
	purged := 0
	for token, session := range s.sessions {
		if !now.Before(session.ExpiresAt(s.ttl)) {
			delete(s.sessions, token)
			purged++
		}
	}
	snapshot := s.sessionsSnapshot()
	s.mu.Unlock()

	if purged > 0 {
		s.persist(ctx, store.Sessions, snapshot)
	}
	return purged
}

func (s *Service) UserByEmail(email string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findByEmail(normalizeEmail(email))
	return u, u != nil
}

// Users returns all accounts ordered by creation time.
func (s *Service) Users() []User {
	s.mu.Lock()
	out := append([]User(nil), s.users...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// findByEmail and findByID return copies; callers hold s.mu.
func (s *Service) findByEmail(email string) *User {
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u
		}
	}
	return nil
}

func (s *Service) findByID(id string) *User {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u
		}
	}
	return nil
}

func (s *Service) sessionsSnapshot() map[string]Session {
	out := make(map[string]Session, len(s.sessions))
	for k, v := range s.sessions {
		out[k] = v
	}
	return out
}

func (s *Service) persist(ctx context.Context, c store.Collection, value any) {
	if err := s.store.Save(ctx, c, value); err != nil {
		s.logger.Error().Err(err).Str("collection", string(c)).Msg("failed to persist")
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
