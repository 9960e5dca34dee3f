package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nicawallet/wallet-api/models"
)

// MemoryStore is an in-memory Store for development (DATA_BACKEND=memory) and
// tests. Transactions are partitioned per user, mirroring the
// users/{id}/transactions layout of the production store.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User    // by id
	sessions     map[string]*models.Session // by refresh token
	transactions map[string][]models.Transaction
	lastCreated  map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		sessions:     make(map[string]*models.Session),
		transactions: make(map[string][]models.Transaction),
		lastCreated:  make(map[string]time.Time),
	}
}

// --- Users ---

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}

	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = user.Name
	existing.PasswordHash = user.PasswordHash
	existing.TOTPSecret = user.TOTPSecret
	existing.TOTPEnabled = user.TOTPEnabled
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.transactions, id)
	delete(s.lastCreated, id)
	for token, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- Sessions ---

func (s *MemoryStore) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.ID = uuid.New().String()
	session.CreatedAt = time.Now()
	clone := *session
	s.sessions[session.RefreshToken] = &clone
	return nil
}

func (s *MemoryStore) GetSessionByToken(_ context.Context, refreshToken string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[refreshToken]
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *MemoryStore) DeleteUserSessions(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *MemoryStore) PurgeExpiredSessions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	now := time.Now()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}

// --- Transactions ---

func (s *MemoryStore) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.New().String()

	// Server-assigned timestamp, non-decreasing per user even if the wall
	// clock steps backwards.
	now := time.Now()
	if last, ok := s.lastCreated[tx.UserID]; ok && !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	s.lastCreated[tx.UserID] = now
	tx.CreatedAt = now

	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], *tx)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]models.Transaction, len(s.transactions[userID]))
	copy(txs, s.transactions[userID])
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only the session owner's partition is ever searched, so a foreign id
	// cannot match anything.
	txs := s.transactions[userID]
	for i, tx := range txs {
		if tx.ID == id {
			s.transactions[userID] = append(txs[:i], txs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) Close() error {
	return nil
}
