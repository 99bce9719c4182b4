// Package memory is an in-process Storage backend used by tests and
// ephemeral runs. State is lost on shutdown.
package memory

import (
	"context"
	"sync"

	"github.com/daftari/backend/internal/models"
)

type Store struct {
	mu           sync.RWMutex
	transactions []models.Transaction // insertion order, not semantically meaningful
	users        []models.User
	rate         float64
	rateSet      bool
}

func New() *Store {
	return &Store{}
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) UpsertTransaction(_ context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions {
		if t.ID == tx.ID {
			s.transactions[i] = tx
			return nil
		}
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) GetGlobalRate(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.rateSet {
		return models.DefaultUsdRate, nil
	}
	return s.rate, nil
}

func (s *Store) SetGlobalRate(_ context.Context, rate float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rate = rate
	s.rateSet = true
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return models.ErrUsernameTaken
		}
	}
	s.users = append(s.users, user)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *Store) Snapshot(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.Snapshot{
		Transactions:  make([]models.Transaction, len(s.transactions)),
		Users:         make([]models.User, len(s.users)),
		GlobalUsdRate: s.rate,
	}
	if !s.rateSet {
		snap.GlobalUsdRate = models.DefaultUsdRate
	}
	copy(snap.Transactions, s.transactions)
	copy(snap.Users, s.users)
	return snap, nil
}

func (s *Store) Replace(_ context.Context, snap *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions := make([]models.Transaction, len(snap.Transactions))
	copy(transactions, snap.Transactions)
	users := make([]models.User, len(snap.Users))
	copy(users, snap.Users)

	s.transactions = transactions
	s.users = users
	s.rate = snap.GlobalUsdRate
	s.rateSet = true
	return nil
}

func (s *Store) Close() error {
	return nil
}
