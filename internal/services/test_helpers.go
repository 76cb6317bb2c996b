package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BradenHooton/credguard/internal/models"
	"github.com/google/uuid"
)

// MemoryAccountStore is an in-process AccountStore for testing. UpdateAtomic
// holds the store lock for the whole mutation.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	byEmail  map[string]string

	// Writes counts committed UpdateAtomic calls.
	Writes int
	// FailUpdates makes UpdateAtomic fail with a storage error.
	FailUpdates bool
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]*models.Account),
		byEmail:  make(map[string]string),
	}
}

func (s *MemoryAccountStore) Create(ctx context.Context, acc *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[acc.Email]; ok {
		return nil, models.ErrConflict
	}
	c := acc.Clone()
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	c.FailedLoginAttempts = 0
	c.LockUntil = nil
	c.LastLoginAttemptAt = nil

	s.accounts[c.ID] = c
	s.byEmail[c.Email] = c.ID
	return c.Clone(), nil
}

func (s *MemoryAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return acc.Clone(), nil
}

func (s *MemoryAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *MemoryAccountStore) UpdateAtomic(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpdates {
		return nil, models.ErrStorage
	}
	acc, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	working := acc.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	s.accounts[id] = working
	s.Writes++
	return working.Clone(), nil
}

// Snapshot returns the stored state of id, or nil.
func (s *MemoryAccountStore) Snapshot(id string) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.accounts[id]; ok {
		return acc.Clone()
	}
	return nil
}

// MemoryLoginEventStore is an in-process LoginEventStore for testing.
type MemoryLoginEventStore struct {
	mu     sync.Mutex
	events []*models.LoginEvent
}

func (s *MemoryLoginEventStore) Append(ctx context.Context, ev *models.LoginEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *ev
	s.events = append(s.events, &c)
	return nil
}

func (s *MemoryLoginEventStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.LoginEvent
	for _, ev := range s.events {
		if ev.AccountID == accountID {
			c := *ev
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored events.
func (s *MemoryLoginEventStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// MockLoginEventStore implements LoginEventStore for testing
type MockLoginEventStore struct {
	AppendFunc        func(ctx context.Context, ev *models.LoginEvent) error
	ListByAccountFunc func(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error)
}

func (m *MockLoginEventStore) Append(ctx context.Context, ev *models.LoginEvent) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, ev)
	}
	return nil
}

func (m *MockLoginEventStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginEvent, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit)
	}
	return []*models.LoginEvent{}, nil
}

// MockAccountStore implements AccountStore for testing
type MockAccountStore struct {
	CreateFunc       func(ctx context.Context, acc *models.Account) (*models.Account, error)
	GetByIDFunc      func(ctx context.Context, id string) (*models.Account, error)
	FindByEmailFunc  func(ctx context.Context, email string) (*models.Account, error)
	UpdateAtomicFunc func(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error)
}

func (m *MockAccountStore) Create(ctx context.Context, acc *models.Account) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, acc)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAccountStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockAccountStore) UpdateAtomic(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	if m.UpdateAtomicFunc != nil {
		return m.UpdateAtomicFunc(ctx, id, mutate)
	}
	return nil, models.ErrNotFound
}

// FakeClock is a settable time source for testing.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
