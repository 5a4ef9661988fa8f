package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       *sync.RWMutex
	accounts map[uuid.UUID]Account
	inTx     bool
}

// NewMemoryRepository returns a process-local Repository. Transactions work on a copy of
// the accounts and replace the originals only when the callback succeeds.
//
// Transaction holds the store's write lock for the whole callback, hashing included, so
// all access is serialized while one runs. It is meant for tests, not as a model for a
// shared store.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		mu:       &sync.RWMutex{},
		accounts: make(map[uuid.UUID]Account),
	}
}

func (r *memoryRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *memoryRepository) rlock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *memoryRepository) CreateAccount(_ context.Context, account *Account) error {
	defer r.lock()()

	if _, exists := r.accounts[account.ID]; exists {
		return ErrDuplicateEmail
	}
	if r.findByEmail(account.Email, uuid.Nil) != nil {
		return ErrDuplicateEmail
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	// Store a copy so callers cannot modify the stored record.
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryRepository) GetAccountByID(_ context.Context, id uuid.UUID) (*Account, error) {
	defer r.rlock()()

	account, exists := r.accounts[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (r *memoryRepository) GetAccountByEmail(_ context.Context, email string) (*Account, error) {
	defer r.rlock()()

	account := r.findByEmail(email, uuid.Nil)
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

func (r *memoryRepository) EmailTaken(_ context.Context, email string, exclude uuid.UUID) (bool, error) {
	defer r.rlock()()

	return r.findByEmail(email, exclude) != nil, nil
}

func (r *memoryRepository) SaveAccount(_ context.Context, account *Account) error {
	defer r.lock()()

	if _, exists := r.accounts[account.ID]; !exists {
		return ErrNotFound
	}
	if r.findByEmail(account.Email, account.ID) != nil {
		return ErrDuplicateEmail
	}

	account.UpdatedAt = time.Now()
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryRepository) Transaction(_ context.Context, fn func(repo Repository) error) error {
	defer r.lock()()

	tx := &memoryRepository{
		mu:       r.mu,
		accounts: make(map[uuid.UUID]Account, len(r.accounts)),
		inTx:     true,
	}
	for id, account := range r.accounts {
		tx.accounts[id] = account
	}

	if err := fn(tx); err != nil {
		return err
	}

	r.accounts = tx.accounts
	return nil
}

func (r *memoryRepository) findByEmail(email string, exclude uuid.UUID) *Account {
	for id, account := range r.accounts {
		if account.Email == email && id != exclude {
			return &account
		}
	}
	return nil
}
