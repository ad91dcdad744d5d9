package customers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

// InMemoryRepo is a process-local Repo for development and tests.
type InMemoryRepo struct {
	mu        sync.RWMutex
	byID      map[string]*Customer
	bySubject map[string]string // subject -> customer id
	nowTime   func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		byID:      make(map[string]*Customer),
		bySubject: make(map[string]string),
		nowTime:   time.Now,
	}
}

func (r *InMemoryRepo) GetBySubject(_ context.Context, subject string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySubject[subject]
	if !ok {
		return nil, errors.ErrCustomerNotFound
	}
	return copyCustomer(r.byID[id]), nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.byID[id]
	if !ok {
		return nil, errors.ErrCustomerNotFound
	}
	return copyCustomer(customer), nil
}

// CreateIfAbsent inserts under the write lock, so the subject check and the
// insert are one atomic step.
func (r *InMemoryRepo) CreateIfAbsent(_ context.Context, customer *Customer) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.bySubject[customer.Subject]; ok {
		return copyCustomer(r.byID[id]), nil
	}

	stored := copyCustomer(customer)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.nowTime()
	}

	r.byID[stored.ID] = stored
	r.bySubject[stored.Subject] = stored.ID
	return copyCustomer(stored), nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, customer *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == "" {
		return errors.Wrapf(errors.ErrInternal, "[InMemoryRepo.Upsert] customer id is required")
	}

	stored := copyCustomer(customer)
	if existing, ok := r.byID[stored.ID]; ok && existing.Subject != stored.Subject {
		delete(r.bySubject, existing.Subject)
	}
	r.byID[stored.ID] = stored
	r.bySubject[stored.Subject] = stored.ID
	return nil
}

func (r *InMemoryRepo) List(_ context.Context, offset, limit int) ([]*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Customer, 0, len(r.byID))
	for _, customer := range r.byID {
		all = append(all, copyCustomer(customer))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return []*Customer{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.byID[id]
	if !ok {
		return errors.ErrCustomerNotFound
	}
	delete(r.bySubject, customer.Subject)
	delete(r.byID, id)
	return nil
}

func copyCustomer(c *Customer) *Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
