package sharedports

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

type InMemoryRepo struct {
	mu    sync.RWMutex
	ports map[string]*SharedPort
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{ports: make(map[string]*SharedPort)}
}

func (r *InMemoryRepo) Get(_ context.Context, id string) (*SharedPort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	port, ok := r.ports[id]
	if !ok {
		return nil, errors.ErrSharedPortNotFound
	}
	clone := *port
	return &clone, nil
}

func (r *InMemoryRepo) ListByProject(_ context.Context, projectID string) ([]*SharedPort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []*SharedPort{}
	for _, port := range r.ports {
		if port.ProjectID == projectID {
			clone := *port
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, port *SharedPort) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *port
	if stored.ID == "" {
		stored.ID = uuid.New().String()
		port.ID = stored.ID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
		port.CreatedAt = stored.CreatedAt
	}
	r.ports[stored.ID] = &stored
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ports[id]; !ok {
		return errors.ErrSharedPortNotFound
	}
	delete(r.ports, id)
	return nil
}
