package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tunnelmesh/go-tunnel-backend/internal/errors"
)

type InMemoryRepo struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{projects: make(map[string]*Project)}
}

func (r *InMemoryRepo) Get(_ context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, ok := r.projects[id]
	if !ok {
		return nil, errors.ErrProjectNotFound
	}
	clone := *project
	return &clone, nil
}

func (r *InMemoryRepo) ListByCustomer(_ context.Context, customerID string) ([]*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []*Project{}
	for _, project := range r.projects {
		if project.CustomerID == customerID {
			clone := *project
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Before(matches[j].CreatedAt) })
	return matches, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *project
	if stored.ID == "" {
		stored.ID = uuid.New().String()
		project.ID = stored.ID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
		project.CreatedAt = stored.CreatedAt
	}
	r.projects[stored.ID] = &stored
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return errors.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}
