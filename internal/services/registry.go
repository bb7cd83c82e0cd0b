package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ruralpay/investflow/internal/models"
)

// Registry holds the live sessions keyed by session id.
type Registry struct {
	deps Deps

	mu   sync.RWMutex
	apps map[string]*App
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, apps: make(map[string]*App)}
}

// Create starts a session on the demo wallet.
func (r *Registry) Create(ctx context.Context) (*App, error) {
	return r.CreateWith(ctx, DefaultSession())
}

func (r *Registry) CreateWith(ctx context.Context, initial models.Session) (*App, error) {
	app, err := NewApp(ctx, uuid.New().String(), initial, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = app
	return app, nil
}

func (r *Registry) Get(id string) (*App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return app, nil
}

// Delete tears the session down.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	app, ok := r.apps[id]
	delete(r.apps, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	app.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// CloseAll tears every session down.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	apps := r.apps
	r.apps = make(map[string]*App)
	r.mu.Unlock()

	for _, app := range apps {
		app.Close()
	}
}
