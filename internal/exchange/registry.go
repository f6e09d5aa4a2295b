package exchange

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type Factory func(opts Options) (Client, error)

// Registry имя биржи из конфига -> фабрика. Выбор делается один раз при старте.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	r.factories[strings.ToLower(name)] = f
	r.mu.Unlock()
}

func (r *Registry) New(name string, opts Options) (Client, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown exchange %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	c, err := f(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "init %s", name)
	}
	return c, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
