package qtype

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrDuplicateType = errors.New("qtype: type already registered")
	ErrUnknownType   = errors.New("qtype: no handler for type")
	ErrEmptyType     = errors.New("qtype: handler type is empty")
)

// Registry maps question type names to handlers. Lookups are exact match.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds h under h.Type(). A second handler for the same type is
// rejected; the first registration stays in place.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return errors.New("qtype: nil handler")
	}
	typ := h.Type()
	if strings.TrimSpace(typ) == "" {
		return ErrEmptyType
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[typ]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, typ)
	}
	r.handlers[typ] = h
	return nil
}

// MustRegister is Register for start-up wiring, where a clash is a programming error.
func (r *Registry) MustRegister(h Handler) {
	if err := r.Register(h); err != nil {
		panic(err)
	}
}

// Lookup returns the handler registered for typ.
func (r *Registry) Lookup(typ string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typ]
	return h, ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
