package enable

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Source holds site-level flags keyed by question type.
type Source interface {
	// Lookup returns found=false when the source has no entry for key.
	Lookup(ctx context.Context, key string) (enabled, found bool, err error)
}

// Writer is a Source that can also be updated.
type Writer interface {
	Source
	Set(ctx context.Context, key string, enabled bool) error
}

// StaticSource serves flags from memory, usually loaded from the site file.
type StaticSource struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewStaticSource(flags map[string]bool) *StaticSource {
	cp := make(map[string]bool, len(flags))
	for k, v := range flags {
		cp[k] = v
	}
	return &StaticSource{flags: cp}
}

func (s *StaticSource) Lookup(_ context.Context, key string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.flags[key]
	return v, ok, nil
}

func (s *StaticSource) Set(_ context.Context, key string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = enabled
	return nil
}

// parseFlag reads the textual forms flags are stored as.
func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// ErrReadOnly is returned when writing through a source that cannot be updated.
var ErrReadOnly = errors.New("enable: source is read-only")
