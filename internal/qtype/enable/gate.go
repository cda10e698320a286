// Package enable decides whether a question type handler is active for the
// site. Each handler owns a Gate; gates may consult site flags held in a
// Source (static config, SQL, redis).
package enable

import (
	"context"
	"fmt"
	"strings"
)

// Gate reports whether something is enabled. Implementations may block on a
// remote source; they must not retry.
type Gate interface {
	Enabled(ctx context.Context) (bool, error)
}

// GateFunc adapts a function to a Gate.
type GateFunc func(ctx context.Context) (bool, error)

func (f GateFunc) Enabled(ctx context.Context) (bool, error) { return f(ctx) }

// Enabler is anything with an enablement check, typically a handler.
type Enabler interface {
	IsEnabled(ctx context.Context) (bool, error)
}

// Always returns a gate with a fixed answer.
func Always(v bool) Gate {
	return GateFunc(func(context.Context) (bool, error) { return v, nil })
}

// Follow mirrors another handler's enablement.
func Follow(e Enabler) Gate {
	return GateFunc(func(ctx context.Context) (bool, error) { return e.IsEnabled(ctx) })
}

// All is enabled only when every gate is. It stops at the first false or error.
func All(gates ...Gate) Gate {
	return GateFunc(func(ctx context.Context) (bool, error) {
		for _, g := range gates {
			on, err := g.Enabled(ctx)
			if err != nil || !on {
				return false, err
			}
		}
		return true, nil
	})
}

// Flag reads Key from Source; Default applies when the source has no entry.
type Flag struct {
	Source  Source
	Key     string
	Default bool
}

func (f Flag) Enabled(ctx context.Context) (bool, error) {
	if f.Source == nil {
		return f.Default, nil
	}
	on, found, err := f.Source.Lookup(ctx, f.Key)
	if err != nil {
		return false, fmt.Errorf("flag %s: %w", f.Key, err)
	}
	if !found {
		return f.Default, nil
	}
	return on, nil
}

// Policy selects how a derived handler decides its enablement.
type Policy string

const (
	PolicyAlways        Policy = "always"      // enabled whenever registered
	PolicyFollow        Policy = "follow"      // same answer as the family handler
	PolicyFlag          Policy = "flag"        // own site flag only
	PolicyFollowAndFlag Policy = "follow+flag" // family enabled and own flag on
)

// ParsePolicy accepts the Policy names, case-insensitively. Empty means PolicyFollowAndFlag.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyFollowAndFlag, nil
	case PolicyAlways, PolicyFollow, PolicyFlag, PolicyFollowAndFlag:
		return p, nil
	default:
		return "", fmt.Errorf("enable: unknown policy %q", s)
	}
}

// ForDerived builds the gate for a handler that derives from family, keyed
// by its own flag.
func ForDerived(p Policy, family Enabler, own Flag) Gate {
	switch p {
	case PolicyAlways:
		return Always(true)
	case PolicyFollow:
		return Follow(family)
	case PolicyFlag:
		return own
	default:
		return All(Follow(family), own)
	}
}
