// Package builtin wires the handlers shipped with the service into a registry.
package builtin

import (
	"fmt"

	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/calculated"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/calculatedsimple"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
)

type Options struct {
	// Flags holds the site flags, keyed by question type. nil means every
	// handler falls back to DefaultEnabled.
	Flags enable.Source

	// DefaultEnabled applies to types with no flag entry.
	DefaultEnabled bool

	// Policies overrides how a derived handler decides enablement, keyed by type.
	Policies map[string]enable.Policy
}

// Register adds the calculated family handlers to reg.
func Register(reg *qtype.Registry, opts Options) error {
	calc := calculated.New(enable.Flag{Source: opts.Flags, Key: calculated.Type, Default: opts.DefaultEnabled})

	simpleFlag := enable.Flag{Source: opts.Flags, Key: calculatedsimple.Type, Default: opts.DefaultEnabled}
	simple := calculatedsimple.New(calc, enable.ForDerived(opts.policy(calculatedsimple.Type), calc, simpleFlag))

	for _, h := range []qtype.Handler{calc, simple} {
		if err := reg.Register(h); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}

func (o Options) policy(typ string) enable.Policy {
	if p, ok := o.Policies[typ]; ok && p != "" {
		return p
	}
	return enable.PolicyFollowAndFlag
}
