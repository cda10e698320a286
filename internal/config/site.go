package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
)

// Site is the optional YAML site file:
//
//	default_enabled: true
//	flags:
//	  qtype_calculated: true
//	  qtype_calculatedsimple: false
//	policies:
//	  qtype_calculatedsimple: follow+flag
type Site struct {
	DefaultEnabled *bool             `yaml:"default_enabled,omitempty"`
	Flags          map[string]bool   `yaml:"flags,omitempty"`
	Policies       map[string]string `yaml:"policies,omitempty"`
}

// LoadSite reads path. An empty path yields an empty Site.
func LoadSite(path string) (Site, error) {
	if path == "" {
		return Site{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Site{}, fmt.Errorf("site file: %w", err)
	}
	return ParseSite(b)
}

func ParseSite(b []byte) (Site, error) {
	var s Site
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Site{}, fmt.Errorf("site file: %w", err)
	}
	if _, err := s.ParsedPolicies(); err != nil {
		return Site{}, err
	}
	return s, nil
}

// ParsedPolicies validates and converts the policy names.
func (s Site) ParsedPolicies() (map[string]enable.Policy, error) {
	out := make(map[string]enable.Policy, len(s.Policies))
	for typ, name := range s.Policies {
		p, err := enable.ParsePolicy(name)
		if err != nil {
			return nil, fmt.Errorf("site file: policy for %s: %w", typ, err)
		}
		out[typ] = p
	}
	return out, nil
}
