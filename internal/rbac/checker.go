package rbac

import (
	"context"
	"strings"
)

// grants is one role's permissions split into exact names and "prefix*" patterns.
type grants struct {
	all      bool
	exact    map[string]struct{}
	prefixes []string
}

// Checker answers permission questions for roles carried in service tokens.
type Checker struct {
	roles map[string]grants
}

// NewChecker compiles rp; nil means RolePermissions.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	c := &Checker{roles: make(map[string]grants, len(rp))}
	for role, perms := range rp {
		g := grants{exact: map[string]struct{}{}}
		for _, p := range perms {
			switch {
			case p == "*":
				g.all = true
			case strings.HasSuffix(p, "*"):
				g.prefixes = append(g.prefixes, strings.TrimSuffix(p, "*"))
			default:
				g.exact[p] = struct{}{}
			}
		}
		c.roles[role] = g
	}
	return c
}

func (c *Checker) Has(role, perm string) bool {
	g, ok := c.roles[role]
	if !ok {
		return false
	}
	if g.all {
		return true
	}
	if _, ok := g.exact[perm]; ok {
		return true
	}
	for _, p := range g.prefixes {
		if strings.HasPrefix(perm, p) {
			return true
		}
	}
	return false
}

// Any reports whether role holds at least one of perms.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns "" when the request carried no token.
func RoleFromContext(ctx context.Context) string {
	r, _ := ctx.Value(roleKey{}).(string)
	return r
}
