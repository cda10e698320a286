package rbac

// RolePermissions is the default grant table. "engine" tokens belong to the
// question engine calling in for evaluations; "admin" manages handler flags.
var RolePermissions = map[string][]string{
	"engine": {"qtype:view", "qtype:evaluate"},
	"admin":  {"*"},
}
