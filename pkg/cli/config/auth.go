package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lwalder/veille/pkg/domain/types"
)

// Auth holds the role-scoped caller API keys. A role with no key stays
// disabled.
type Auth struct {
	adminKey    string
	internalKey string
	readonlyKey string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "admin-api-key",
			Usage:       "API key granting the admin role",
			Category:    "Authentication",
			Sources:     cli.EnvVars("ADMIN_API_KEY"),
			Destination: &x.adminKey,
		},
		&cli.StringFlag{
			Name:        "internal-api-key",
			Usage:       "API key granting the internal role",
			Category:    "Authentication",
			Sources:     cli.EnvVars("INTERNAL_API_KEY"),
			Destination: &x.internalKey,
		},
		&cli.StringFlag{
			Name:        "readonly-api-key",
			Usage:       "API key granting the readonly role",
			Category:    "Authentication",
			Sources:     cli.EnvVars("READONLY_API_KEY"),
			Destination: &x.readonlyKey,
		},
	}
}

// Key lengths only; the keys themselves never reach the log output
func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("admin-key.len", len(x.adminKey)),
		slog.Int("internal-key.len", len(x.internalKey)),
		slog.Int("readonly-key.len", len(x.readonlyKey)),
	)
}

// Secrets returns the role-to-key map for the authenticator
func (x *Auth) Secrets() map[types.Role]string {
	return map[types.Role]string{
		types.RoleAdmin:    x.adminKey,
		types.RoleInternal: x.internalKey,
		types.RoleReadonly: x.readonlyKey,
	}
}

// IsConfigured reports whether at least one role has a key
func (x *Auth) IsConfigured() bool {
	return x.adminKey != "" || x.internalKey != "" || x.readonlyKey != ""
}
