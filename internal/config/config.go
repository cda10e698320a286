package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// FlagSource selects where site-level handler flags are read from.
type FlagSource string

const (
	FlagsStatic FlagSource = "static" // site file only
	FlagsSQL    FlagSource = "sql"
	FlagsRedis  FlagSource = "redis"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	Debug    bool

	DBDriver string
	DBDSN    string

	FlagSource     FlagSource
	FlagCacheTTL   time.Duration
	DefaultEnabled bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string

	// SiteFile is an optional YAML file with static flags and policies.
	SiteFile string

	EvalConcurrency int

	EnableLocalAuth bool
	AuthSecret      string
	AdminUser       string
	AdminPassHash   string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),
		Debug:    envBool("DEBUG", false),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		FlagSource:     FlagSource(envOr("FLAG_SOURCE", string(FlagsSQL))),
		FlagCacheTTL:   envDuration("FLAG_CACHE_TTL", 30*time.Second),
		DefaultEnabled: envBool("QTYPE_DEFAULT_ENABLED", true),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		RedisPrefix:    envOr("REDIS_PREFIX", "qtype:enabled:"),

		SiteFile: os.Getenv("QTYPE_SITE_FILE"),

		EvalConcurrency: envInt("EVAL_CONCURRENCY", 8),

		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),
		AuthSecret:      envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://lms.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),
	}
}

// CORSOrigins returns the allowed origins for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
