// Package app builds the shared pieces both binaries start from: logger,
// flag source and the handler dispatcher.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mind-engage/mindengage-qtype/internal/config"
	"github.com/mind-engage/mindengage-qtype/internal/db"
	"github.com/mind-engage/mindengage-qtype/internal/qtype"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/builtin"
	"github.com/mind-engage/mindengage-qtype/internal/qtype/enable"
)

func NewLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// Flags is the configured flag source plus whatever has to be closed with it.
type Flags struct {
	Source enable.Writer
	DB     *sql.DB // set for the sql source
	close  func() error
}

func (f *Flags) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}

// OpenFlags opens the flag source named by cfg. Static flags from the site
// file seed the static source; remote sources are fronted by a TTL cache.
func OpenFlags(ctx context.Context, cfg config.Config, site config.Site) (*Flags, error) {
	switch cfg.FlagSource {
	case config.FlagsStatic, "":
		return &Flags{Source: enable.NewStaticSource(site.Flags)}, nil

	case config.FlagsSQL:
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		src := enable.NewSQLSource(dbh)
		if err := seedFlags(ctx, src, site.Flags); err != nil {
			dbh.Close()
			return nil, err
		}
		return &Flags{Source: enable.NewCached(src, cfg.FlagCacheTTL), DB: dbh, close: dbh.Close}, nil

	case config.FlagsRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		src := enable.NewRedisSource(rdb, cfg.RedisPrefix)
		return &Flags{Source: enable.NewCached(src, cfg.FlagCacheTTL), close: rdb.Close}, nil

	default:
		return nil, fmt.Errorf("unknown flag source %q", cfg.FlagSource)
	}
}

// seedFlags writes the site file flags the store has no entry for yet.
// Entries already in the store win.
func seedFlags(ctx context.Context, w enable.Writer, flags map[string]bool) error {
	for typ, on := range flags {
		_, found, err := w.Lookup(ctx, typ)
		if err != nil {
			return fmt.Errorf("seed flag %s: %w", typ, err)
		}
		if found {
			continue
		}
		if err := w.Set(ctx, typ, on); err != nil {
			return fmt.Errorf("seed flag %s: %w", typ, err)
		}
	}
	return nil
}

// NewDispatcher registers the builtin handlers and returns the dispatcher over them.
func NewDispatcher(cfg config.Config, site config.Site, flags enable.Source, log *zap.Logger) (*qtype.Dispatcher, error) {
	policies, err := site.ParsedPolicies()
	if err != nil {
		return nil, err
	}
	def := cfg.DefaultEnabled
	if site.DefaultEnabled != nil {
		def = *site.DefaultEnabled
	}
	reg := qtype.NewRegistry()
	if err := builtin.Register(reg, builtin.Options{Flags: flags, DefaultEnabled: def, Policies: policies}); err != nil {
		return nil, err
	}
	return qtype.NewDispatcher(reg, qtype.WithLogger(log), qtype.WithConcurrency(cfg.EvalConcurrency)), nil
}
