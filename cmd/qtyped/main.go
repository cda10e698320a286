package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-qtype/internal/api/http"
	"github.com/mind-engage/mindengage-qtype/internal/app"
	auth "github.com/mind-engage/mindengage-qtype/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qtype/internal/config"
	"github.com/mind-engage/mindengage-qtype/internal/rbac"
	syncx "github.com/mind-engage/mindengage-qtype/internal/sync"
)

func main() {
	cfg := config.FromEnv()

	log, err := app.NewLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	site, err := config.LoadSite(cfg.SiteFile)
	if err != nil {
		log.Fatal("site file", zap.Error(err))
	}

	// --- Flags ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	flags, err := app.OpenFlags(ctx, cfg, site)
	cancel()
	if err != nil {
		log.Fatal("flag source", zap.String("source", string(cfg.FlagSource)), zap.Error(err))
	}
	defer flags.Close()

	var events *syncx.EventRepo
	if flags.DB != nil {
		events = syncx.NewEventRepo(flags.DB)
	}

	// --- Handlers ---
	disp, err := app.NewDispatcher(cfg, site, flags.Source, log)
	if err != nil {
		log.Fatal("handlers", zap.Error(err))
	}

	deps := api.Deps{
		Dispatcher:  disp,
		Auth:        auth.NewAuthService(cfg.AuthSecret),
		Checker:     rbac.NewChecker(nil),
		Flags:       flags.Source,
		Events:      events,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins(),
	}
	// Local login (enabled in offline mode by default; can be enabled online via env)
	if cfg.EnableLocalAuth {
		deps.Admin = &auth.Admin{User: cfg.AdminUser, PassHash: cfg.AdminPassHash}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("flags", string(cfg.FlagSource)),
		zap.Strings("types", disp.Registry().Types()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serve", zap.Error(err))
	}
}
