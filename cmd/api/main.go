package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/auth"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/menu"
	menurepo "github.com/ovaphlow/pitchfork/service-stefano-api/internal/menu/repo"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/offline"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/router"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/subscriber"
	subrepo "github.com/ovaphlow/pitchfork/service-stefano-api/internal/subscriber/repo"
	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-stefano-api/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-stefano-api/pkg/database"
	"github.com/ovaphlow/pitchfork/service-stefano-api/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting " + router.ServiceName)

	// init db
	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	menuRepo := menurepo.NewRepo(db)
	userRepo := userrepo.NewUserRepo(db)
	subscriberRepo := subrepo.NewSubscriberRepo(db)

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.EnsureSchema(schemaCtx, menuRepo, userRepo, subscriberRepo)
	cancelSchema()
	if err != nil {
		sugar.Fatalf("db schema: %v", err)
	}

	tokens, err := auth.NewTokenService(auth.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("token service: %v", err)
	}
	sessions := auth.NewProvider(tokens, sugar)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// offline cache in front of the static site
	offCfg, err := offline.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("offline config: %v", err)
	}
	client := &http.Client{Timeout: offCfg.FetchTimeout}
	storage := offline.NewStorage()
	host, err := offline.NewHost(storage, offCfg.Origin, client, sugar)
	if err != nil {
		sugar.Fatalf("offline host: %v", err)
	}
	notifier := offline.NewShoutrrrNotifier(
		offline.MultiTargets{offline.StaticTargets(offCfg.PushURLs), subscriberRepo},
		sugar,
	)
	metrics := offline.NewMetrics(reg)
	newWorker := func() (*offline.Worker, error) {
		return offline.NewWorker(storage, offline.Options{
			Version:  offCfg.Version,
			Origin:   offCfg.Origin,
			Manifest: offCfg.Precache,
			Client:   client,
			Notifier: notifier,
			Metrics:  metrics,
			Logger:   sugar,
		})
	}
	worker, err := newWorker()
	if err != nil {
		sugar.Fatalf("offline worker: %v", err)
	}
	installCtx, cancelInstall := context.WithTimeout(context.Background(), 2*offCfg.FetchTimeout)
	if err := host.Register(installCtx, worker); err != nil {
		// the site is still proxied, just without a precache
		sugar.Warnw("offline precache not installed", "version", offCfg.Version, "err", err)
	}
	cancelInstall()

	handler := router.RegisterRoutes(sugar, router.Deps{
		Menu:        menu.NewHandler(menu.NewService(menuRepo), sugar),
		Users:       user.NewHandler(user.NewUserService(userRepo, nil), sessions, sugar),
		Subscribers: subscriber.NewHandler(subscriber.NewService(subscriberRepo, nil), sugar),
		Offline:     offline.NewHandler(host, newWorker, sugar),
		Host:        host,
		Sessions:    sessions,
		Registry:    reg,
	})

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
