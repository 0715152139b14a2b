// Command server runs the clearform HTTP service: intake, means test
// eligibility, and Form 101 generation for pro se Chapter 7 filers.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clearform/internal/audit"
	districtcache "clearform/internal/district/cache"
	districthandler "clearform/internal/district/handler"
	districtstore "clearform/internal/district/store"
	eligibilityhandler "clearform/internal/eligibility/handler"
	eligibilitymetrics "clearform/internal/eligibility/metrics"
	"clearform/internal/eligibility/messages"
	eligibilityservice "clearform/internal/eligibility/service"
	eligibilitystore "clearform/internal/eligibility/store"
	formshandler "clearform/internal/forms/handler"
	formsmetrics "clearform/internal/forms/metrics"
	formsservice "clearform/internal/forms/service"
	formsstore "clearform/internal/forms/store"
	intakehandler "clearform/internal/intake/handler"
	intakestore "clearform/internal/intake/store"
	"clearform/internal/platform/config"
	"clearform/internal/platform/httpserver"
	"clearform/internal/platform/logger"
	"clearform/internal/platform/middleware"
	"clearform/internal/platform/postgres"
	platformredis "clearform/internal/platform/redis"
	"clearform/pkg/platform/seal"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		districts  districtstore.DistrictStore
		thresholds districtstore.MedianIncomeStore
		reference  districtstore.ReferenceStore
		sessions   intakestore.SessionStore
		results    eligibilitystore.ResultStore
		forms      formsstore.FormStore
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		sealer, err := sealerFromKey(cfg.BreakdownKey)
		if err != nil {
			log.Error("invalid breakdown key", "error", err)
			os.Exit(1)
		}

		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		districtPG := districtstore.NewPostgres(db)
		districts = districtPG
		thresholds = districtPG
		reference = districtPG
		sessions = intakestore.NewPostgres(db, sealer)
		results = eligibilitystore.NewPostgres(db, sealer)
		forms = formsstore.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		districtMem := districtstore.NewInMemory()
		districts = districtMem
		thresholds = districtMem
		reference = districtMem
		sessions = intakestore.NewInMemory()
		results = eligibilitystore.NewInMemory()
		forms = formsstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var kv districtcache.KV
	if rdb != nil {
		defer rdb.Close()
		kv = districtcache.RedisKV{Client: rdb.Client}
		log.Info("threshold cache enabled")
	}
	cachedThresholds := districtcache.NewThresholdCache(thresholds, kv, config.ThresholdCacheTTL, log)

	publisher := audit.NewPublisher(cfg.AuditBuffer, log)
	worker := audit.NewWorker(auditStore, publisher.Inbox(), log)

	eligibilitySvc := eligibilityservice.New(
		sessions, cachedThresholds, districts, results,
		messages.MustDefaultComposer(),
		eligibilityservice.WithLogger(log),
		eligibilityservice.WithMetrics(eligibilitymetrics.New()),
		eligibilityservice.WithAuditPublisher(publisher),
	)
	formsSvc := formsservice.New(
		sessions, districts, results, forms,
		formsservice.WithLogger(log),
		formsservice.WithMetrics(formsmetrics.New()),
		formsservice.WithAuditPublisher(publisher),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logger(log))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(30 * time.Second))
		r.Use(middleware.Identity)
		r.Use(middleware.ContentTypeJSON)
		districthandler.New(districts, reference, log).Register(r)
		intakehandler.New(sessions, districts, log).Register(r)
		eligibilityhandler.New(eligibilitySvc, log).Register(r)
		formshandler.New(formsSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		log.Info("starting clearform", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// sealerFromKey decodes the hex-encoded 256-bit sealing key. Persistent
// stores refuse to run without one; sensitive columns are never written in
// plaintext.
func sealerFromKey(hexKey string) (*seal.Sealer, error) {
	if hexKey == "" {
		return nil, errors.New("CLEARFORM_BREAKDOWN_KEY is required when DATABASE_URL is set")
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	return seal.New(key)
}
