// cmd/petopia-search/app.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"petopia-search/internal/common/auth"
	"petopia-search/internal/common/cache"
	"petopia-search/internal/common/config"
	commonhttp "petopia-search/internal/common/http"
	"petopia-search/internal/common/logger"
	"petopia-search/internal/common/observability"
	"petopia-search/internal/facilityapi"
	"petopia-search/internal/search/filters"
	"petopia-search/internal/search/orchestrator"
	"petopia-search/pkg/regions"
)

const cacheConnectTries = 3

// app holds everything one command invocation needs.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	table  *regions.Table
	api    *facilityapi.Client
	store  *filters.Store
	orch   *orchestrator.Orchestrator
	obs    *observability.Observability
	traces *observability.Tracing
	redis  *cache.RedisClient
	server *http.Server
}

func newApp(ctx context.Context) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log := logger.NewStructured(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	a := &app{cfg: cfg, log: log}

	a.table = regions.Default()
	if cfg.Search.RegionTablePath != "" {
		t, err := regions.Load(cfg.Search.RegionTablePath)
		if err != nil {
			return nil, err
		}
		a.table = t
	}

	traces, err := observability.NewTracing(ctx, cfg.Tracing, cfg.App, log)
	if err != nil {
		log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
	}
	a.traces = traces

	tokens := auth.NewTokenStore(cfg.Auth.TokenFile, cfg.Auth.Token)
	httpClient := commonhttp.NewClient(commonhttp.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   config.GetDuration(cfg.API.Timeout),
		UserAgent: cfg.API.UserAgent,
		Token:     tokens.Token,
	})
	a.api = facilityapi.NewClient(httpClient, log)

	var source filters.OptionSource = a.api
	if cfg.Cache.Enabled {
		rc, err := cache.Connect(ctx, cfg.Cache, log, cacheConnectTries)
		if err != nil {
			log.Warn("option cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			a.redis = rc
			source = filters.NewCachedOptionSource(a.api, rc, config.GetDuration(cfg.Cache.TTL), log)
		}
	}
	a.store = filters.NewStore(source, a.table, log)

	if cfg.Metrics.Enabled {
		obs, err := observability.New(cfg.App.Name)
		if err != nil {
			log.Warn("otel metrics disabled", map[string]interface{}{"error": err.Error()})
		}
		a.obs = obs
		a.startMetricsServer()
	}

	a.orch = orchestrator.New(a.api, a.store, orchestrator.Config{
		PageSize:        cfg.Search.PageSize,
		Debounce:        config.GetDuration(cfg.Search.DebounceMs),
		BoundsLimit:     cfg.Search.BoundsLimit,
		SuggestionLimit: cfg.Search.SuggestionLimit,
	}, log, orchestrator.WithObservability(a.obs))

	log.Debug("petopia-search ready", map[string]interface{}{
		"baseUrl":     cfg.API.BaseURL,
		"environment": cfg.App.Environment,
		"cache":       a.redis != nil,
	})
	return a, nil
}

func (a *app) startMetricsServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		a.log.Info("metrics server listening", map[string]interface{}{"address": a.cfg.Metrics.Address})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

func (a *app) Close() {
	a.orch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.server != nil {
		_ = a.server.Shutdown(ctx)
	}
	a.obs.Shutdown()
	_ = a.traces.Shutdown(ctx)
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
