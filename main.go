package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"trade-finance-cloud/internal/audit"
	"trade-finance-cloud/internal/auth"
	financeapp "trade-finance-cloud/internal/finance/application"
	financedomain "trade-finance-cloud/internal/finance/domain"
	financememory "trade-finance-cloud/internal/finance/infrastructure/memory"
	financepostgres "trade-finance-cloud/internal/finance/infrastructure/postgres"
	financehttp "trade-finance-cloud/internal/finance/interfaces/http"
	"trade-finance-cloud/internal/fx"
	locapp "trade-finance-cloud/internal/loc/application"
	locdomain "trade-finance-cloud/internal/loc/domain"
	locmemory "trade-finance-cloud/internal/loc/infrastructure/memory"
	locpostgres "trade-finance-cloud/internal/loc/infrastructure/postgres"
	locinterfaces "trade-finance-cloud/internal/loc/interfaces"
	lochttp "trade-finance-cloud/internal/loc/interfaces/http"
	"trade-finance-cloud/internal/observability/metrics"
	pricefeedapp "trade-finance-cloud/internal/pricefeed/application"
	pricefeedhttp "trade-finance-cloud/internal/pricefeed/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	var (
		locRepo     locdomain.Repository
		financeRepo financedomain.Repository
		auditLogger audit.Logger
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}

		ctx := context.Background()
		locPG := locpostgres.NewRepository(db)
		if err := locPG.EnsureSchema(ctx); err != nil {
			logger.Fatalf("loc schema error: %v", err)
		}
		financePG := financepostgres.NewRepository(db)
		if err := financePG.EnsureSchema(ctx); err != nil {
			logger.Fatalf("finance schema error: %v", err)
		}
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("audit schema error: %v", err)
		}

		locRepo = locPG
		financeRepo = financePG
		auditLogger = auditRepo
	} else {
		logger.Printf("DATABASE_URL not set, using in-memory repositories")
		locRepo = locmemory.NewRepository()
		financeRepo = financememory.NewRepository()
	}

	feedCfg, err := pricefeedapp.LoadConfig()
	if err != nil {
		logger.Fatalf("pricefeed config error: %v", err)
	}
	broker := pricefeedapp.NewBroker()
	store := pricefeedapp.NewStore(feedCfg.Retention, broker)
	generator := pricefeedapp.NewGenerator(store, feedCfg.Universe(), time.Duration(feedCfg.PeriodSeconds)*time.Second, logger)
	go generator.Start(context.Background())

	locService, err := locapp.NewService(locRepo, store, logger,
		locapp.WithDefaultCountry(cfg.DefaultCountry),
		locapp.WithPriceTimeout(cfg.PriceTimeout),
	)
	if err != nil {
		logger.Fatalf("loc service error: %v", err)
	}
	locHandler, err := lochttp.NewHandler(locService, auditLogger)
	if err != nil {
		logger.Fatalf("loc handler error: %v", err)
	}
	exportHandler, err := locinterfaces.NewExportHandler(locService)
	if err != nil {
		logger.Fatalf("loc export handler error: %v", err)
	}

	financeService, err := financeapp.NewService(financeRepo)
	if err != nil {
		logger.Fatalf("finance service error: %v", err)
	}
	financeHandler, err := financehttp.NewHandler(financeService)
	if err != nil {
		logger.Fatalf("finance handler error: %v", err)
	}

	var fxProvider fx.Provider
	if cfg.RatesProviderURL != "" {
		provider, err := fx.NewRemoteProvider(cfg.RatesProviderURL, cfg.RatesAPIKey)
		if err != nil {
			logger.Fatalf("fx provider error: %v", err)
		}
		fxProvider = provider
	}
	fxHandler, err := fx.NewHandler(fx.NewService(fxProvider))
	if err != nil {
		logger.Fatalf("fx handler error: %v", err)
	}

	var streamOpts []pricefeedhttp.StreamOption
	if cfg.UpstreamPriceURL != "" {
		streamOpts = append(streamOpts, pricefeedhttp.WithUpstream(cfg.UpstreamPriceURL))
	}
	streamHandler := pricefeedhttp.NewStreamHandler(broker, logger, streamOpts...)
	pricesHandler := pricefeedhttp.NewPricesHandler(store)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/ws/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/loc", locHandler)
	mux.Handle("/api/v1/loc/", locHandler)
	mux.Handle("/api/v1/credit-lines", financeHandler)
	mux.Handle("/api/v1/credit-lines/", financeHandler)
	mux.Handle("/api/v1/prices", pricesHandler)
	mux.Handle("/ws/prices", streamHandler)
	mux.Handle("/api/v1/rates", fxHandler)
	mux.Handle("/api/v1/convert", fxHandler)
	mux.Handle("/api/v1/exports/", exportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL      string
	HTTPAddr         string
	JWTSecret        string
	DefaultCountry   string
	PriceTimeout     time.Duration
	UpstreamPriceURL string
	RatesProviderURL string
	RatesAPIKey      string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:      getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:         getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:        getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		DefaultCountry:   getenvDefault("LOC_DEFAULT_COUNTRY", "IN"),
		PriceTimeout:     getenvDuration("LOC_PRICE_TIMEOUT", 3*time.Second),
		UpstreamPriceURL: getenvDefault("PRICE_UPSTREAM_WS_URL", ""),
		RatesProviderURL: getenvDefault("RATES_PROVIDER_URL", ""),
		RatesAPIKey:      getenvDefault("RATES_API_KEY", ""),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		elapsed := time.Since(start)
		metrics.ObserveHTTP(r.Method, strconv.Itoa(resp.status), elapsed)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, elapsed)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
