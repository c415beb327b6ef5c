package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "billing-cloud/internal/api/http"
	"billing-cloud/internal/audit"
	"billing-cloud/internal/auth"
	billingapp "billing-cloud/internal/billing/application"
	billing "billing-cloud/internal/billing/domain"
	billingmemory "billing-cloud/internal/billing/infrastructure/memory"
	billingpostgres "billing-cloud/internal/billing/infrastructure/postgres"
	billinghttp "billing-cloud/internal/billing/interfaces/http"
	clients "billing-cloud/internal/clients/domain"
	clientsmemory "billing-cloud/internal/clients/infrastructure/memory"
	clientspostgres "billing-cloud/internal/clients/infrastructure/postgres"
	clientshttp "billing-cloud/internal/clients/interfaces/http"
	"billing-cloud/internal/mailer"
	"billing-cloud/internal/observability/metrics"
	"billing-cloud/internal/render"
	"billing-cloud/internal/reporting"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	var documentRepo billing.Repository
	var clientRepo clients.Repository
	var auditLogger audit.Logger

	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		documentRepo = billingpostgres.NewDocumentRepository(db)
		clientRepo = clientspostgres.NewClientRepository(db)
		if repo := audit.NewRepository(db); repo != nil {
			auditLogger = repo
		}
	} else {
		logger.Printf("DATABASE_URL not set, using in-memory stores")
		documentRepo = billingmemory.NewDocumentRepository()
		clientRepo = clientsmemory.NewClientRepository()
	}

	metrics.Init(db, logger)

	profile, err := render.LoadProfile(cfg.BrandConfigPath)
	if err != nil {
		logger.Printf("brand profile load error: %v, using defaults", err)
	}
	logoPath := cfg.LogoPath
	if logoPath == "" {
		logoPath = profile.LogoPath
	}
	logo, err := render.LoadLogo(logoPath)
	if err != nil {
		logger.Printf("logo load error: %v, using text fallback", err)
		logo = nil
	}
	engine := render.NewEngine(profile, logo)

	documentService, err := billingapp.NewDocumentService(documentRepo, clientRepo, billingapp.SystemClock{})
	if err != nil {
		logger.Fatalf("document service error: %v", err)
	}

	var sendService *billingapp.SendService
	if cfg.MailProviderURL != "" {
		channel, err := mailer.NewProviderChannel(cfg.MailProviderURL, cfg.MailAPIKey, cfg.MailFrom)
		if err != nil {
			logger.Fatalf("mail provider error: %v", err)
		}
		sendService, err = billingapp.NewSendService(documentService, engine, channel)
		if err != nil {
			logger.Fatalf("send service error: %v", err)
		}
	} else {
		logger.Printf("MAIL_PROVIDER_URL not set, document sending disabled")
	}

	invoiceHandler, err := billinghttp.NewDocumentHandler(billing.KindInvoice, documentService, sendService, engine, auditLogger)
	if err != nil {
		logger.Fatalf("invoice handler error: %v", err)
	}
	quoteHandler, err := billinghttp.NewDocumentHandler(billing.KindQuote, documentService, sendService, engine, auditLogger)
	if err != nil {
		logger.Fatalf("quote handler error: %v", err)
	}
	clientHandler, err := clientshttp.NewHandler(clientRepo, auditLogger)
	if err != nil {
		logger.Fatalf("client handler error: %v", err)
	}

	dashboardService, err := reporting.NewDashboardService(documentRepo, reporting.SystemClock{})
	if err != nil {
		logger.Fatalf("dashboard service error: %v", err)
	}
	dashboardHandler, err := apihttp.NewDashboardHandler(dashboardService)
	if err != nil {
		logger.Fatalf("dashboard handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/invoices", invoiceHandler)
	mux.Handle("/api/v1/invoices/", invoiceHandler)
	mux.Handle("/api/v1/quotes", quoteHandler)
	mux.Handle("/api/v1/quotes/", quoteHandler)
	mux.Handle("/api/v1/clients", clientHandler)
	mux.Handle("/api/v1/clients/", clientHandler)
	mux.Handle("/api/v1/dashboard", dashboardHandler)
	mux.Handle("/api/v1/dashboard/", dashboardHandler)
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
	DatabaseURL     string
	HTTPAddr        string
	JWTSecret       string
	BrandConfigPath string
	LogoPath        string
	MailProviderURL string
	MailAPIKey      string
	MailFrom        string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		BrandConfigPath: getenvDefault("BRAND_CONFIG", ""),
		LogoPath:        getenvDefault("LOGO_PATH", ""),
		MailProviderURL: getenvDefault("MAIL_PROVIDER_URL", ""),
		MailAPIKey:      getenvDefault("MAIL_API_KEY", ""),
		MailFrom:        getenvDefault("MAIL_FROM", "facturas@billing.cloud"),
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

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
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
