package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/automaton-forensics/internal/application"
	appanalysis "github.com/bryanwahyu/automaton-forensics/internal/application/analysis"
	applogs "github.com/bryanwahyu/automaton-forensics/internal/application/logs"
	apptriage "github.com/bryanwahyu/automaton-forensics/internal/application/triage"
	"github.com/bryanwahyu/automaton-forensics/internal/config"
	aidomain "github.com/bryanwahyu/automaton-forensics/internal/domain/ai"
	analysisdomain "github.com/bryanwahyu/automaton-forensics/internal/domain/analysis"
	logsdomain "github.com/bryanwahyu/automaton-forensics/internal/domain/logs"
	triagedomain "github.com/bryanwahyu/automaton-forensics/internal/domain/triage"
	"github.com/bryanwahyu/automaton-forensics/internal/infra/ai/offline"
	openaiclient "github.com/bryanwahyu/automaton-forensics/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/automaton-forensics/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/automaton-forensics/internal/infra/db/postgres"
	dockerrunner "github.com/bryanwahyu/automaton-forensics/internal/infra/executor/docker"
	"github.com/bryanwahyu/automaton-forensics/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/automaton-forensics/internal/infra/storage"
	"github.com/bryanwahyu/automaton-forensics/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql default, postgres optional)
	var (
		db          *sql.DB
		analysisRep analysisdomain.Repository
		logRep      logsdomain.Repository
		triageRep   triagedomain.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		analysisRep = postgresp.NewAnalysisRepository(db)
		logRep = postgresp.NewLogRepository(db)
		triageRep = postgresp.NewTriageRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		analysisRep = mysqlp.NewAnalysisRepository(db)
		logRep = mysqlp.NewLogRepository(db)
		triageRep = mysqlp.NewTriageRepository(db)
	}
	defer db.Close()

	// init minio evidence store
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init runner
	runner := dockerrunner.NewRunner()

	// init services
	clock := application.SystemClock{}
	logStream := applogs.NewStream(logRep, clock)
	svc := &appanalysis.Service{
		Repo:            analysisRep,
		Runner:          runner,
		Evidence:        store,
		Logs:            logStream,
		Gate:            appanalysis.NewGate(),
		Clock:           clock,
		ToolTimeout:     cfg.ToolTimeout(),
		DecisionTimeout: cfg.DecisionTimeout(),
		RunTimeout:      cfg.RunTimeout(),
	}

	// AI triage: openai when configured, offline heuristic otherwise
	var aiClient aidomain.Client
	if cfg.OpenAI.APIKey != "" {
		aiClient = openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		aiClient = offline.NewClient()
		log.Println("no openai key configured, using offline triage")
	}
	triageSvc := apptriage.NewService(aiClient, triageRep, analysisRep, clock)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(30, 10))
	mux.Method("GET", "/health", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Mount("/", httpserver.NewRouter(svc, triageSvc, logStream))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
