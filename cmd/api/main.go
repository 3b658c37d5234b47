package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
	"github.com/kazicoop/coop-service/internal/config"
	"github.com/kazicoop/coop-service/internal/handler"
	"github.com/kazicoop/coop-service/internal/integrations/bnr"
	"github.com/kazicoop/coop-service/internal/middleware"
	"github.com/kazicoop/coop-service/internal/repository"
	"github.com/kazicoop/coop-service/internal/scheduler"
	"github.com/kazicoop/coop-service/internal/service"
	"github.com/kazicoop/coop-service/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func runMigrations(db *sql.DB, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := runMigrations(db, cfg.MigrationsDir); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	repo := repository.NewPostgres(db)
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, logger, cfg, sender)
	h := handler.NewHandler(svc)
	rateClient := bnr.NewClient(cfg, logger)

	// Start reminder scheduler
	reminders := scheduler.NewScheduler(repo, sender, logger)
	if err := reminders.Start(cfg.ReminderCron); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer reminders.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))

	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/cooperatives", h.ListCooperatives).Methods("GET")
	// Reference rate endpoint (suggested default interest rate)
	r.HandleFunc("/reference-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := rateClient.GetReferenceRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get reference rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"reference_rate": rate})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/cooperatives", h.CreateCooperative).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}", h.GetCooperative).Methods("GET")
	authRouter.HandleFunc("/cooperatives/{id}/summary", h.GetSummary).Methods("GET")
	authRouter.HandleFunc("/cooperatives/{id}/members", h.ListMembers).Methods("GET")
	authRouter.HandleFunc("/cooperatives/{id}/join", h.RequestJoin).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}/agreement", h.AcceptRules).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}/members/{memberID}/approve", h.ApproveMember).Methods("PUT")
	authRouter.HandleFunc("/cooperatives/{id}/members/{memberID}", h.DenyMember).Methods("DELETE")
	authRouter.HandleFunc("/cooperatives/{id}/contributions", h.PostContribution).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}/contributions", h.ListContributions).Methods("GET")
	authRouter.HandleFunc("/cooperatives/{id}/loans", h.ApplyForLoan).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}/loans", h.ListLoans).Methods("GET")
	authRouter.HandleFunc("/cooperatives/{id}/loans/{loanID}", h.GetLoan).Methods("GET")
	authRouter.HandleFunc("/cooperatives/{id}/loans/{loanID}/approve", h.ApproveLoan).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}/loans/{loanID}/reject", h.RejectLoan).Methods("POST")
	authRouter.HandleFunc("/cooperatives/{id}/loans/{loanID}/installments/{installmentID}/pay", h.RepayInstallment).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
