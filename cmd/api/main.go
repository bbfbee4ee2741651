package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdesk_backend/internal/accounts"
	"salesdesk_backend/internal/activities"
	"salesdesk_backend/internal/adapters"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/contacts"
	"salesdesk_backend/internal/events"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/http/router"
	"salesdesk_backend/internal/leads"
	"salesdesk_backend/internal/opportunities"
	oppservice "salesdesk_backend/internal/opportunities/service"
	"salesdesk_backend/internal/pipeline"
	"salesdesk_backend/internal/tasks"
	"salesdesk_backend/internal/users"
	"salesdesk_backend/migrations"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/db"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	accountsModule := accounts.NewModule(pool, val)
	contactsModule := contacts.NewModule(pool, accountsModule.Service(), val)
	usersModule := users.NewModule(pool, cfg, val, log)
	pipelineModule := pipeline.NewModule(pool, val)
	activitiesModule := activities.NewModule(pool, val)
	tasksModule := tasks.NewModule(pool, val)
	auditModule := audit.NewModule(pool, val)

	// The lifecycle engine reads and writes through the other modules'
	// repositories so its automation and audit joins one transaction.
	opportunitiesModule := opportunities.NewModule(pool, val, oppservice.Collaborators{
		Accounts:   accountsModule.Repository(),
		Users:      usersModule.Repository(),
		Stages:     pipelineModule.Repository(),
		Contacts:   contactsModule.Repository(),
		Activities: activitiesModule.Repository(),
		Tasks:      tasksModule.Repository(),
		Audit:      auditModule.Repository(),
	}, auditModule.Repository(), eventBus)

	// Lead conversion opens deals through the engine, never around it.
	leadOpportunityCreator := adapters.NewLeadOpportunityCreator(opportunitiesModule.Service())
	leadsModule := leads.NewModule(pool, val,
		accountsModule.Repository(), contactsModule.Repository(), auditModule.Repository(),
		leadOpportunityCreator)

	subscribeClosedDealLogger(eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := router.New(cfg, log, []apphttp.Module{
		usersModule,
		accountsModule,
		contactsModule,
		pipelineModule,
		opportunitiesModule,
		activitiesModule,
		tasksModule,
		leadsModule,
		auditModule,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// subscribeClosedDealLogger logs every deal that reaches a terminal status.
func subscribeClosedDealLogger(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.OpportunityStageChanged{}.EventName(), events.HandlerFunc(
		func(_ context.Context, e events.Event) error {
			changed, ok := e.(events.OpportunityStageChanged)
			if !ok {
				return nil
			}
			if changed.Status == "WON" || changed.Status == "LOST" {
				log.Info("deal closed",
					"opportunityId", changed.OpportunityID,
					"stage", changed.StageName,
					"status", changed.Status)
			}
			return nil
		}))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
