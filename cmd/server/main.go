package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/config"
	"github.com/mamadbah2/landregistry/internal/repository"
	"github.com/mamadbah2/landregistry/internal/repository/memory"
	"github.com/mamadbah2/landregistry/internal/repository/mongodb"
	"github.com/mamadbah2/landregistry/internal/repository/sheets"
	"github.com/mamadbah2/landregistry/internal/scheduler"
	"github.com/mamadbah2/landregistry/internal/server/handlers"
	"github.com/mamadbah2/landregistry/internal/server/router"
	exportsvc "github.com/mamadbah2/landregistry/internal/service/export"
	ledgersvc "github.com/mamadbah2/landregistry/internal/service/ledger"
	notifysvc "github.com/mamadbah2/landregistry/internal/service/notify"
	"github.com/mamadbah2/landregistry/internal/settlement"
	"github.com/mamadbah2/landregistry/pkg/clients/payments"
	whatsappclient "github.com/mamadbah2/landregistry/pkg/clients/whatsapp"
	"github.com/mamadbah2/landregistry/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var parcelRepo repository.ParcelRepository
	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		parcelRepo = mongoRepo
	default:
		baseLogger.Warn("using in-memory parcel store, records are lost on restart")
		parcelRepo = memory.NewRepository()
	}

	var (
		settler        ledgersvc.Settler
		accountHandler *handlers.AccountHandler
	)
	switch cfg.Settlement.Backend {
	case config.BackendRemote:
		settler = payments.NewClient(cfg.Settlement)
		baseLogger.Info("remote settlement gateway enabled")
	default:
		book := settlement.NewBook(baseLogger.Named("settlement.book"))
		settler = book
		accountHandler = handlers.NewAccountHandler(book, baseLogger.Named("handlers.accounts"))
	}

	var messenger whatsappclient.Client
	if cfg.Notifications.Enabled() {
		messenger = whatsappclient.NewClient(cfg.Notifications)
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, ledger events are only logged")
	}
	notifier := notifysvc.NewService(messenger, cfg.Notifications.Recipient, baseLogger.Named("svc.notify"))

	ledger := ledgersvc.NewService(parcelRepo, settler, notifier, baseLogger.Named("svc.ledger"))

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	}
	exporter := exportsvc.NewService(ledger, sheetsRepo, baseLogger.Named("svc.export"))

	sched, err := scheduler.NewScheduler(cfg.Export, exporter, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	ledgerHandler := handlers.NewLedgerHandler(ledger, baseLogger.Named("handlers.ledger"))
	engine := router.New(ledgerHandler, accountHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
