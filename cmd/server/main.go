package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ItalcolColombia/miit-api-sub000/internal/config"
	"github.com/ItalcolColombia/miit-api-sub000/internal/infra"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
	"github.com/ItalcolColombia/miit-api-sub000/internal/router"
	"github.com/ItalcolColombia/miit-api-sub000/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker handlers are wired here (composition root) so the pool and the
	// resend cron have full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	extClient := infra.NewExternalClient(cfg.TGAPIURL, cfg.TGAPIUser, cfg.TGAPIPass)
	extCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	auditoriaRepo := repository.NewAuditoriaRepository(db)
	corteRepo := repository.NewPesadaCorteRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)

	workerHandlers := worker.Handlers{
		Auditoria: worker.NewAuditoriaWorker(auditoriaRepo, rdb, dispatcher),
		Email:     worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, workerHandlers)

	worker.StartReenvioCron(ctx, worker.ReenvioCronConfig{
		CorteRepo:   corteRepo,
		UsuarioRepo: usuarioRepo,
		Client:      extClient,
		CB:          extCB,
		RDB:         rdb,
	})

	r := router.New(cfg, db, rdb, extClient, extCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("miit-api listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
