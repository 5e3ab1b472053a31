// file: main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctflab/config"
	"ctflab/controllers"
	"ctflab/database"
	"ctflab/logger"
	"ctflab/routes"
	"ctflab/services"
	"ctflab/utils"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := database.Connect(cfg); err != nil {
		log.Fatal("database connect failed", "error", err)
	}
	if err := database.MigrateTables(database.DB); err != nil {
		log.Fatal("database migrate failed", "error", err)
	}
	// Redis 不可用时降级为直接查库
	if err := database.InitRedis(cfg); err != nil {
		log.Warn("redis unavailable, caching disabled", "error", err)
	}

	store := database.NewStore(database.DB)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	board := services.NewLeaderboardService(database.DB, database.RDB, log)
	stats := services.NewStatsService(database.DB, database.RDB, log)
	hints := services.NewHintService(store, log)

	sessions := services.NewSessions(store, log)

	h := &controllers.Controller{
		DB:          database.DB,
		Log:         log,
		Tokens:      tokens,
		Sessions:    sessions,
		Submissions: services.NewSubmissionService(store, log, board, stats),
		Hints:       hints,
		Leaderboard: board,
		Stats:       stats,
	}

	sched, err := services.StartScheduler(board, sessions, cfg.LeaderboardRefresh, cfg.LeaderboardLimit, log)
	if err != nil {
		log.Fatal("scheduler start failed", "error", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.SetupRouter(cfg, h, tokens, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to run server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if err := sched.Shutdown(); err != nil {
		log.Error("scheduler shutdown failed", "error", err)
	}
	hints.Wait()
	if database.RDB != nil {
		_ = database.RDB.Close()
	}
}
