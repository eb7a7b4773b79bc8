package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enkhbat/rota/internal/config"
	"github.com/enkhbat/rota/internal/database"
	"github.com/enkhbat/rota/internal/logging"
	"github.com/enkhbat/rota/internal/push"
	"github.com/enkhbat/rota/internal/server"
	"github.com/enkhbat/rota/internal/telegram"
)

func main() {
	genKeys := flag.Bool("genkeys", false, "generate a VAPID key pair and exit")
	flag.Parse()

	if *genKeys {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate VAPID keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("ROTA_VAPID_PUBLIC_KEY=%s\nROTA_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	chat := telegram.NewClient(telegram.Config{
		Token:   cfg.TelegramBotToken,
		BaseURL: cfg.TelegramAPIURL,
	})
	if !chat.Enabled() {
		logger.Warn("telegram token not set, chat reminders disabled")
	}

	var pushSvc *push.Service
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
	} else {
		logger.Warn("VAPID keys not set, web push disabled")
	}

	srv := server.New(db, server.Options{
		BaseURL:    cfg.BaseURL,
		CronSecret: cfg.CronSecret,
		Chat:       chat,
		Push:       pushSvc,
		Location:   cfg.Location(),
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port, "timezone", cfg.Timezone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Keep the rate limiter map from growing unbounded.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(cleanupDone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
