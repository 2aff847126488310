package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/dulchik/mailbot/bot"
	"github.com/dulchik/mailbot/compose"
	"github.com/dulchik/mailbot/gmail"
	"github.com/dulchik/mailbot/inbox"
	"github.com/dulchik/mailbot/internal/config"
	"github.com/dulchik/mailbot/server"
	"github.com/dulchik/mailbot/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mailbot",
	Short: "Telegram bot for reading and sending Gmail",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", envOr("CONFIG_PATH", "config.yaml"), "configuration file")
}

func main() {
	// Structured JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("mailbot stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	// Gmail failures disable the mail features but keep the bot up
	var (
		ib     bot.Inbox
		sender compose.Sender
	)
	gc, err := gmail.NewClientFromCredentials(ctx, cfg.Gmail.Credentials, cfg.Gmail.Token)
	if err != nil {
		slog.Error("gmail initialization failed", "error", err)
	} else {
		ib = inbox.New(gc, st, cfg.Gmail.Label, slog.Default())
		sender = gc
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	slog.Info("authorized on telegram", "account", api.Self.UserName)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.NewServer(st),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("health server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("health server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	b := bot.New(api, ib, sender, cfg.Gmail.ListSize, slog.Default())
	err = b.Run(ctx, updates)
	if errors.Is(err, context.Canceled) {
		slog.Info("shutting down")
		return nil
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
