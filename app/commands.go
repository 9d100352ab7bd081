package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-relay/app/api"
	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/notify"
	"github.com/lysyi3m/rss-relay/app/relay"
)

func runOnce(ctx context.Context, appCfg *cfg.Cfg, out io.Writer) error {
	feeds, err := feed.LoadList(appCfg.FeedsPath)
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}
	excludes, err := feed.LoadList(appCfg.ExcludeWordsPath)
	if err != nil {
		return fmt.Errorf("failed to load exclude words: %w", err)
	}
	slog.Info("Configuration loaded",
		"feeds", len(feeds),
		"exclude_words", len(excludes),
		"state_backend", appCfg.StateBackend,
		"warm_start", appCfg.WarmStart,
		"version", appCfg.Version)

	// A nil interface, not a typed nil, when there is nowhere to post.
	var notifier notify.Notifier
	if appCfg.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(appCfg.WebhookURL, &http.Client{}, appCfg.UserAgent, appCfg.NotifyTimeout)
	}

	if !appCfg.WarmStart && notifier == nil {
		return relay.ErrNoDestination
	}

	store, err := database.OpenStore(appCfg.StateBackend, appCfg.StatePath)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	fetcher := feed.NewFetcher(&http.Client{}, feed.NewParser(), appCfg.UserAgent, appCfg.FeedTimeout)

	runner := relay.New(relay.Config{
		Feeds:          feeds,
		WarmStart:      appCfg.WarmStart,
		MaxPostsPerRun: appCfg.MaxPostsPerRun,
		RetentionDays:  appCfg.PruneDays,
		PostDelay:      appCfg.PostDelay,
	}, fetcher, feed.NewFilterer(excludes), store, notifier)

	summary, err := runner.Run(ctx)
	fmt.Fprintln(out, summary.String())
	return err
}

func serve(ctx context.Context, appCfg *cfg.Cfg) error {
	store, err := database.OpenStore(appCfg.StateBackend, appCfg.StatePath)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, appCfg.PruneDays, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         appCfg.ListenAddr,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", appCfg.ListenAddr, "state_path", appCfg.StatePath, "auth", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(serverErrChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err, ok := <-serverErrChan:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	slog.Info("HTTP server stopped")

	return nil
}

func printKey(out io.Writer, appCfg *cfg.Cfg) error {
	_, err := fmt.Fprintf(out, "normalized_link=%s\nkey=%s\n",
		feed.NormalizeURL(appCfg.Link),
		feed.IdentityKey(appCfg.Title, appCfg.Link))
	return err
}
