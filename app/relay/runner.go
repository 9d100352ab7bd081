package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/notify"
)

const (
	DefaultMaxPostsPerRun = 1000
	DefaultRetentionDays  = 90
	DefaultPostDelay      = 250 * time.Millisecond
)

// ErrNoDestination is returned when delivery is required but no notifier
// was configured.
var ErrNoDestination = errors.New("webhook URL is not configured (required unless warm start is enabled)")

// EntrySource yields the entries of one feed in document order.
type EntrySource interface {
	Entries(ctx context.Context, feedURL string) ([]feed.Entry, error)
}

var _ EntrySource = (*feed.Fetcher)(nil)

type Config struct {
	Feeds []string
	// WarmStart records items as seen without delivering them.
	WarmStart bool
	// MaxPostsPerRun stops the run after this many deliveries. Zero or less
	// disables the cap.
	MaxPostsPerRun int
	RetentionDays  int
	PostDelay      time.Duration
}

type Summary struct {
	New       int
	Posted    int
	WarmStart bool
}

func (s Summary) String() string {
	return fmt.Sprintf("new=%d posted=%d warm_start=%t", s.New, s.Posted, s.WarmStart)
}

type Runner struct {
	cfg      Config
	source   EntrySource
	filterer *feed.Filterer
	store    database.Store
	notifier notify.Notifier
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, source EntrySource, filterer *feed.Filterer, store database.Store, notifier notify.Notifier) *Runner {
	if filterer == nil {
		filterer = feed.NewFilterer(nil)
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		filterer: filterer,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Run performs one polling pass over every feed. The ledger is saved at the
// end of the pass, including when the post cap stops it early. When a
// delivery fails, the failed item is dropped from the ledger, everything
// recorded before it is saved, and the delivery error is returned.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{WarmStart: r.cfg.WarmStart}

	if !r.cfg.WarmStart && r.notifier == nil {
		return summary, ErrNoDestination
	}

	state, err := r.store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load state: %w", err)
	}

	now := r.now()
	pruned := state.Prune(now, r.cfg.RetentionDays)
	slog.Info("State loaded", "records", state.Len(), "pruned", pruned, "retention_days", r.cfg.RetentionDays)

	runErr := r.process(ctx, state, now.Unix(), &summary)

	// Progress is persisted even when ctx was cancelled mid-run.
	if err := r.store.Save(context.WithoutCancel(ctx), state); err != nil {
		saveErr := fmt.Errorf("failed to save state: %w", err)
		if runErr != nil {
			return summary, errors.Join(runErr, saveErr)
		}
		return summary, saveErr
	}

	slog.Info("Run completed",
		"new", summary.New,
		"posted", summary.Posted,
		"warm_start", summary.WarmStart,
		"records", state.Len())

	return summary, runErr
}

func (r *Runner) process(ctx context.Context, state *database.State, now int64, summary *Summary) error {
	for _, feedURL := range r.cfg.Feeds {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, err := r.source.Entries(ctx, feedURL)
		if err != nil {
			slog.Warn("Failed to fetch feed, skipping", "feed", feedURL, "error", err)
			continue
		}

		feedNew := 0
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			title := strings.TrimSpace(entry.Title)
			link := strings.TrimSpace(entry.Link)
			if title == "" || link == "" {
				continue
			}

			if excluded, reason := r.filterer.Match(title); excluded {
				slog.Debug("Entry excluded", "feed", feedURL, "title", title, "reason", reason)
				continue
			}

			key := feed.IdentityKey(title, link)
			if state.Contains(key) {
				continue
			}

			state.Insert(key, now)
			summary.New++
			feedNew++

			if r.cfg.WarmStart {
				continue
			}

			if err := r.notifier.Notify(ctx, title, link); err != nil {
				state.Remove(key)
				summary.New--
				return fmt.Errorf("failed to deliver %q (%s): %w", title, link, err)
			}
			summary.Posted++
			slog.Debug("Entry posted", "feed", feedURL, "title", title, "link", link)

			if r.capReached(summary.Posted) {
				slog.Info("Post cap reached, stopping", "max_posts_per_run", r.cfg.MaxPostsPerRun)
				return nil
			}

			if err := r.sleep(ctx, r.cfg.PostDelay); err != nil {
				return err
			}
		}

		slog.Debug("Feed processed", "feed", feedURL, "entries", len(entries), "new", feedNew)
	}

	return nil
}

func (r *Runner) capReached(posted int) bool {
	return r.cfg.MaxPostsPerRun > 0 && posted >= r.cfg.MaxPostsPerRun
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
