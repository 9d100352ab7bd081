package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type serveCmd struct {
	ListenAddr   string `long:"listen" env:"LISTEN_ADDR" default:":8080" description:"Address for the inspection API"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
}

type keyCmd struct {
	Title string `long:"title" required:"true" description:"Item title"`
	Link  string `long:"link" required:"true" description:"Item link"`
}

type rawCfg struct {
	// Inputs and ledger
	FeedsPath        string `long:"feeds-path" env:"FEEDS_PATH" default:"feeds.json" description:"File with the list of feed URLs (JSON or YAML)"`
	ExcludeWordsPath string `long:"exclude-words-path" env:"EXCLUDE_WORDS_PATH" default:"exclude_words.json" description:"File with the list of excluded words (JSON or YAML)"`
	StatePath        string `long:"state-path" env:"STATE_PATH" default:"posted.json" description:"Location of the de-duplication ledger"`
	StateBackend     string `long:"state-backend" env:"STATE_BACKEND" default:"json" choice:"json" choice:"sqlite" choice:"redis" description:"Ledger storage backend (for redis, state-path is a redis:// URL)"`

	// Delivery
	WebhookURL     string `long:"webhook-url" env:"SLACK_WEBHOOK_URL" description:"Slack incoming webhook URL"`
	WarmStart      string `long:"warm-start" env:"WARM_START" optional:"yes" optional-value:"true" description:"Record items as seen without posting them"`
	MaxPostsPerRun int    `long:"max-posts-per-run" env:"MAX_POSTS_PER_RUN" default:"1000" description:"Stop after this many posts (0 disables the cap)"`
	PruneDays      int    `long:"prune-days" env:"PRUNE_DAYS" default:"90" description:"Forget ledger records older than this many days"`
	FeedTimeout    int    `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	NotifyTimeout  int    `long:"notify-timeout" env:"NOTIFY_TIMEOUT" default:"20" description:"Webhook request timeout in seconds"`
	PostDelay      int    `long:"post-delay" env:"POST_DELAY_MS" default:"250" description:"Pause after each post in milliseconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Relay/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Run   struct{} `command:"run" description:"Poll feeds once and post new items (default)"`
	Serve serveCmd `command:"serve" description:"Serve the read-only ledger inspection API"`
	Key   keyCmd   `command:"key" description:"Print the normalized link and identity key of an item"`
}

// Load parses args and the environment. It returns nil, nil when help was
// requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.SubcommandsOptional = true

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := CommandRun
	if parser.Active != nil {
		command = parser.Active.Name
	}

	warmStart, err := parseBool(raw.WarmStart)
	if err != nil {
		return nil, fmt.Errorf("invalid warm start value: %w", err)
	}

	cfg := &Cfg{
		Command:          command,
		FeedsPath:        raw.FeedsPath,
		ExcludeWordsPath: raw.ExcludeWordsPath,
		StatePath:        raw.StatePath,
		StateBackend:     raw.StateBackend,
		WebhookURL:       strings.TrimSpace(raw.WebhookURL),
		WarmStart:        warmStart,
		MaxPostsPerRun:   raw.MaxPostsPerRun,
		PruneDays:        raw.PruneDays,
		FeedTimeout:      time.Duration(raw.FeedTimeout) * time.Second,
		NotifyTimeout:    time.Duration(raw.NotifyTimeout) * time.Second,
		PostDelay:        time.Duration(raw.PostDelay) * time.Millisecond,
		ListenAddr:       raw.Serve.ListenAddr,
		APIAccessKey:     raw.Serve.APIAccessKey,
		Title:            raw.Key.Title,
		Link:             raw.Key.Link,
		UserAgent:        raw.UserAgent,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	checks := []struct {
		name  string
		value int
	}{
		{"max-posts-per-run", raw.MaxPostsPerRun},
		{"prune-days", raw.PruneDays},
		{"feed-timeout", raw.FeedTimeout},
		{"notify-timeout", raw.NotifyTimeout},
		{"post-delay", raw.PostDelay},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("invalid configuration: %s must not be negative, got %d", c.name, c.value)
		}
	}
	return nil
}

// parseBool accepts the usual spellings of a switch, including "yes"/"no"
// and "on"/"off". An empty value is false.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "off", "n", "f":
		return false, nil
	case "1", "true", "yes", "on", "y", "t":
		return true, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", value)
}
