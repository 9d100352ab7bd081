package cfg

import "time"

const (
	CommandRun   = "run"
	CommandServe = "serve"
	CommandKey   = "key"
)

type Cfg struct {
	Command string

	// Inputs and ledger
	FeedsPath        string
	ExcludeWordsPath string
	StatePath        string
	StateBackend     string

	// Delivery
	WebhookURL     string
	WarmStart      bool
	MaxPostsPerRun int
	PruneDays      int
	FeedTimeout    time.Duration
	NotifyTimeout  time.Duration
	PostDelay      time.Duration

	// Inspection server
	ListenAddr   string
	APIAccessKey string

	// Key command
	Title string
	Link  string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
