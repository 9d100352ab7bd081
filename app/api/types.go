package api

import (
	"context"
	"time"

	"github.com/lysyi3m/rss-relay/app/database"
)

type StateLoader interface {
	Load(ctx context.Context) (*database.State, error)
}

var _ StateLoader = (database.Store)(nil)

type Handler struct {
	store         StateLoader
	retentionDays int
	version       string
	now           func() time.Time
}
