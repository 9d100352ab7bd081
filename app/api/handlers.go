package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
)

func NewHandler(store StateLoader, retentionDays int, version string) *Handler {
	return &Handler{
		store:         store,
		retentionDays: retentionDays,
		version:       version,
		now:           time.Now,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	state, ok := h.loadState(c)
	if !ok {
		return
	}

	stats := state.Stats()
	now := h.now()

	c.JSON(http.StatusOK, gin.H{
		"records":           stats.Records,
		"malformed":         stats.Malformed,
		"oldest_first_seen": formatTime(stats.Oldest),
		"newest_first_seen": formatTime(stats.Newest),
		"retention_days":    h.retentionDays,
		"prune_cutoff":      time.Unix(database.PruneCutoff(now, h.retentionDays), 0).Format(time.RFC3339),
		"expired":           state.Expired(now, h.retentionDays),
	})
}

func (h *Handler) GetItem(c *gin.Context) {
	key := strings.ToLower(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing key parameter"})
		return
	}

	state, ok := h.loadState(c)
	if !ok {
		return
	}

	if !state.Contains(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	item := gin.H{"key": key}
	if ts, ok := state.FirstSeen(key); ok {
		item["first_seen"] = time.Unix(ts, 0).Format(time.RFC3339)
		item["first_seen_unix"] = ts
	} else {
		item["malformed"] = true
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) LookupItem(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	link := strings.TrimSpace(c.Query("link"))
	if title == "" || link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both title and link query parameters are required"})
		return
	}

	state, ok := h.loadState(c)
	if !ok {
		return
	}

	key := feed.IdentityKey(title, link)
	result := gin.H{
		"key":             key,
		"normalized_link": feed.NormalizeURL(link),
		"seen":            state.Contains(key),
	}
	if ts, ok := state.FirstSeen(key); ok {
		result["first_seen"] = time.Unix(ts, 0).Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) loadState(c *gin.Context) (*database.State, bool) {
	state, err := h.store.Load(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load state"})
		return nil, false
	}
	return state, true
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
