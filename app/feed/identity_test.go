package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestIdentityKeyDigest(t *testing.T) {
	sum := sha256.Sum256([]byte("https://example.com/a\nBreaking News"))
	want := hex.EncodeToString(sum[:])

	got := IdentityKey("Breaking News", "https://example.com/a")
	if got != want {
		t.Errorf("Expected key %s, got %s", want, got)
	}
	if len(got) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(got))
	}
}

func TestIdentityKeyDeterministic(t *testing.T) {
	first := IdentityKey("Title", "https://example.com/item?id=7")
	second := IdentityKey("Title", "https://example.com/item?id=7")

	if first != second {
		t.Error("Expected identical keys for identical input")
	}
}

func TestIdentityKeyCollapsesVariants(t *testing.T) {
	base := IdentityKey("Breaking News", "https://example.com/a")

	variants := []struct {
		title string
		link  string
	}{
		{"Breaking News", "https://example.com/a?utm_source=x"},
		{"Breaking News", "https://example.com/a?fbclid=1&utm_medium=rss"},
		{"  Breaking News\t", "https://example.com/a"},
		{"Breaking News", "  https://example.com/a?gclid=abc  "},
	}

	for _, v := range variants {
		if got := IdentityKey(v.title, v.link); got != base {
			t.Errorf("Expected %q / %q to collapse to the base key", v.title, v.link)
		}
	}
}

func TestIdentityKeyDistinguishes(t *testing.T) {
	base := IdentityKey("Breaking News", "https://example.com/a")

	if IdentityKey("Breaking news", "https://example.com/a") == base {
		t.Error("Expected title case to change the key")
	}
	if IdentityKey("Breaking News", "https://example.com/b") == base {
		t.Error("Expected a different link to change the key")
	}
	if IdentityKey("Breaking News", "https://example.com/a?id=2") == base {
		t.Error("Expected a non-tracking parameter to change the key")
	}
}
