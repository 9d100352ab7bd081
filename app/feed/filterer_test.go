package feed

import "testing"

func TestIsExcludedEmptyTitle(t *testing.T) {
	lists := [][]string{nil, {}, {"anything"}, {""}}

	for _, excludes := range lists {
		for _, title := range []string{"", "   ", "\t\n"} {
			if !IsExcluded(title, excludes) {
				t.Errorf("Expected blank title %q to be excluded with %v", title, excludes)
			}
		}
	}
}

func TestIsExcludedMatches(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		excludes []string
		want     bool
	}{
		{"no excludes", "Breaking News", nil, false},
		{"exact case", "Sponsored: buy now", []string{"Sponsored"}, true},
		{"lower pattern", "Sponsored: buy now", []string{"sponsored"}, true},
		{"upper pattern", "Sponsored: buy now", []string{"SPONSORED"}, true},
		{"substring in word", "Advertisement", []string{"vert"}, true},
		{"no match", "Weather Report", []string{"sponsored", "ad:"}, false},
		{"empty pattern skipped", "Weather Report", []string{"", "zzz"}, false},
		{"unicode case", "ÉCOLE fermée", []string{"école"}, true},
		{"japanese", "【PR】新商品のお知らせ", []string{"【PR】"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExcluded(tt.title, tt.excludes); got != tt.want {
				t.Errorf("IsExcluded(%q, %v) = %v, want %v", tt.title, tt.excludes, got, tt.want)
			}
		})
	}
}

func TestIsExcludedOrderIndependent(t *testing.T) {
	title := "Tech Advertisement"
	forward := []string{"sports", "advert", "weather"}
	backward := []string{"weather", "advert", "sports"}

	if IsExcluded(title, forward) != IsExcluded(title, backward) {
		t.Error("Expected exclude word order not to affect the result")
	}
}

func TestFiltererMatchReason(t *testing.T) {
	filterer := NewFilterer([]string{"sponsored"})

	excluded, reason := filterer.Match("Sponsored: buy now")
	if !excluded {
		t.Fatal("Expected title to be excluded")
	}
	if reason != "contains 'sponsored'" {
		t.Errorf("Unexpected reason: %s", reason)
	}

	excluded, reason = filterer.Match(" ")
	if !excluded || reason != "empty title" {
		t.Errorf("Expected empty title reason, got %v %q", excluded, reason)
	}

	excluded, reason = filterer.Match("Breaking News")
	if excluded || reason != "" {
		t.Errorf("Expected no match, got %v %q", excluded, reason)
	}

	if filterer.Len() != 1 {
		t.Errorf("Expected 1 exclude word, got %d", filterer.Len())
	}
}
