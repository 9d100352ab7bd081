package feed

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Filterer struct {
	excludes []string
}

func NewFilterer(excludes []string) *Filterer {
	return &Filterer{excludes: excludes}
}

// IsExcluded reports whether title is blank or contains any of the exclude
// words, ignoring case.
func IsExcluded(title string, excludes []string) bool {
	return NewFilterer(excludes).IsExcluded(title)
}

func (f *Filterer) IsExcluded(title string) bool {
	excluded, _ := f.Match(title)
	return excluded
}

func (f *Filterer) Match(title string) (bool, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return true, "empty title"
	}

	lowered := f.lower(title)
	for _, exclude := range f.excludes {
		if exclude == "" {
			continue
		}
		if strings.Contains(title, exclude) || strings.Contains(lowered, f.lower(exclude)) {
			return true, fmt.Sprintf("contains '%s'", exclude)
		}
	}

	return false, ""
}

// A Caser keeps state between calls, so each conversion gets its own.
func (f *Filterer) lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func (f *Filterer) Len() int {
	return len(f.excludes)
}
