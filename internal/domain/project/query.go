package project

import (
	"slices"
	"strings"
	"time"
)

// Query selects projects by free text and tags.
type Query struct {
	Search string
	Tags   []string
}

// TagUniverse returns every distinct tag in first-seen order.
func TagUniverse(projects []Project) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range projects {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// Filter keeps projects matching the search term and carrying every selected
// tag. Input order is preserved.
func Filter(projects []Project, q Query) []Project {
	out := []Project{}
	for _, p := range projects {
		if Matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether a single project satisfies q.
func Matches(p Project, q Query) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Client), term) &&
			!strings.Contains(strings.ToLower(p.Notes), term) {
			return false
		}
	}
	for _, tag := range q.Tags {
		if !slices.Contains(p.Tags, tag) {
			return false
		}
	}
	return true
}

// ToggleTag removes tag from selected if present, otherwise appends it.
// selected is not modified.
func ToggleTag(selected []string, tag string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, t := range selected {
		if t == tag {
			found = true
			continue
		}
		out = append(out, t)
	}
	if !found {
		out = append(out, tag)
	}
	return out
}

// Recent returns up to n projects ordered by lastModified, newest first.
// Ties keep input order and unparseable timestamps sort last.
func Recent(projects []Project, n int) []Project {
	type entry struct {
		p  Project
		at time.Time
		ok bool
	}

	entries := make([]entry, len(projects))
	for i, p := range projects {
		at, ok := parseTimestamp(p.LastModified)
		entries[i] = entry{p: p, at: at, ok: ok}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	if n < 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]Project, 0, n)
	for _, e := range entries[:n] {
		out = append(out, e.p)
	}
	return out
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
