package service

import (
	"strings"
)

// IsCorrectSelection reports whether selected names exactly the correct options.
// Order and duplicates are ignored; partial selections earn nothing.
func IsCorrectSelection(correct, selected []string) bool {
	want := optionSet(correct)
	got := optionSet(selected)
	if len(want) != len(got) {
		return false
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			return false
		}
	}
	return true
}

func optionSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// normalizeSelection trims and de-duplicates ids keeping first-seen order.
func normalizeSelection(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
