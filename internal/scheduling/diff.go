package scheduling

import "strings"

// Dedupe trims ids, drops blanks and repeats, and keeps first-seen order.
func Dedupe(ids []string) []string {
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

// Partition splits the deduplicated requested ids into ones not yet present in existing and ones
// that are.
func Partition(requested, existing []string) (fresh, already []string) {
	present := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		present[id] = struct{}{}
	}
	fresh = make([]string, 0, len(requested))
	already = make([]string, 0)
	for _, id := range Dedupe(requested) {
		if _, ok := present[id]; ok {
			already = append(already, id)
			continue
		}
		fresh = append(fresh, id)
	}
	return fresh, already
}
