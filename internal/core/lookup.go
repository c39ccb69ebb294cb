package core

import (
	"strings"

	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/model"
)

// LookupByID finds an entry by id. Returns nil if not found.
func LookupByID(entries []history.Entry, id string) *history.Entry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

// LookupByIndex finds an entry by its 1-based index.
func LookupByIndex(entries []history.Entry, index int) *history.Entry {
	idx := index - 1
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	return &entries[idx]
}

// Search returns entries whose message contains term, ignoring case.
func Search(entries []history.Entry, term string) []history.Entry {
	if term == "" {
		return entries
	}

	term = strings.ToLower(term)
	var result []history.Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Message), term) {
			result = append(result, e)
		}
	}
	return result
}

// CountByType tallies entries per toast type.
func CountByType(entries []history.Entry) map[model.Type]int {
	counts := make(map[model.Type]int)
	for _, e := range entries {
		counts[e.Type]++
	}
	return counts
}
