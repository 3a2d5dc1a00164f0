// internal/search/filters/selection.go
package filters

import (
	"sort"
	"strings"
)

// selection is a multi-select set. It is never empty and never holds the
// sentinel together with another member.
type selection map[string]struct{}

func newSelection() selection {
	return selection{All: {}}
}

// toggle applies one user click:
//   - the sentinel resets the set to {All};
//   - any other value flips its membership and evicts the sentinel;
//   - removing the last real member brings the sentinel back.
func (s selection) toggle(value string) {
	value = strings.TrimSpace(value)
	if value == "" || value == All {
		for k := range s {
			delete(s, k)
		}
		s[All] = struct{}{}
		return
	}

	if _, ok := s[value]; ok {
		delete(s, value)
	} else {
		s[value] = struct{}{}
	}
	delete(s, All)

	if len(s) == 0 {
		s[All] = struct{}{}
	}
}

func (s selection) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Toggle is the pure form of a multi-select click: it returns the set that
// results from clicking value on members.
func Toggle(members []string, value string) []string {
	s := selection{}
	for _, m := range members {
		s[m] = struct{}{}
	}
	if len(s) == 0 {
		s[All] = struct{}{}
	}
	if _, ok := s[All]; ok && len(s) > 1 {
		delete(s, All)
	}
	s.toggle(value)
	return s.sorted()
}
