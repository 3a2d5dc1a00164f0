// internal/search/orchestrator/state.go
package orchestrator

import (
	"fmt"

	"petopia-search/internal/models"
	"petopia-search/internal/search/filters"
)

// ModeKind tags the active SearchMode variant.
type ModeKind int

const (
	Idle ModeKind = iota
	PaginatedSearch
	MapBoundsSearch
	FavoritesView
)

func (k ModeKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case PaginatedSearch:
		return "paginated"
	case MapBoundsSearch:
		return "map-bounds"
	case FavoritesView:
		return "favorites"
	}
	return fmt.Sprintf("mode(%d)", int(k))
}

// SearchMode is exactly one of the four variants. Page is meaningful only for
// PaginatedSearch and Bounds only for MapBoundsSearch.
type SearchMode struct {
	Kind   ModeKind
	Page   int
	Bounds models.Bounds
}

func IdleMode() SearchMode                 { return SearchMode{Kind: Idle} }
func Paginated(page int) SearchMode        { return SearchMode{Kind: PaginatedSearch, Page: page} }
func MapBounds(b models.Bounds) SearchMode { return SearchMode{Kind: MapBoundsSearch, Bounds: b} }
func Favorites() SearchMode                { return SearchMode{Kind: FavoritesView} }

func (m SearchMode) String() string {
	switch m.Kind {
	case PaginatedSearch:
		return fmt.Sprintf("paginated{page=%d}", m.Page)
	case MapBoundsSearch:
		return fmt.Sprintf("map-bounds{sw=%g,%g ne=%g,%g}",
			m.Bounds.SouthWestLat, m.Bounds.SouthWestLng, m.Bounds.NorthEastLat, m.Bounds.NorthEastLng)
	}
	return m.Kind.String()
}

// ResultSet is replaced wholesale on every completed fetch.
type ResultSet struct {
	Items      []models.Facility
	TotalCount int
	Page       int
	TotalPages int
}

// TotalPages is ceil(total/size), and 0 for an empty result.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// State is the observable state after a transition. It is a copy; holders
// may keep it.
type State struct {
	Version     uint64
	Mode        SearchMode
	Filters     filters.Snapshot
	Results     ResultSet
	Loading     bool
	LastError   string
	Suggestions []string
	PageSize    int
	Closed      bool
}

func (s State) clone() State {
	out := s
	out.Results.Items = append([]models.Facility(nil), s.Results.Items...)
	out.Suggestions = append([]string(nil), s.Suggestions...)
	out.Filters.Categories = append([]string(nil), s.Filters.Categories...)
	out.Filters.PetSizes = append([]string(nil), s.Filters.PetSizes...)
	return out
}
