// internal/search/orchestrator/intents.go
package orchestrator

import "petopia-search/internal/models"

// Intent is a user action or an internal event consumed by Dispatch.
type Intent interface {
	intentName() string
}

// SubmitSearch is the search button or Enter key.
type SubmitSearch struct{}

// ChangeQuery is a keystroke in the free-text box.
type ChangeQuery struct{ Text string }

type ChangePage struct{ Page int }

// SearchBounds is "search this area" with the current map viewport.
type SearchBounds struct{ Bounds models.Bounds }

// ShowAll is the "전체검색" button: back to paginated search from page 0.
type ShowAll struct{}

type ShowFavorites struct{}

type SelectRegion struct{ Region string }

type SelectSubRegion struct{ SubRegion string }

type ToggleCategory struct{ Value string }

type TogglePetSize struct{ Value string }

type SetParking struct{ Value string }

type SetFacilityType struct{ Value string }

// ResetFilters restores every filter to 전체 and clears the free text.
type ResetFilters struct{}

func (SubmitSearch) intentName() string    { return "submit_search" }
func (ChangeQuery) intentName() string     { return "change_query" }
func (ChangePage) intentName() string      { return "change_page" }
func (SearchBounds) intentName() string    { return "search_bounds" }
func (ShowAll) intentName() string         { return "show_all" }
func (ShowFavorites) intentName() string   { return "show_favorites" }
func (SelectRegion) intentName() string    { return "select_region" }
func (SelectSubRegion) intentName() string { return "select_sub_region" }
func (ToggleCategory) intentName() string  { return "toggle_category" }
func (TogglePetSize) intentName() string   { return "toggle_pet_size" }
func (SetParking) intentName() string      { return "set_parking" }
func (SetFacilityType) intentName() string { return "set_facility_type" }
func (ResetFilters) intentName() string    { return "reset_filters" }

// internal events

type debounceElapsed struct{ token uint64 }

type fetchKind string

const (
	kindSearch      fetchKind = "search"
	kindBounds      fetchKind = "bounds"
	kindFavorites   fetchKind = "favorites"
	kindSuggestions fetchKind = "suggestions"
)

type fetchCompleted struct {
	seq     uint64
	kind    fetchKind
	mode    SearchMode
	results ResultSet
	err     error
}

type suggestionsCompleted struct {
	seq         uint64
	suggestions []string
	err         error
}

func (debounceElapsed) intentName() string      { return "debounce_elapsed" }
func (fetchCompleted) intentName() string       { return "fetch_completed" }
func (suggestionsCompleted) intentName() string { return "suggestions_completed" }
