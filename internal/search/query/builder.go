// internal/search/query/builder.go
package query

import (
	"sort"
	"strconv"
	"strings"

	"petopia-search/internal/models"
	"petopia-search/internal/search/filters"
)

// Backend parameter names.
const (
	KeyRegion      = "sidoName"
	KeySubRegion   = "sigunguName"
	KeyCategory    = "category2"
	KeyPetSize     = "allowedPetSize"
	KeyParking     = "parkingAvailable"
	KeyIndoor      = "indoorFacility"
	KeyOutdoor     = "outdoorFacility"
	KeySearchQuery = "searchQuery"
	KeyPage        = "page"
	KeySize        = "size"

	KeySouthWestLat = "southWestLat"
	KeyNorthEastLat = "northEastLat"
	KeySouthWestLng = "southWestLng"
	KeyNorthEastLng = "northEastLng"
	KeyLimit        = "limit"

	KeySuggestQuery = "query"
)

// Build converts a filter snapshot and pagination cursor into the parameters
// of GET /pet_facilities/search. It is pure: equal inputs give equal Params.
func Build(s filters.Snapshot, page, size int) Params {
	p := filterParams(s)
	p = p.Add(KeyPage, strconv.Itoa(page))
	p = p.Add(KeySize, strconv.Itoa(size))
	return p
}

// BuildBounds builds the parameters of the filtered bounds endpoint.
func BuildBounds(s filters.Snapshot, b models.Bounds, limit int) Params {
	p := boundsParams(b)
	if limit > 0 {
		p = p.Add(KeyLimit, strconv.Itoa(limit))
	}
	return append(p, filterParams(s)...)
}

// BuildUnfilteredBounds builds the parameters of the unfiltered bounds
// endpoint: bounds and free text only.
func BuildUnfilteredBounds(b models.Bounds, searchQuery string) Params {
	p := boundsParams(b)
	if q := strings.TrimSpace(searchQuery); q != "" {
		p = p.Add(KeySearchQuery, q)
	}
	return p
}

func BuildSuggestions(text string, limit int) Params {
	var p Params
	p = p.Add(KeySuggestQuery, strings.TrimSpace(text))
	if limit > 0 {
		p = p.Add(KeyLimit, strconv.Itoa(limit))
	}
	return p
}

func filterParams(s filters.Snapshot) Params {
	var p Params
	if v, ok := selected(s.Region); ok {
		p = p.Add(KeyRegion, v)
	}
	if v, ok := selected(s.SubRegion); ok {
		p = p.Add(KeySubRegion, v)
	}
	for _, v := range members(s.Categories) {
		p = p.Add(KeyCategory, v)
	}
	for _, v := range members(s.PetSizes) {
		p = p.Add(KeyPetSize, v)
	}
	if v, ok := selected(s.Parking); ok {
		p = p.Add(KeyParking, v)
	}
	switch strings.TrimSpace(s.FacilityType) {
	case filters.FacilityIndoor:
		p = p.Add(KeyIndoor, "Y")
	case filters.FacilityOutdoor:
		p = p.Add(KeyOutdoor, "Y")
	}
	if q := strings.TrimSpace(s.SearchQuery); q != "" {
		p = p.Add(KeySearchQuery, q)
	}
	return p
}

func boundsParams(b models.Bounds) Params {
	var p Params
	p = p.Add(KeySouthWestLat, formatCoord(b.SouthWestLat))
	p = p.Add(KeyNorthEastLat, formatCoord(b.NorthEastLat))
	p = p.Add(KeySouthWestLng, formatCoord(b.SouthWestLng))
	p = p.Add(KeyNorthEastLng, formatCoord(b.NorthEastLng))
	return p
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func selected(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == filters.All {
		return "", false
	}
	return v, true
}

// members returns the non-sentinel members of a multi-select, sorted.
func members(set []string) []string {
	out := make([]string, 0, len(set))
	seen := make(map[string]bool, len(set))
	for _, v := range set {
		if v, ok := selected(v); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
