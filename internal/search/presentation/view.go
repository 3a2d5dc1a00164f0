// internal/search/presentation/view.go
package presentation

import (
	"fmt"
	"strings"

	"petopia-search/internal/models"
	"petopia-search/internal/search/orchestrator"
)

// PageWindow is how many page buttons the pagination bar shows at once.
const PageWindow = 5

// View is everything the front-end draws for one orchestrator state.
type View struct {
	ModeLabel   string
	Badge       string
	Banner      string
	Loading     bool
	Rows        []Row
	Markers     []Marker
	Pagination  Pagination
	Suggestions []string
	EmptyText   string
}

type Row struct {
	Number   int
	ID       int64
	Name     string
	Category string
	Address  string
	Phone    string
	Hours    string
	Parking  string
	PetSize  string
}

// Marker is a map pin. Facilities without coordinates have none.
type Marker struct {
	ID   int64
	Name string
	Lat  float64
	Lng  float64
}

// Pagination is the page bar. Pages holds zero-based indices.
type Pagination struct {
	Enabled    bool
	Current    int
	TotalPages int
	Pages      []int
	HasPrev    bool
	HasNext    bool
}

// Project maps a state to its view. It performs no I/O.
func Project(st orchestrator.State) View {
	v := View{
		ModeLabel:   modeLabel(st.Mode),
		Badge:       fmt.Sprintf("검색 결과 %d건", st.Results.TotalCount),
		Banner:      st.LastError,
		Loading:     st.Loading,
		Suggestions: append([]string(nil), st.Suggestions...),
		Pagination:  paginate(st),
	}
	if st.Mode.Kind == orchestrator.FavoritesView {
		v.Badge = fmt.Sprintf("즐겨찾기 %d건", st.Results.TotalCount)
	}

	offset := 0
	if st.Mode.Kind == orchestrator.PaginatedSearch {
		offset = st.Results.Page * st.PageSize
	}
	for i, f := range st.Results.Items {
		v.Rows = append(v.Rows, row(offset+i+1, f))
		if visible(st.Mode, f) {
			v.Markers = append(v.Markers, Marker{ID: f.ID, Name: f.Name, Lat: *f.Latitude, Lng: *f.Longitude})
		}
	}

	if len(v.Rows) == 0 && !st.Loading {
		v.EmptyText = emptyText(st)
	}
	return v
}

// visible reports whether f gets a map marker. In map-area search only
// facilities inside the searched viewport are placed.
func visible(m orchestrator.SearchMode, f models.Facility) bool {
	if !f.HasCoordinates() {
		return false
	}
	if m.Kind == orchestrator.MapBoundsSearch {
		return m.Bounds.Contains(*f.Latitude, *f.Longitude)
	}
	return true
}

func row(n int, f models.Facility) Row {
	return Row{
		Number:   n,
		ID:       f.ID,
		Name:     f.Name,
		Category: joinNonEmpty(" > ", f.Category1, f.Category2, f.Category3),
		Address:  f.Address(),
		Phone:    f.PhoneNumber,
		Hours:    f.OperatingHours,
		Parking:  f.ParkingAvailable,
		PetSize:  f.AllowedPetSize,
	}
}

func paginate(st orchestrator.State) Pagination {
	p := Pagination{
		Current:    st.Results.Page,
		TotalPages: st.Results.TotalPages,
	}
	if st.Mode.Kind != orchestrator.PaginatedSearch || st.Results.TotalPages < 1 {
		return p
	}

	p.Enabled = true
	start := (p.Current / PageWindow) * PageWindow
	end := start + PageWindow
	if end > p.TotalPages {
		end = p.TotalPages
	}
	for i := start; i < end; i++ {
		p.Pages = append(p.Pages, i)
	}
	p.HasPrev = p.Current > 0
	p.HasNext = p.Current < p.TotalPages-1
	return p
}

func modeLabel(m orchestrator.SearchMode) string {
	switch m.Kind {
	case orchestrator.PaginatedSearch:
		return "전체 검색"
	case orchestrator.MapBoundsSearch:
		return "지도 영역 검색"
	case orchestrator.FavoritesView:
		return "즐겨찾기"
	}
	return "검색 대기"
}

func emptyText(st orchestrator.State) string {
	switch {
	case st.LastError != "":
		return ""
	case st.Mode.Kind == orchestrator.Idle:
		return "검색어나 필터를 선택한 뒤 검색하세요."
	case st.Mode.Kind == orchestrator.FavoritesView:
		return "즐겨찾기한 시설이 없습니다."
	}
	return "검색 결과가 없습니다."
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
