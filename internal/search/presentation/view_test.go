// internal/search/presentation/view_test.go
package presentation

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petopia-search/internal/models"
	"petopia-search/internal/search/orchestrator"
)

func facility(id int64, name string, located bool) models.Facility {
	f := models.Facility{
		ID:               id,
		Name:             name,
		Category1:        "반려동물업",
		Category2:        "카페",
		RoadAddress:      "서울특별시 마포구 월드컵로 1",
		ParkingAvailable: "Y",
		AllowedPetSize:   "소형",
	}
	if located {
		lat, lng := 37.55, 126.91
		f.Latitude, f.Longitude = &lat, &lng
	}
	return f
}

func paginatedState(page, totalPages int, items ...models.Facility) orchestrator.State {
	return orchestrator.State{
		Mode:     orchestrator.Paginated(page),
		PageSize: 15,
		Results: orchestrator.ResultSet{
			Items:      items,
			TotalCount: totalPages * 15,
			Page:       page,
			TotalPages: totalPages,
		},
	}
}

func TestProject_MapBoundsMarkersStayInViewport(t *testing.T) {
	outside := facility(2, "부산 카페", false)
	lat, lng := 35.16, 129.06
	outside.Latitude, outside.Longitude = &lat, &lng

	viewport := models.Bounds{SouthWestLat: 37.4, SouthWestLng: 126.8, NorthEastLat: 37.7, NorthEastLng: 127.2}
	st := orchestrator.State{
		Mode: orchestrator.MapBounds(viewport),
		Results: orchestrator.ResultSet{
			Items:      []models.Facility{facility(1, "마포 카페", true), outside, facility(3, "좌표없음", false)},
			TotalCount: 3,
			TotalPages: 1,
		},
	}

	v := Project(st)

	assert.Len(t, v.Rows, 3)
	require.Len(t, v.Markers, 1)
	assert.Equal(t, int64(1), v.Markers[0].ID)

	// outside map-area search every located facility is placed
	st.Mode = orchestrator.Paginated(0)
	assert.Len(t, Project(st).Markers, 2)
}

func TestProject_RowsAndMarkers(t *testing.T) {
	st := paginatedState(1, 3, facility(10, "멍멍카페", true), facility(11, "좌표없는곳", false))

	v := Project(st)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, 16, v.Rows[0].Number)
	assert.Equal(t, "반려동물업 > 카페", v.Rows[0].Category)
	assert.Equal(t, "서울특별시 마포구 월드컵로 1", v.Rows[0].Address)

	require.Len(t, v.Markers, 1)
	assert.Equal(t, Marker{ID: 10, Name: "멍멍카페", Lat: 37.55, Lng: 126.91}, v.Markers[0])

	assert.Equal(t, "검색 결과 45건", v.Badge)
	assert.Equal(t, "전체 검색", v.ModeLabel)
	assert.Empty(t, v.EmptyText)
}

func TestProject_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		pages      []int
		hasPrev    bool
		hasNext    bool
		bar        string
	}{
		{"first of three", 0, 3, []int{0, 1, 2}, false, true, "[1] 2 3 »"},
		{"middle of first block", 2, 12, []int{0, 1, 2, 3, 4}, true, true, "« 1 2 [3] 4 5 »"},
		{"second block", 6, 12, []int{5, 6, 7, 8, 9}, true, true, "« 6 [7] 8 9 10 »"},
		{"last partial block", 11, 12, []int{10, 11}, true, false, "« 11 [12]"},
		{"single page", 0, 1, []int{0}, false, false, "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project(paginatedState(tt.page, tt.totalPages)).Pagination

			assert.True(t, p.Enabled)
			assert.Equal(t, tt.pages, p.Pages)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.bar, PageBar(p))
		})
	}
}

func TestProject_PaginationDisabledOutsidePaginatedSearch(t *testing.T) {
	bounds := models.Bounds{SouthWestLat: 37, SouthWestLng: 126, NorthEastLat: 38, NorthEastLng: 127}
	states := []orchestrator.State{
		{Mode: orchestrator.IdleMode()},
		{Mode: orchestrator.MapBounds(bounds), Results: orchestrator.ResultSet{Items: []models.Facility{facility(1, "a", true)}, TotalCount: 1, TotalPages: 1}},
		{Mode: orchestrator.Favorites(), Results: orchestrator.ResultSet{TotalPages: 1}},
		paginatedState(0, 0),
	}

	for _, st := range states {
		p := Project(st).Pagination
		assert.False(t, p.Enabled, "mode %s", st.Mode)
		assert.Empty(t, PageBar(p))
	}
}

func TestProject_LabelsAndEmptyText(t *testing.T) {
	tests := []struct {
		state orchestrator.State
		label string
		badge string
		empty string
	}{
		{orchestrator.State{Mode: orchestrator.IdleMode()}, "검색 대기", "검색 결과 0건", "검색어나 필터를 선택한 뒤 검색하세요."},
		{orchestrator.State{Mode: orchestrator.Favorites()}, "즐겨찾기", "즐겨찾기 0건", "즐겨찾기한 시설이 없습니다."},
		{orchestrator.State{Mode: orchestrator.MapBounds(models.Bounds{})}, "지도 영역 검색", "검색 결과 0건", "검색 결과가 없습니다."},
		{orchestrator.State{Mode: orchestrator.Paginated(0), LastError: "검색 중 오류가 발생했습니다."}, "전체 검색", "검색 결과 0건", ""},
		{orchestrator.State{Mode: orchestrator.Paginated(0), Loading: true}, "전체 검색", "검색 결과 0건", ""},
	}

	for _, tt := range tests {
		v := Project(tt.state)
		assert.Equal(t, tt.label, v.ModeLabel)
		assert.Equal(t, tt.badge, v.Badge)
		assert.Equal(t, tt.empty, v.EmptyText)
	}
}

func TestRender(t *testing.T) {
	items := make([]models.Facility, 0, 3)
	for i := 1; i <= 3; i++ {
		items = append(items, facility(int64(i), fmt.Sprintf("시설%d", i), true))
	}
	st := paginatedState(0, 2, items...)
	st.Suggestions = []string{"강아지 카페"}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Project(st)))

	out := buf.String()
	assert.Contains(t, out, "[전체 검색] 검색 결과 30건")
	assert.Contains(t, out, "시설1")
	assert.Contains(t, out, "시설3")
	assert.Contains(t, out, "[1] 2 »")
	assert.Contains(t, out, "추천 검색어: 강아지 카페")
}

func TestRender_ErrorBannerAndEmpty(t *testing.T) {
	st := orchestrator.State{Mode: orchestrator.Paginated(0), LastError: "검색 중 오류가 발생했습니다."}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Project(st)))
	assert.Equal(t, "[전체 검색] 검색 결과 0건\n! 검색 중 오류가 발생했습니다.\n", buf.String())

	buf.Reset()
	require.NoError(t, Render(&buf, Project(orchestrator.State{Mode: orchestrator.Favorites()})))
	assert.Equal(t, "[즐겨찾기] 즐겨찾기 0건\n즐겨찾기한 시설이 없습니다.\n", buf.String())
}
