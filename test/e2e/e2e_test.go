// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petopia-search/internal/common/auth"
	"petopia-search/internal/common/cache"
	"petopia-search/internal/common/config"
	commonhttp "petopia-search/internal/common/http"
	"petopia-search/internal/common/logger"
	"petopia-search/internal/console"
	"petopia-search/internal/facilityapi"
	"petopia-search/internal/models"
	"petopia-search/internal/search/filters"
	"petopia-search/internal/search/orchestrator"
	"petopia-search/internal/search/presentation"
	"petopia-search/pkg/regions"
)

const totalFacilities = 20

// ==========================
// Fake Petopia backend
// ==========================

type backend struct {
	mu      sync.Mutex
	calls   map[string][]url.Values
	token   string
	noBound bool
}

func newBackend(token string) *backend {
	return &backend{calls: make(map[string][]url.Values), token: token, noBound: true}
}

func (b *backend) record(path string, q url.Values) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[path] = append(b.calls[path], q)
}

func (b *backend) callsTo(path string) []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]url.Values(nil), b.calls[path]...)
}

func facility(id int, name string) map[string]interface{} {
	return map[string]interface{}{
		"id":          id,
		"name":        name,
		"category2":   "카페",
		"roadAddress": "서울특별시 강남구 테헤란로 " + fmt.Sprint(id),
		"latitude":    37.5 + float64(id%100)/1000,
		"longitude":   127.03,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path[len("/api"):]
	b.record(path, r.URL.Query())

	switch path {
	case facilityapi.PathRegions:
		writeJSON(w, []string{"서울특별시", "부산광역시"})
	case facilityapi.PathSubRegions:
		writeJSON(w, []string{"강남구", "마포구"})
	case facilityapi.PathCategories:
		writeJSON(w, []string{"카페", "동물병원", "반려동물용품"})
	case facilityapi.PathSearch:
		var page, size int
		fmt.Sscan(r.URL.Query().Get("page"), &page)
		fmt.Sscan(r.URL.Query().Get("size"), &size)
		content := []map[string]interface{}{}
		for i := page * size; i < totalFacilities && i < (page+1)*size; i++ {
			content = append(content, facility(i+1, fmt.Sprintf("멍멍카페 %d호점", i+1)))
		}
		writeJSON(w, map[string]interface{}{"content": content, "totalElements": totalFacilities})
	case facilityapi.PathBoundsFiltered:
		if b.noBound {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, []map[string]interface{}{facility(100, "필터 지도 결과")})
	case facilityapi.PathBoundsUnfiltered:
		writeJSON(w, []map[string]interface{}{facility(201, "지도 결과 A"), facility(202, "지도 결과 B")})
	case facilityapi.PathFavorites:
		if r.Header.Get("Authorization") != "Bearer "+b.token || b.token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []map[string]interface{}{facility(7, "즐겨찾는 카페")})
	case facilityapi.PathSuggestions:
		writeJSON(w, []string{"강아지 카페", "강아지 호텔"})
	default:
		http.NotFound(w, r)
	}
}

// ==========================
// Stack wiring
// ==========================

type stack struct {
	backend *backend
	redis   *miniredis.Miniredis
	api     *facilityapi.Client
	store   *filters.Store
	orch    *orchestrator.Orchestrator
}

func newStack(t *testing.T, be *backend, tokenFile string) *stack {
	t.Helper()
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rc := cache.NewRedis(config.CacheConfig{
		Prefix: "petopia:options",
		Redis:  config.RedisConfig{Address: mr.Addr()},
	})
	t.Cleanup(func() { _ = rc.Close() })

	log := logger.NewTestLogger(t)
	tokens := auth.NewTokenStore(tokenFile, "")
	api := facilityapi.NewClient(commonhttp.NewClient(commonhttp.Options{
		BaseURL: srv.URL + "/api",
		Timeout: 5 * time.Second,
		Token:   tokens.Token,
	}), log)

	store := filters.NewStore(filters.NewCachedOptionSource(api, rc, time.Hour, log), regions.Default(), log)
	orch := orchestrator.New(api, store, orchestrator.Config{
		PageSize:        15,
		Debounce:        50 * time.Millisecond,
		BoundsLimit:     100,
		SuggestionLimit: 5,
	}, log)
	t.Cleanup(orch.Close)

	return &stack{backend: be, redis: mr, api: api, store: store, orch: orch}
}

func (s *stack) dispatch(in orchestrator.Intent) orchestrator.State {
	s.orch.Dispatch(in)
	s.orch.Wait()
	return s.orch.State()
}

func writeToken(t *testing.T, exp time.Time) (string, string) {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("e2e-secret"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte(signed+"\n"), 0o600))
	return path, signed
}

// ==========================
// Paginated search
// ==========================

func TestE2E_FilteredPaginatedSearch(t *testing.T) {
	s := newStack(t, newBackend(""), "")
	s.store.LoadOptions(context.Background())

	assert.Equal(t, []string{filters.All, "카페", "동물병원", "반려동물용품"}, s.store.Options().Categories)
	assert.True(t, s.redis.Exists("petopia:options:regions"))
	assert.True(t, s.redis.Exists("petopia:options:categories"))

	st := s.dispatch(orchestrator.SelectRegion{Region: "서울특별시"})
	assert.Equal(t, orchestrator.Idle, st.Mode.Kind)
	assert.Equal(t, []string{filters.All, "강남구", "마포구"}, s.store.Options().SubRegions)

	s.dispatch(orchestrator.SelectSubRegion{SubRegion: "강남구"})
	s.dispatch(orchestrator.ToggleCategory{Value: "카페"})
	s.dispatch(orchestrator.SetParking{Value: filters.ParkingYes})
	assert.Empty(t, s.backend.callsTo(facilityapi.PathSearch))

	st = s.dispatch(orchestrator.SubmitSearch{})
	require.Empty(t, st.LastError)
	assert.Equal(t, orchestrator.Paginated(0), st.Mode)
	assert.Len(t, st.Results.Items, 15)
	assert.Equal(t, totalFacilities, st.Results.TotalCount)
	assert.Equal(t, 2, st.Results.TotalPages)

	searches := s.backend.callsTo(facilityapi.PathSearch)
	require.Len(t, searches, 1)
	q := searches[0]
	assert.Equal(t, "서울특별시", q.Get("sidoName"))
	assert.Equal(t, "강남구", q.Get("sigunguName"))
	assert.Equal(t, "카페", q.Get("category2"))
	assert.Equal(t, "Y", q.Get("parkingAvailable"))
	assert.Equal(t, "0", q.Get("page"))
	assert.Equal(t, "15", q.Get("size"))

	st = s.dispatch(orchestrator.ChangePage{Page: 1})
	assert.Equal(t, orchestrator.Paginated(1), st.Mode)
	assert.Len(t, st.Results.Items, 5)

	var out bytes.Buffer
	require.NoError(t, presentation.Render(&out, presentation.Project(st)))
	assert.Contains(t, out.String(), "[전체 검색] 검색 결과 20건")
	assert.Contains(t, out.String(), "멍멍카페 16호점")
	assert.Contains(t, out.String(), "[2]")

	// a filter change restarts from the first page
	st = s.dispatch(orchestrator.ToggleCategory{Value: "카페"})
	assert.Equal(t, orchestrator.Paginated(0), st.Mode)
	searches = s.backend.callsTo(facilityapi.PathSearch)
	require.Len(t, searches, 3)
	assert.Empty(t, searches[2].Get("category2"))
}

func TestE2E_OptionCacheSharedAcrossSessions(t *testing.T) {
	be := newBackend("")
	first := newStack(t, be, "")
	first.store.LoadOptions(context.Background())
	first.dispatch(orchestrator.SelectRegion{Region: "서울특별시"})

	// a second store on the same redis serves the lists without the backend
	log := logger.NewTestLogger(t)
	rc := cache.NewRedis(config.CacheConfig{
		Prefix: "petopia:options",
		Redis:  config.RedisConfig{Address: first.redis.Addr()},
	})
	t.Cleanup(func() { _ = rc.Close() })
	second := filters.NewStore(filters.NewCachedOptionSource(first.api, rc, time.Hour, log), regions.Default(), log)
	second.LoadOptions(context.Background())
	second.SetRegion(context.Background(), "서울특별시")

	assert.Len(t, be.callsTo(facilityapi.PathRegions), 1)
	assert.Len(t, be.callsTo(facilityapi.PathCategories), 1)
	assert.Len(t, be.callsTo(facilityapi.PathSubRegions), 1)
	assert.Equal(t, []string{filters.All, "강남구", "마포구"}, second.Options().SubRegions)
}

// ==========================
// Map bounds search
// ==========================

func TestE2E_BoundsFallsBackToUnfilteredEndpoint(t *testing.T) {
	s := newStack(t, newBackend(""), "")
	s.dispatch(orchestrator.ToggleCategory{Value: "카페"})
	s.dispatch(orchestrator.ChangeQuery{Text: "멍멍"})

	b := models.Bounds{SouthWestLat: 37.48, SouthWestLng: 126.90, NorthEastLat: 37.58, NorthEastLng: 127.05}
	st := s.dispatch(orchestrator.SearchBounds{Bounds: b})

	require.Empty(t, st.LastError)
	assert.Equal(t, orchestrator.MapBounds(b), st.Mode)
	assert.Len(t, st.Results.Items, 2)

	filtered := s.backend.callsTo(facilityapi.PathBoundsFiltered)
	require.Len(t, filtered, 1)
	assert.Equal(t, "카페", filtered[0].Get("category2"))
	assert.Equal(t, "100", filtered[0].Get("limit"))

	unfiltered := s.backend.callsTo(facilityapi.PathBoundsUnfiltered)
	require.Len(t, unfiltered, 1)
	assert.Equal(t, "37.48", unfiltered[0].Get("southWestLat"))
	assert.Equal(t, "멍멍", unfiltered[0].Get("searchQuery"))
	assert.Empty(t, unfiltered[0].Get("category2"))

	view := presentation.Project(st)
	assert.Equal(t, "지도 영역 검색", view.ModeLabel)
	assert.Len(t, view.Markers, 2)
	assert.False(t, view.Pagination.Enabled)
}

func TestE2E_BoundsFilteredEndpoint(t *testing.T) {
	be := newBackend("")
	be.noBound = false
	s := newStack(t, be, "")

	st := s.dispatch(orchestrator.SearchBounds{Bounds: models.Bounds{
		SouthWestLat: 35.1, SouthWestLng: 129.0, NorthEastLat: 35.2, NorthEastLng: 129.2,
	}})
	require.Len(t, st.Results.Items, 1)
	assert.Equal(t, "필터 지도 결과", st.Results.Items[0].Name)
	assert.Empty(t, be.callsTo(facilityapi.PathBoundsUnfiltered))
}

// ==========================
// Favorites
// ==========================

func TestE2E_FavoritesWithSavedToken(t *testing.T) {
	path, token := writeToken(t, time.Now().Add(time.Hour))
	s := newStack(t, newBackend(token), path)

	s.dispatch(orchestrator.SubmitSearch{})
	st := s.dispatch(orchestrator.ShowFavorites{})
	require.Empty(t, st.LastError)
	assert.Equal(t, orchestrator.FavoritesView, st.Mode.Kind)
	require.Len(t, st.Results.Items, 1)
	assert.Equal(t, "즐겨찾는 카페", st.Results.Items[0].Name)
	assert.Equal(t, "즐겨찾기 1건", presentation.Project(st).Badge)

	// filters and pages do nothing until the user leaves favorites
	before := s.backend.callsTo(facilityapi.PathSearch)
	s.dispatch(orchestrator.ToggleCategory{Value: "카페"})
	s.dispatch(orchestrator.ChangePage{Page: 1})
	assert.Equal(t, before, s.backend.callsTo(facilityapi.PathSearch))

	st = s.dispatch(orchestrator.ShowAll{})
	assert.Equal(t, orchestrator.Paginated(0), st.Mode)
}

func TestE2E_FavoritesWithExpiredToken(t *testing.T) {
	path, token := writeToken(t, time.Now().Add(-time.Hour))
	s := newStack(t, newBackend(token), path)

	st := s.dispatch(orchestrator.ShowFavorites{})
	assert.Equal(t, orchestrator.FavoritesView, st.Mode.Kind)
	assert.Empty(t, st.Results.Items)
	assert.Contains(t, st.LastError, "로그인이 필요합니다")

	favs := s.backend.callsTo(facilityapi.PathFavorites)
	require.Len(t, favs, 1)
}

// ==========================
// Typeahead
// ==========================

func TestE2E_SuggestionsAfterDebounce(t *testing.T) {
	s := newStack(t, newBackend(""), "")

	s.orch.Dispatch(orchestrator.ChangeQuery{Text: "강"})
	s.orch.Dispatch(orchestrator.ChangeQuery{Text: "강아"})
	s.orch.Dispatch(orchestrator.ChangeQuery{Text: "강아지"})

	require.Eventually(t, func() bool {
		return len(s.orch.State().Suggestions) == 2
	}, 2*time.Second, 10*time.Millisecond)
	s.orch.Wait()

	calls := s.backend.callsTo(facilityapi.PathSuggestions)
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, "강아지", last.Get("query"))
	assert.Equal(t, "5", last.Get("limit"))
	assert.Equal(t, orchestrator.Idle, s.orch.State().Mode.Kind)
}

// ==========================
// Interactive shell
// ==========================

func TestE2E_ShellSession(t *testing.T) {
	path, token := writeToken(t, time.Now().Add(time.Hour))
	s := newStack(t, newBackend(token), path)
	s.store.LoadOptions(context.Background())

	var out bytes.Buffer
	sh := console.NewShell(s.orch, s.store, console.NewParser(regions.Default()), &out, logger.NewTestLogger(t))

	script := "region 서울\nsub 강남구\ncat 카페\nsearch\nnext\nbounds 37.48 126.90 37.58 127.05\nfav\nquit\n"
	require.NoError(t, sh.Run(context.Background(), bytes.NewBufferString(script)))

	got := out.String()
	assert.Contains(t, got, "검색 결과 20건")
	assert.Contains(t, got, "멍멍카페 16호점")
	assert.Contains(t, got, "지도 결과 A")
	assert.Contains(t, got, "즐겨찾는 카페")
	assert.Equal(t, orchestrator.FavoritesView, s.orch.State().Mode.Kind)
}
