// internal/search/orchestrator/backend_test.go
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"petopia-search/internal/models"
	"petopia-search/internal/search/query"
)

type backendCall struct {
	kind   string
	params query.Params
	ctx    context.Context
}

// fakeBackend records every call. A nil hook answers with generated data.
type fakeBackend struct {
	mu    sync.Mutex
	calls []backendCall

	search         func(ctx context.Context, params query.Params) (*models.FacilityPage, error)
	boundsFiltered func(ctx context.Context, params query.Params) ([]models.Facility, error)
	bounds         func(ctx context.Context, params query.Params) ([]models.Facility, error)
	favorites      func(ctx context.Context) ([]models.Facility, error)
	suggestions    func(ctx context.Context, params query.Params) ([]string, error)
}

func (f *fakeBackend) record(ctx context.Context, kind string, params query.Params) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, backendCall{kind: kind, params: params, ctx: ctx})
}

func (f *fakeBackend) callsOf(kind string) []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []backendCall
	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeBackend) Search(ctx context.Context, params query.Params) (*models.FacilityPage, error) {
	f.record(ctx, "search", params)
	if f.search != nil {
		return f.search(ctx, params)
	}
	page, _ := params.Get(query.KeyPage)
	return &models.FacilityPage{
		Content:       facilities(fmt.Sprintf("p%s-", page), 15),
		TotalElements: 31,
	}, nil
}

func (f *fakeBackend) SearchBoundsFiltered(ctx context.Context, params query.Params) ([]models.Facility, error) {
	f.record(ctx, "bounds-filtered", params)
	if f.boundsFiltered != nil {
		return f.boundsFiltered(ctx, params)
	}
	return facilities("bounds-", 4), nil
}

func (f *fakeBackend) SearchBounds(ctx context.Context, params query.Params) ([]models.Facility, error) {
	f.record(ctx, "bounds", params)
	if f.bounds != nil {
		return f.bounds(ctx, params)
	}
	return facilities("plain-", 2), nil
}

func (f *fakeBackend) Favorites(ctx context.Context) ([]models.Facility, error) {
	f.record(ctx, "favorites", nil)
	if f.favorites != nil {
		return f.favorites(ctx)
	}
	return facilities("fav-", 3), nil
}

func (f *fakeBackend) Suggestions(ctx context.Context, params query.Params) ([]string, error) {
	f.record(ctx, "suggestions", params)
	if f.suggestions != nil {
		return f.suggestions(ctx, params)
	}
	text, _ := params.Get(query.KeySuggestQuery)
	return []string{text + " 카페", text + " 공원"}, nil
}

func facilities(prefix string, n int) []models.Facility {
	out := make([]models.Facility, n)
	for i := range out {
		lat, lng := 37.5+float64(i)*0.001, 127.0+float64(i)*0.001
		out[i] = models.Facility{
			ID:        int64(i + 1),
			Name:      fmt.Sprintf("%s%d", prefix, i+1),
			Latitude:  &lat,
			Longitude: &lng,
		}
	}
	return out
}
