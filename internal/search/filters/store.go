// internal/search/filters/store.go
package filters

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	apperrors "petopia-search/internal/common/errors"
	"petopia-search/internal/common/logger"
	"petopia-search/internal/common/metrics"
	"petopia-search/pkg/regions"
)

// Store holds the filter selection of one search view and the option lists
// that depend on it. All methods are safe for concurrent use.
type Store struct {
	source   OptionSource
	fallback *regions.Table
	logger   logger.Logger
	loads    singleflight.Group

	mu           sync.RWMutex
	region       string
	subRegion    string
	categories   selection
	petSizes     selection
	parking      string
	facilityType string
	searchQuery  string

	regionOptions    []string
	subRegionOptions []string
	categoryOptions  []string
}

// NewStore creates a store in its default state. source may be nil, in which
// case every option list comes from the fallback table.
func NewStore(source OptionSource, fallback *regions.Table, log logger.Logger) *Store {
	if fallback == nil {
		fallback = regions.Default()
	}
	return &Store{
		source:           source,
		fallback:         fallback,
		logger:           log.WithFields(map[string]interface{}{"component": "filter-store"}),
		region:           All,
		subRegion:        All,
		categories:       newSelection(),
		petSizes:         newSelection(),
		parking:          All,
		facilityType:     All,
		regionOptions:    withSentinel(fallback.RegionList()),
		subRegionOptions: []string{All},
		categoryOptions:  withSentinel(fallback.CategoryList()),
	}
}

// Snapshot returns a copy of the current selection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Region:       s.region,
		SubRegion:    s.subRegion,
		Categories:   s.categories.sorted(),
		PetSizes:     s.petSizes.sorted(),
		Parking:      s.parking,
		FacilityType: s.facilityType,
		SearchQuery:  s.searchQuery,
	}
}

// Options returns copies of the option lists currently offered.
func (s *Store) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Options{
		Regions:       append([]string(nil), s.regionOptions...),
		SubRegions:    append([]string(nil), s.subRegionOptions...),
		Categories:    append([]string(nil), s.categoryOptions...),
		PetSizes:      append([]string(nil), petSizeValues...),
		Parking:       append([]string(nil), parkingValues...),
		FacilityTypes: append([]string(nil), facilityTypeValues...),
	}
}

// LoadOptions loads the region and category lists. Failures are recovered
// with the fallback table and never returned.
func (s *Store) LoadOptions(ctx context.Context) {
	var g errgroup.Group
	var regionList, categoryList []string

	g.Go(func() error {
		regionList = s.loadList(ctx, "regions", s.fallback.RegionList, func(ctx context.Context) ([]string, error) {
			return s.source.Regions(ctx)
		})
		return nil
	})
	g.Go(func() error {
		categoryList = s.loadList(ctx, "categories", s.fallback.CategoryList, func(ctx context.Context) ([]string, error) {
			return s.source.Categories(ctx)
		})
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	s.regionOptions = withSentinel(regionList)
	s.categoryOptions = withSentinel(categoryList)
	s.mu.Unlock()
}

// SetRegion selects a region and, when it changed, reloads the sub-region
// options for it. It blocks until the options are in place.
func (s *Store) SetRegion(ctx context.Context, value string) {
	if region, changed := s.SelectRegion(value); changed {
		s.LoadSubRegions(ctx, region)
	}
}

// SelectRegion changes the region without loading options. When the value
// differs from the current region the sub-region is reset to All and the
// sub-region option list is cleared until LoadSubRegions runs.
func (s *Store) SelectRegion(value string) (string, bool) {
	region := normalizeSelection(value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if region == s.region {
		return region, false
	}
	s.region = region
	s.subRegion = All
	s.subRegionOptions = []string{All}
	return region, true
}

// LoadSubRegions fetches the sub-regions of region, falling back to the
// static table, and installs them if region is still selected. Concurrent
// loads of the same region share one attempt.
func (s *Store) LoadSubRegions(ctx context.Context, region string) {
	if region == All {
		return
	}

	v, _, _ := s.loads.Do("sigungu:"+region, func() (interface{}, error) {
		return s.loadList(ctx, "sigungu", func() []string { return s.fallback.SubRegionsOf(region) },
			func(ctx context.Context) ([]string, error) {
				return s.source.SubRegions(ctx, region)
			}), nil
	})
	list, _ := v.([]string)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.region != region {
		s.logger.Debug("discarding sub-regions of a deselected region", map[string]interface{}{
			"loaded":  region,
			"current": s.region,
		})
		return
	}
	s.subRegionOptions = withSentinel(list)
}

// loadList asks the source and substitutes the fallback on error or on an
// empty answer.
func (s *Store) loadList(ctx context.Context, option string, fallback func() []string, fetch func(context.Context) ([]string, error)) []string {
	if s.source == nil {
		return fallback()
	}
	list, err := fetch(ctx)
	if err == nil && len(list) > 0 {
		return list
	}

	fields := map[string]interface{}{"option": option}
	if err != nil {
		fields["error"] = apperrors.NewOperationError(apperrors.ErrCodeOptionLoadFailed, err).Error()
	} else {
		fields["reason"] = "empty list"
	}
	s.logger.Warn("option list unavailable, using fallback table", fields)
	metrics.OptionFallbacks.WithLabelValues(option).Inc()
	return fallback()
}

// SetSubRegion selects a sub-region of the current region.
func (s *Store) SetSubRegion(value string) error {
	sub := normalizeSelection(value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sub != All && s.region == All {
		return apperrors.NewInvalidFilterValueError("subRegion", value)
	}
	s.subRegion = sub
	return nil
}

// ToggleCategory applies one click on the category multi-select.
func (s *Store) ToggleCategory(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories.toggle(value)
}

// TogglePetSize applies one click on the pet-size multi-select.
func (s *Store) TogglePetSize(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.petSizes.toggle(value)
}

func (s *Store) SetParking(value string) error {
	v := normalizeSelection(value)
	if !contains(parkingValues, v) {
		return apperrors.NewInvalidFilterValueError("parking", value)
	}
	s.mu.Lock()
	s.parking = v
	s.mu.Unlock()
	return nil
}

func (s *Store) SetFacilityType(value string) error {
	v := normalizeSelection(value)
	if !contains(facilityTypeValues, v) {
		return apperrors.NewInvalidFilterValueError("facilityType", value)
	}
	s.mu.Lock()
	s.facilityType = v
	s.mu.Unlock()
	return nil
}

// SetSearchQuery stores the free text as typed. It never triggers a fetch.
func (s *Store) SetSearchQuery(value string) {
	s.mu.Lock()
	s.searchQuery = value
	s.mu.Unlock()
}

// Reset returns every field to its default.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = All
	s.subRegion = All
	s.categories = newSelection()
	s.petSizes = newSelection()
	s.parking = All
	s.facilityType = All
	s.searchQuery = ""
	s.subRegionOptions = []string{All}
}

func normalizeSelection(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return All
	}
	return v
}

// withSentinel prepends All and drops blanks and duplicates.
func withSentinel(list []string) []string {
	out := make([]string, 0, len(list)+1)
	out = append(out, All)
	seen := map[string]bool{All: true}
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
