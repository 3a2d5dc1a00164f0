// internal/search/filters/models.go
package filters

import "context"

// All is the sentinel selection meaning "no filter" for every field.
const All = "전체"

const (
	ParkingYes = "Y"
	ParkingNo  = "N"

	FacilityIndoor  = "실내"
	FacilityOutdoor = "실외"
)

var (
	parkingValues      = []string{All, ParkingYes, ParkingNo}
	facilityTypeValues = []string{All, FacilityIndoor, FacilityOutdoor}
	petSizeValues      = []string{All, "소형", "중형", "대형"}
)

// OptionSource loads the selectable option lists, normally from the backend.
type OptionSource interface {
	Regions(ctx context.Context) ([]string, error)
	SubRegions(ctx context.Context, region string) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}

// Snapshot is an immutable copy of the filter state. Multi-select sets are
// sorted so equal states always produce equal snapshots.
type Snapshot struct {
	Region       string   `json:"region"`
	SubRegion    string   `json:"subRegion"`
	Categories   []string `json:"categories"`
	PetSizes     []string `json:"petSizes"`
	Parking      string   `json:"parking"`
	FacilityType string   `json:"facilityType"`
	SearchQuery  string   `json:"searchQuery"`
}

// DefaultSnapshot is the state of a freshly mounted search view.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Region:       All,
		SubRegion:    All,
		Categories:   []string{All},
		PetSizes:     []string{All},
		Parking:      All,
		FacilityType: All,
	}
}

// Options are the option lists currently offered to the user. Every list
// starts with the sentinel.
type Options struct {
	Regions       []string `json:"regions"`
	SubRegions    []string `json:"subRegions"`
	Categories    []string `json:"categories"`
	PetSizes      []string `json:"petSizes"`
	Parking       []string `json:"parking"`
	FacilityTypes []string `json:"facilityTypes"`
}
