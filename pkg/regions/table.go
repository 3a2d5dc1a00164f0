// pkg/regions/table.go
package regions

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Table is the static region → sub-region lookup used when the backend option
// endpoints are unavailable.
type Table struct {
	Version    string              `json:"version"`
	Regions    []string            `json:"regions"`
	SubRegions map[string][]string `json:"subRegions"`
	Aliases    map[string]string   `json:"aliases"`
	Categories []string            `json:"categories"`
}

// Load reads a table from a JSON file. Sections missing from the file are
// taken from Default().
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse region table %s: %w", path, err)
	}

	def := Default()
	if len(t.Regions) == 0 {
		t.Regions = def.Regions
	}
	if len(t.SubRegions) == 0 {
		t.SubRegions = def.SubRegions
	}
	if len(t.Aliases) == 0 {
		t.Aliases = def.Aliases
	}
	if len(t.Categories) == 0 {
		t.Categories = def.Categories
	}
	return &t, nil
}

// Normalize maps the many spellings of a province or metropolitan city
// ("서울", "서울시", "강원도", "전라북도", " 경기 도 ") to its canonical key.
func (t *Table) Normalize(name string) string {
	compact := strings.Join(strings.Fields(name), "")
	if compact == "" {
		return ""
	}
	if _, ok := t.SubRegions[compact]; ok {
		return compact
	}
	if canonical, ok := t.Aliases[compact]; ok {
		return canonical
	}
	return compact
}

// SubRegionsOf returns a copy of the sub-regions of a (normalized) region.
func (t *Table) SubRegionsOf(region string) []string {
	list := t.SubRegions[t.Normalize(region)]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func (t *Table) RegionList() []string {
	out := make([]string, len(t.Regions))
	copy(out, t.Regions)
	return out
}

func (t *Table) CategoryList() []string {
	out := make([]string, len(t.Categories))
	copy(out, t.Categories)
	return out
}
