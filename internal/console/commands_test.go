// internal/console/commands_test.go
package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petopia-search/internal/models"
	"petopia-search/internal/search/orchestrator"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser(nil)
	state := orchestrator.State{Mode: orchestrator.Paginated(2)}

	tests := []struct {
		line     string
		expected Command
	}{
		{"", Command{Action: ActionShow}},
		{"search", Command{Intent: orchestrator.SubmitSearch{}}},
		{"S", Command{Intent: orchestrator.SubmitSearch{}}},
		{"q 강아지 카페", Command{Intent: orchestrator.ChangeQuery{Text: "강아지 카페"}}},
		{"query", Command{Intent: orchestrator.ChangeQuery{Text: ""}}},
		{"page 3", Command{Intent: orchestrator.ChangePage{Page: 2}}},
		{"next", Command{Intent: orchestrator.ChangePage{Page: 3}}},
		{"prev", Command{Intent: orchestrator.ChangePage{Page: 1}}},
		{"bounds 37.4 126.8 37.7 127.2", Command{Intent: orchestrator.SearchBounds{Bounds: models.Bounds{
			SouthWestLat: 37.4, SouthWestLng: 126.8, NorthEastLat: 37.7, NorthEastLng: 127.2,
		}}}},
		{"all", Command{Intent: orchestrator.ShowAll{}}},
		{"fav", Command{Intent: orchestrator.ShowFavorites{}}},
		{"region 서울", Command{Intent: orchestrator.SelectRegion{Region: "서울특별시"}}},
		{"region 전라북도", Command{Intent: orchestrator.SelectRegion{Region: "전북특별자치도"}}},
		{"region 전체", Command{Intent: orchestrator.SelectRegion{Region: "전체"}}},
		{"sub 강남구", Command{Intent: orchestrator.SelectSubRegion{SubRegion: "강남구"}}},
		{"cat 동물병원", Command{Intent: orchestrator.ToggleCategory{Value: "동물병원"}}},
		{"pet 소형", Command{Intent: orchestrator.TogglePetSize{Value: "소형"}}},
		{"parking y", Command{Intent: orchestrator.SetParking{Value: "Y"}}},
		{"type 실외", Command{Intent: orchestrator.SetFacilityType{Value: "실외"}}},
		{"reset", Command{Intent: orchestrator.ResetFilters{}}},
		{"options", Command{Action: ActionOptions}},
		{"help", Command{Action: ActionHelp}},
		{"exit", Command{Action: ActionQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := p.Parse(tt.line, state)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestParser_ParseErrors(t *testing.T) {
	p := NewParser(nil)

	for _, line := range []string{
		"page",
		"page zero",
		"page 0",
		"bounds 1 2 3",
		"bounds a b c d",
		"bounds 38 127 37 126",
		"cat",
		"pet",
		"dance",
	} {
		_, err := p.Parse(line, orchestrator.State{})
		assert.Error(t, err, line)
	}
}
