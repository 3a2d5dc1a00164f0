// internal/console/commands.go
package console

import (
	"fmt"
	"strconv"
	"strings"

	"petopia-search/internal/models"
	"petopia-search/internal/search/orchestrator"
	"petopia-search/pkg/regions"
)

// Action is a shell command that does not go through the orchestrator.
type Action int

const (
	ActionNone Action = iota
	ActionShow
	ActionOptions
	ActionHelp
	ActionQuit
)

// Command is one parsed input line: either an intent or a local action.
type Command struct {
	Intent orchestrator.Intent
	Action Action
}

const helpText = `commands:
  search | s                      search from page 1 with the current filters
  query <text> | q <text>         type into the search box (debounced)
  page <n> | next | prev          change page (paginated search only)
  bounds <swLat> <swLng> <neLat> <neLng>
                                  search this map area
  all                             back to full search (전체검색)
  fav                             show my favorites
  region <name>                   select 시/도, e.g. "region 서울"
  sub <name>                      select 시/군/구
  cat <name>                      toggle a category (cat 전체 resets)
  pet <size>                      toggle a pet size: 소형 중형 대형 전체
  parking Y|N|전체                parking filter
  type 실내|실외|전체             facility type filter
  reset                           reset all filters
  show | options | help | quit`

// Parser turns input lines into commands. Region names are normalized
// through the table so "서울" selects "서울특별시".
type Parser struct {
	table *regions.Table
}

func NewParser(table *regions.Table) *Parser {
	if table == nil {
		table = regions.Default()
	}
	return &Parser{table: table}
}

// Parse parses one line. state supplies the current page for next/prev.
func (p *Parser) Parse(line string, state orchestrator.State) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Action: ActionShow}, nil
	}
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	args := fields[1:]

	switch name {
	case "search", "s":
		return intent(orchestrator.SubmitSearch{}), nil
	case "query", "q":
		return intent(orchestrator.ChangeQuery{Text: rest}), nil
	case "page", "p":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: page <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("page must be a positive number: %q", args[0])
		}
		return intent(orchestrator.ChangePage{Page: n - 1}), nil
	case "next":
		return intent(orchestrator.ChangePage{Page: state.Mode.Page + 1}), nil
	case "prev":
		return intent(orchestrator.ChangePage{Page: state.Mode.Page - 1}), nil
	case "bounds", "b":
		b, err := parseBounds(args)
		if err != nil {
			return Command{}, err
		}
		return intent(orchestrator.SearchBounds{Bounds: b}), nil
	case "all":
		return intent(orchestrator.ShowAll{}), nil
	case "fav", "favorites":
		return intent(orchestrator.ShowFavorites{}), nil
	case "region":
		return intent(orchestrator.SelectRegion{Region: p.region(rest)}), nil
	case "sub":
		return intent(orchestrator.SelectSubRegion{SubRegion: rest}), nil
	case "cat":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: cat <name>")
		}
		return intent(orchestrator.ToggleCategory{Value: rest}), nil
	case "pet":
		if rest == "" {
			return Command{}, fmt.Errorf("usage: pet <size>")
		}
		return intent(orchestrator.TogglePetSize{Value: rest}), nil
	case "parking":
		return intent(orchestrator.SetParking{Value: strings.ToUpper(rest)}), nil
	case "type":
		return intent(orchestrator.SetFacilityType{Value: rest}), nil
	case "reset":
		return intent(orchestrator.ResetFilters{}), nil
	case "show":
		return Command{Action: ActionShow}, nil
	case "options":
		return Command{Action: ActionOptions}, nil
	case "help", "?":
		return Command{Action: ActionHelp}, nil
	case "quit", "exit":
		return Command{Action: ActionQuit}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q (try help)", fields[0])
}

func (p *Parser) region(value string) string {
	if value == "" {
		return ""
	}
	if normalized := p.table.Normalize(value); normalized != "" {
		return normalized
	}
	return value
}

func intent(in orchestrator.Intent) Command {
	return Command{Intent: in}
}

func parseBounds(args []string) (models.Bounds, error) {
	if len(args) != 4 {
		return models.Bounds{}, fmt.Errorf("usage: bounds <swLat> <swLng> <neLat> <neLng>")
	}
	var v [4]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return models.Bounds{}, fmt.Errorf("invalid coordinate %q", a)
		}
		v[i] = f
	}
	b := models.Bounds{SouthWestLat: v[0], SouthWestLng: v[1], NorthEastLat: v[2], NorthEastLng: v[3]}
	if err := b.Validate(); err != nil {
		return models.Bounds{}, err
	}
	return b, nil
}
