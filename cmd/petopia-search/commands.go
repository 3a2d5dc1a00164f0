// cmd/petopia-search/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"petopia-search/internal/console"
	"petopia-search/internal/models"
	"petopia-search/internal/search/orchestrator"
	"petopia-search/internal/search/presentation"
	"petopia-search/internal/search/query"
)

type filterFlags struct {
	region       string
	subRegion    string
	categories   []string
	petSizes     []string
	parking      string
	facilityType string
	text         string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "시/도, aliases such as 서울 or 경기 are accepted")
	cmd.Flags().StringVar(&f.subRegion, "sub", "", "시/군/구 within --region")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "category (repeatable)")
	cmd.Flags().StringSliceVar(&f.petSizes, "pet-size", nil, "allowed pet size: 소형, 중형, 대형 (repeatable)")
	cmd.Flags().StringVar(&f.parking, "parking", "", "parking: Y or N")
	cmd.Flags().StringVar(&f.facilityType, "type", "", "facility type: 실내 or 실외")
	cmd.Flags().StringVarP(&f.text, "query", "q", "", "free-text query")
}

// intents turns the flags into the intents a user would produce by clicking.
func (f *filterFlags) intents(parser *console.Parser) ([]orchestrator.Intent, error) {
	var out []orchestrator.Intent
	if f.region != "" {
		cmd, err := parser.Parse("region "+f.region, orchestrator.State{})
		if err != nil {
			return nil, err
		}
		out = append(out, cmd.Intent)
	}
	if f.subRegion != "" {
		if f.region == "" {
			return nil, errors.New("--sub requires --region")
		}
		out = append(out, orchestrator.SelectSubRegion{SubRegion: f.subRegion})
	}
	for _, c := range f.categories {
		out = append(out, orchestrator.ToggleCategory{Value: c})
	}
	for _, s := range f.petSizes {
		out = append(out, orchestrator.TogglePetSize{Value: s})
	}
	if f.parking != "" {
		out = append(out, orchestrator.SetParking{Value: strings.ToUpper(f.parking)})
	}
	if f.facilityType != "" {
		out = append(out, orchestrator.SetFacilityType{Value: f.facilityType})
	}
	if f.text != "" {
		out = append(out, orchestrator.ChangeQuery{Text: f.text})
	}
	return out, nil
}

// apply dispatches the filter intents and fails on the first rejected one.
func (f *filterFlags) apply(a *app) error {
	intents, err := f.intents(console.NewParser(a.table))
	if err != nil {
		return err
	}
	for _, in := range intents {
		before := a.orch.State().Version
		if st := a.orch.Dispatch(in); st.Version == before {
			return fmt.Errorf("rejected filter value: %+v", in)
		}
		// sub-region options must be in place before --sub is applied
		a.orch.Wait()
	}
	return nil
}

var (
	searchFilters filterFlags
	searchPage    int

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Run a paginated facility search",
		Example: `  petopia-search search --region 서울 --category 카페 -q 강아지
  petopia-search search --region 부산 --sub 해운대구 --parking Y --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.Context(), &searchFilters, func(a *app) error {
				a.orch.Dispatch(orchestrator.SubmitSearch{})
				a.orch.Wait()
				if searchPage > 1 {
					if st := a.orch.State(); st.LastError == "" {
						a.orch.Dispatch(orchestrator.ChangePage{Page: searchPage - 1})
						a.orch.Wait()
					}
				}
				return nil
			})
		},
	}
)

var (
	boundsFilters filterFlags
	boundsBox     [4]float64

	boundsCmd = &cobra.Command{
		Use:     "bounds",
		Short:   "Search the facilities inside a map area",
		Example: `  petopia-search bounds --sw-lat 37.48 --sw-lng 126.90 --ne-lat 37.58 --ne-lng 127.05 --category 카페`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := models.Bounds{
				SouthWestLat: boundsBox[0],
				SouthWestLng: boundsBox[1],
				NorthEastLat: boundsBox[2],
				NorthEastLng: boundsBox[3],
			}
			if err := b.Validate(); err != nil {
				return err
			}
			return runOneShot(cmd.Context(), &boundsFilters, func(a *app) error {
				a.orch.Dispatch(orchestrator.SearchBounds{Bounds: b})
				a.orch.Wait()
				return nil
			})
		},
	}
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List my favorite facilities (needs a saved access token)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOneShot(cmd.Context(), nil, func(a *app) error {
			a.orch.Dispatch(orchestrator.ShowFavorites{})
			a.orch.Wait()
			return nil
		})
	},
}

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Print typeahead suggestions for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		limit := suggestLimit
		if limit <= 0 {
			limit = a.cfg.Search.SuggestionLimit
		}
		list, err := a.api.Suggestions(cmd.Context(), query.BuildSuggestions(strings.Join(args, " "), limit))
		if err != nil {
			return err
		}
		for _, s := range list {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive search session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		a.store.LoadOptions(ctx)

		sh := console.NewShell(a.orch, a.store, console.NewParser(a.table), cmd.OutOrStdout(), a.log)
		fmt.Fprintln(cmd.OutOrStdout(), `Petopia search shell. Type "help" for commands.`)
		return sh.Run(ctx, cmd.InOrStdin())
	},
}

func init() {
	searchFilters.register(searchCmd)
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "page to show (1-based)")

	boundsFilters.register(boundsCmd)
	boundsCmd.Flags().Float64Var(&boundsBox[0], "sw-lat", 0, "south-west latitude")
	boundsCmd.Flags().Float64Var(&boundsBox[1], "sw-lng", 0, "south-west longitude")
	boundsCmd.Flags().Float64Var(&boundsBox[2], "ne-lat", 0, "north-east latitude")
	boundsCmd.Flags().Float64Var(&boundsBox[3], "ne-lng", 0, "north-east longitude")
	for _, name := range []string{"sw-lat", "sw-lng", "ne-lat", "ne-lng"} {
		_ = boundsCmd.MarkFlagRequired(name)
	}

	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 0, "maximum suggestions (default: search.suggestion_limit)")
}

// runOneShot builds the app, applies filters, runs fn and prints the view.
// A failed fetch is reported through the banner and the exit status.
func runOneShot(ctx context.Context, filters *filterFlags, fn func(a *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if filters != nil {
		if err := filters.apply(a); err != nil {
			return err
		}
	}
	if err := fn(a); err != nil {
		return err
	}

	st := a.orch.State()
	if err := presentation.Render(os.Stdout, presentation.Project(st)); err != nil {
		return err
	}
	if st.LastError != "" {
		return errors.New(st.LastError)
	}
	return nil
}
