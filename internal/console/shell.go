// internal/console/shell.go
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"petopia-search/internal/common/logger"
	"petopia-search/internal/search/filters"
	"petopia-search/internal/search/orchestrator"
	"petopia-search/internal/search/presentation"
)

const prompt = "petopia> "

// Shell is a line-oriented front-end: each line becomes one intent and the
// resulting view is printed once background fetches settle.
type Shell struct {
	orch   *orchestrator.Orchestrator
	store  *filters.Store
	parser *Parser
	out    io.Writer
	logger logger.Logger
}

func NewShell(orch *orchestrator.Orchestrator, store *filters.Store, parser *Parser, out io.Writer, log logger.Logger) *Shell {
	return &Shell{
		orch:   orch,
		store:  store,
		parser: parser,
		out:    out,
		logger: log.WithFields(map[string]interface{}{"component": "shell"}),
	}
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, prompt)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		quit, err := s.Execute(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		fmt.Fprint(s.out, prompt)
	}
	return scanner.Err()
}

// Execute runs one line and prints its outcome.
func (s *Shell) Execute(line string) (quit bool, err error) {
	cmd, err := s.parser.Parse(line, s.orch.State())
	if err != nil {
		return false, err
	}

	switch cmd.Action {
	case ActionQuit:
		return true, nil
	case ActionHelp:
		_, err := fmt.Fprintln(s.out, helpText)
		return false, err
	case ActionOptions:
		return false, s.printOptions()
	case ActionShow:
		s.orch.Wait()
		return false, s.render(s.orch.State())
	}

	before := s.orch.State().Version
	st := s.orch.Dispatch(cmd.Intent)
	if st.Version == before {
		fmt.Fprintln(s.out, "(ignored in the current mode)")
		return false, nil
	}
	s.orch.Wait()
	return false, s.render(s.orch.State())
}

func (s *Shell) render(st orchestrator.State) error {
	if err := s.printFilters(st.Filters); err != nil {
		return err
	}
	return presentation.Render(s.out, presentation.Project(st))
}

func (s *Shell) printFilters(f filters.Snapshot) error {
	parts := []string{
		"지역=" + f.Region,
		"시군구=" + f.SubRegion,
		"분류=" + strings.Join(f.Categories, ","),
		"크기=" + strings.Join(f.PetSizes, ","),
		"주차=" + f.Parking,
		"유형=" + f.FacilityType,
	}
	if f.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("검색어=%q", f.SearchQuery))
	}
	_, err := fmt.Fprintln(s.out, strings.Join(parts, " | "))
	return err
}

func (s *Shell) printOptions() error {
	opts := s.store.Options()
	lines := []string{
		"regions:     " + strings.Join(opts.Regions, " "),
		"sub-regions: " + strings.Join(opts.SubRegions, " "),
		"categories:  " + strings.Join(opts.Categories, " "),
		"pet sizes:   " + strings.Join(opts.PetSizes, " "),
		"parking:     " + strings.Join(opts.Parking, " "),
		"types:       " + strings.Join(opts.FacilityTypes, " "),
	}
	_, err := fmt.Fprintln(s.out, strings.Join(lines, "\n"))
	return err
}
