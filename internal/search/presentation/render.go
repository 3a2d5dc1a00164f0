// internal/search/presentation/render.go
package presentation

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Render writes the view as text: status lines, the result table and the
// page bar.
func Render(w io.Writer, v View) error {
	status := fmt.Sprintf("[%s] %s", v.ModeLabel, v.Badge)
	if v.Loading {
		status += " (불러오는 중)"
	}
	if _, err := fmt.Fprintln(w, status); err != nil {
		return err
	}
	if v.Banner != "" {
		if _, err := fmt.Fprintf(w, "! %s\n", v.Banner); err != nil {
			return err
		}
	}

	if len(v.Suggestions) > 0 {
		if _, err := fmt.Fprintf(w, "추천 검색어: %s\n", strings.Join(v.Suggestions, ", ")); err != nil {
			return err
		}
	}

	if len(v.Rows) == 0 {
		if v.EmptyText != "" {
			_, err := fmt.Fprintln(w, v.EmptyText)
			return err
		}
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "이름", "분류", "주소", "전화", "주차", "반려동물")
	for _, r := range v.Rows {
		if err := table.Append(strconv.Itoa(r.Number), r.Name, r.Category, r.Address, r.Phone, r.Parking, r.PetSize); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if bar := PageBar(v.Pagination); bar != "" {
		if _, err := fmt.Fprintln(w, bar); err != nil {
			return err
		}
	}
	return nil
}

// PageBar renders the pagination bar with one-based page labels, e.g.
// "« 1 [2] 3 4 5 »". It is empty when pagination is disabled.
func PageBar(p Pagination) string {
	if !p.Enabled {
		return ""
	}
	parts := make([]string, 0, len(p.Pages)+2)
	if p.HasPrev {
		parts = append(parts, "«")
	}
	for _, page := range p.Pages {
		label := strconv.Itoa(page + 1)
		if page == p.Current {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	if p.HasNext {
		parts = append(parts, "»")
	}
	return strings.Join(parts, " ")
}
