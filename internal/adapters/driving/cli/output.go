package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/quire/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/quire/internal/core/domain"
)

var style = styles.DefaultStyles()

// printSummary writes a human readable run summary.
func printSummary(w io.Writer, s *domain.RunSummary) {
	if s == nil {
		return
	}

	if s.State == domain.RunEmpty {
		fmt.Fprintln(w, style.Warning.Render("Nothing found: no items matched, no artifacts written."))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", style.Title.Render("Run "+shortID(s.ID)), stateLabel(s.State))
	fmt.Fprintf(&b, "%s %d items in %d artifacts, %d written, %d skipped (%s)\n",
		style.Label.Render("Items:"), s.TotalItems, len(s.Buckets), s.Written(), len(s.Skipped()),
		s.Duration().Round(1e6))

	for _, bucket := range s.Buckets {
		mark := style.Success.Render("✓")
		where := bucket.Location
		switch {
		case bucket.Error != "":
			mark = style.Error.Render("✗")
			where = bucket.Error
		case !bucket.Committed:
			mark = style.Muted.Render("·")
			where = "not written"
		}
		fmt.Fprintf(&b, "  %s %-24s %3d/%-3d %s\n", mark, bucket.Name,
			bucket.Count(domain.ItemWritten), bucket.Size(), style.Muted.Render(where))
	}

	if skipped := s.Skipped(); len(skipped) > 0 {
		b.WriteString(style.Warning.Render("Skipped:") + "\n")
		for _, it := range skipped {
			fmt.Fprintf(&b, "  - %s (%s): %s\n", it.Title, it.ID, it.Reason)
		}
	}
	if s.Error != "" {
		fmt.Fprintf(&b, "%s %s\n", style.Error.Render("Error:"), s.Error)
	}

	fmt.Fprint(w, style.Box.Render(strings.TrimRight(b.String(), "\n")))
	fmt.Fprintln(w)
}

// printRunLine writes one line of a run listing.
func printRunLine(w io.Writer, s domain.RunSummary) {
	fmt.Fprintf(w, "%s  %-7s %-10s %s  %d items, %d written, %d skipped\n",
		shortID(s.ID), s.Kind, stateLabel(s.State), s.StartedAt.Local().Format("2006-01-02 15:04"),
		s.TotalItems, s.Written(), len(s.Skipped()))
}

func stateLabel(state domain.RunState) string {
	text := string(state)
	switch state {
	case domain.RunCompleted:
		return style.Success.Render(text)
	case domain.RunEmpty, domain.RunCancelled:
		return style.Warning.Render(text)
	case domain.RunFailed:
		return style.Error.Render(text)
	default:
		return text
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
