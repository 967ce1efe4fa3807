package validate

import (
	"fmt"
	"strings"
)

// FormatReport renders a Report as the stable multi-line text spec.md §6
// describes: a PASSED/FAILED banner, per-section counts, and bulleted
// missing/broken/warning lists. This stays free of any terminal/styling
// dependency - cmd/tagsync decorates it for interactive display.
func FormatReport(r Report) string {
	var b strings.Builder

	if r.Success {
		fmt.Fprintln(&b, "VALIDATION PASSED")
	} else {
		fmt.Fprintln(&b, "VALIDATION FAILED")
	}
	fmt.Fprintf(&b, "expected=%d actual=%d missing=%d broken_references=%d\n",
		r.Summary.ExpectedCount, r.Summary.ActualCount, r.Summary.MissingCount, r.Summary.BrokenRefCount)

	if len(r.Missing) > 0 {
		fmt.Fprintln(&b, "\nMissing entities:")
		for _, m := range r.Missing {
			fmt.Fprintf(&b, "  - [%s] %s (source id %s)\n", m.Kind, m.Name, m.SourceID)
		}
	}

	if len(r.BrokenReferences) > 0 {
		fmt.Fprintln(&b, "\nBroken references:")
		for _, ref := range r.BrokenReferences {
			fmt.Fprintf(&b, "  - [%s] %s: %s (%s)\n", ref.Kind, ref.Name, ref.Details, ref.IssueType)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(&b, "\nWarnings:")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	return b.String()
}
