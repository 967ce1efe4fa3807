package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/validate"
)

func newValidateCmd(root *rootFlags, app *AppContext) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Print the post-build validation report for a finished session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger := app.CommandContext(cmd, "command.validate")

			st, ok := app.Orchestrator.Get(sessionID)
			if !ok {
				return fmt.Errorf("no session %q", sessionID)
			}
			if st.Validation == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "session has no validation report yet (build phase not reached, or run was a dry run)")
				return nil
			}

			width := terminalWidth()
			out := validate.FormatReport(*st.Validation)
			fmt.Fprintln(cmd.OutOrStdout(), wrapToWidth(out, width))

			if logger != nil {
				logger.Info(cmd.Context(), "validation report printed", "session_id", sessionID, "success", st.Validation.Success)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session-id", "default", "Session identifier to report on")
	return cmd
}

// validationOneLine condenses a Report into the single summary line
// replicate prints after a normal (non-watch) run.
func validationOneLine(r validate.Report) string {
	if r.Success {
		return fmt.Sprintf("validation: PASSED (expected=%d actual=%d)", r.Summary.ExpectedCount, r.Summary.ActualCount)
	}
	return fmt.Sprintf("validation: FAILED missing=%d broken_references=%d", r.Summary.MissingCount, r.Summary.BrokenRefCount)
}

// terminalWidth reports the attached terminal's column width, falling back
// to 80 when stdout isn't a terminal (piped output, CI logs).
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapToWidth keeps FormatReport's lines as-is but truncates any line wider
// than the terminal rather than letting it wrap mid-word.
func wrapToWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if len(line) > width {
			lines[i] = line[:width-1] + "…"
		}
	}
	return strings.Join(lines, "\n")
}
