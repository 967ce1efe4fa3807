// Package progress implements the --watch live view for a replication run,
// grounded on the teacher's internal/tui Model (Bubbletea state machine
// driven by StepCompleteMsg/ValidationMsg): the same shape - an ordered
// step list plus a running completed/total counter - generalized from
// pipeline steps to replication phases and CREATE/SKIP entity events.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/session"
)

var (
	phaseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// PhaseChangedMsg reports the workflow entering a new phase.
type PhaseChangedMsg struct {
	Phase session.Phase
}

// EntityMsg reports one CREATE/SKIP/failure outcome for a single entity.
type EntityMsg struct {
	Kind   string
	Name   string
	Status string // "created", "skipped", "failed"
}

// ProgressMsg carries an updated overall completion percentage.
type ProgressMsg struct {
	Progress session.Progress
}

// DoneMsg signals the run finished, successfully or not.
type DoneMsg struct {
	Err error
}

// Model is the Bubbletea state for the --watch progress view.
type Model struct {
	phase    session.Phase
	percent  float64
	bar      progress.Model
	entities []EntityMsg
	warnings []string
	err      error
	done     bool
}

// NewModel constructs an idle Model.
func NewModel() Model {
	return Model{
		phase: session.PhaseIdle,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case PhaseChangedMsg:
		m.phase = v.Phase
	case EntityMsg:
		m.entities = append(m.entities, v)
	case ProgressMsg:
		m.percent = v.Progress.Percentage
		return m, m.bar.SetPercent(m.percent / 100)
	case DoneMsg:
		m.done = true
		m.err = v.Err
	case tea.KeyMsg:
		if v.String() == "ctrl+c" || v.String() == "q" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		next, cmd := m.bar.Update(v)
		m.bar = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", phaseStyle.Render("phase:"), m.phase)
	fmt.Fprintf(&b, "%s\n\n", m.bar.ViewAs(m.percent/100))

	for _, e := range m.entities {
		switch e.Status {
		case "created":
			fmt.Fprintf(&b, "  %s %s %s\n", okStyle.Render("created"), e.Kind, e.Name)
		case "skipped":
			fmt.Fprintf(&b, "  %s %s %s\n", warnStyle.Render("skipped"), e.Kind, e.Name)
		case "failed":
			fmt.Fprintf(&b, "  %s %s %s\n", failStyle.Render("failed"), e.Kind, e.Name)
		}
	}

	if m.done {
		if m.err != nil {
			fmt.Fprintf(&b, "\n%s %v\n", failStyle.Render("run failed:"), m.err)
		} else {
			fmt.Fprintf(&b, "\n%s\n", okStyle.Render("run complete"))
		}
	}

	return b.String()
}
