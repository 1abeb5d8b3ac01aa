package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Focus timer styles.
var (
	focusClockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(1, 3)

	focusTaskStyle = lipgloss.NewStyle().Bold(true)
	focusHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type tickMsg time.Time

type focusModel struct {
	taskName  string
	remaining time.Duration
	total     time.Duration
	finished  bool
	aborted   bool
}

func newFocusModel(taskName string, total time.Duration) focusModel {
	return focusModel{taskName: taskName, remaining: total, total: total}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m focusModel) Init() tea.Cmd {
	return tick()
}

func (m focusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "f":
			// Finish early; still counts as a completed session.
			m.finished = true
			m.remaining = 0
			return m, tea.Quit
		}
	case tickMsg:
		m.remaining -= time.Second
		if m.remaining <= 0 {
			m.remaining = 0
			m.finished = true
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m focusModel) View() string {
	if m.finished || m.aborted {
		return ""
	}
	mins := int(m.remaining.Minutes())
	secs := int(m.remaining.Seconds()) % 60
	clock := focusClockStyle.Render(fmt.Sprintf("%02d:%02d", mins, secs))
	return fmt.Sprintf("\n%s\n\n%s\n\n%s\n",
		focusTaskStyle.Render("Focusing: "+m.taskName),
		clock,
		focusHelpStyle.Render("f finish early · q abort"),
	)
}

var focusMinutes int

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Run a focus session against the active task",
	Long: `Run a countdown work session. When the timer completes (or is finished
early with 'f'), one session is recorded on the active task's line.
Aborting with 'q' records nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := restoreSelection(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no active task (use 'pomo select' or 'pomo pick')")
		}

		minutes := focusMinutes
		if minutes <= 0 && Cfg != nil {
			minutes = Cfg.Focus.Minutes
		}
		if minutes <= 0 {
			minutes = 25
		}

		p := tea.NewProgram(newFocusModel(ActiveTracker.DisplayName(), time.Duration(minutes)*time.Minute))
		finalModel, err := p.Run()
		if err != nil {
			return fmt.Errorf("running focus timer: %w", err)
		}

		m, isFocus := finalModel.(focusModel)
		if !isFocus || !m.finished {
			fmt.Println("Session aborted; nothing recorded.")
			return nil
		}

		result, err := ActiveTracker.CompleteSession()
		if err != nil {
			return err
		}

		rec, _ := ActiveTracker.Active()
		fmt.Printf("Session %d recorded for %q\n", rec.SessionsActual, ActiveTracker.DisplayName())
		fmt.Printf("  %s:%d: %s\n", rec.SourcePath, result.LineNumber, result.NewLine)

		for _, sideErr := range recordCompletion(rec) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", sideErr)
		}
		return nil
	},
}

func init() {
	focusCmd.Flags().IntVar(&focusMinutes, "minutes", 0, "session length in minutes (default from config)")
	rootCmd.AddCommand(focusCmd)
}
