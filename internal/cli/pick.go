package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/focusvault/pomo/pkg/models"
)

// Picker styles.
var (
	pickTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	pickCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	pickDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	pickMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type pickModel struct {
	tasks    []models.TaskRecord
	cursor   int
	selected int // -1 until a choice is made
	quitting bool
}

func newPickModel(tasks []models.TaskRecord) pickModel {
	return pickModel{tasks: tasks, selected: -1}
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.tasks) > 0 {
				m.selected = m.cursor
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickModel) View() string {
	if m.quitting || m.selected >= 0 {
		return ""
	}

	s := pickTitleStyle.Render("Pick a task") + "\n\n"
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = pickCursorStyle.Render("> ")
		}

		line := t.Description
		if t.Done() {
			line = pickDoneStyle.Render(line)
		}
		meta := fmt.Sprintf(" %s:%d", t.SourcePath, t.LineNumber)
		if t.SessionsActual > 0 || t.SessionsExpected > 0 {
			meta += fmt.Sprintf("  🍅 %d", t.SessionsActual)
			if t.SessionsExpected > 0 {
				meta += fmt.Sprintf("/%d", t.SessionsExpected)
			}
		}
		s += cursor + line + pickMetaStyle.Render(meta) + "\n"
	}
	s += "\n" + pickMetaStyle.Render("↑/↓ move · enter select · q cancel") + "\n"
	return s
}

var pickOpenOnly bool

var pickCmd = &cobra.Command{
	Use:   "pick [file]",
	Short: "Interactively pick the active task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Vault == nil || ActiveTracker == nil {
			return fmt.Errorf("vault not initialized")
		}

		files := args
		if len(files) == 0 {
			var err error
			files, err = Vault.ListDocuments()
			if err != nil {
				return fmt.Errorf("listing vault documents: %w", err)
			}
		}

		var tasks []models.TaskRecord
		for _, file := range files {
			col, err := resolveDocument(cmd.Context(), file)
			if err != nil {
				if len(args) > 0 {
					return fmt.Errorf("resolving %s: %w", file, err)
				}
				continue
			}
			for _, rec := range col.Records {
				if pickOpenOnly && rec.Done() {
					continue
				}
				tasks = append(tasks, rec)
			}
		}
		if len(tasks) == 0 {
			return fmt.Errorf("no tasks found")
		}

		p := tea.NewProgram(newPickModel(tasks))
		finalModel, err := p.Run()
		if err != nil {
			return fmt.Errorf("running picker: %w", err)
		}

		m, ok := finalModel.(pickModel)
		if !ok || m.selected < 0 {
			return nil // cancelled
		}

		held, err := ActiveTracker.Select(tasks[m.selected])
		if err != nil {
			return fmt.Errorf("selecting task: %w", err)
		}
		if err := saveSelection(); err != nil {
			return err
		}
		fmt.Printf("Selected: %s (^%s) in %s\n", held.Description, held.BlockAnchor, held.SourcePath)
		return nil
	},
}

func init() {
	pickCmd.Flags().BoolVar(&pickOpenOnly, "open", true, "only tasks that are not done")
	rootCmd.AddCommand(pickCmd)
}
