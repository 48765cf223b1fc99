package spinner

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusMsg replaces the text shown next to the spinner
type StatusMsg string

// doneMsg asks the model to render its final frame and exit
type doneMsg struct{}

type model struct {
	spinner  spinner.Model
	quitting bool
	message  string
}

// InitialModel returns a spinner showing message
func InitialModel(message string) model {
	s := spinner.New()
	s.Spinner = spinner.Line
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#01FAC6"))
	return model{
		spinner: s,
		message: message,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatusMsg:
		m.message = string(msg)
		return m, nil

	case doneMsg:
		m.quitting = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m model) View() string {
	str := fmt.Sprintf("%s %s", m.spinner.View(), m.message)
	if m.quitting {
		return str + "\n"
	}
	return str
}

// Spinner is a running spinner program
type Spinner struct {
	program *tea.Program
	done    chan struct{}
}

// Start renders a spinner on out until Stop is called. The program reads no
// input; interrupts reach the command through its signal context.
func Start(message string, out io.Writer) *Spinner {
	s := &Spinner{
		program: tea.NewProgram(InitialModel(message), tea.WithOutput(out), tea.WithInput(nil)),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		s.program.Run()
	}()
	return s
}

// Status updates the spinner text
func (s *Spinner) Status(message string) {
	s.program.Send(StatusMsg(message))
}

// Stop renders the last frame and waits until the terminal is restored
func (s *Spinner) Stop() {
	s.program.Send(doneMsg{})
	<-s.done
}
