package summary

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ofckit/ofc/internal/application"
	"github.com/ofckit/ofc/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	view   func(s styles) string
	styles styles
	output string
}

func newModel(view func(s styles) string) model {
	return model{view: view, styles: newStyles()}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.view(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// RenderCycle renders the outcome of one sync cycle for a terminal.
func RenderCycle(summary application.Summary) (string, error) {
	return run(func(s styles) string {
		return renderCycleView(summary, s)
	})
}

// RenderOverview renders the roster annotated with the last recorded
// snapshot. It never talks to the network.
func RenderOverview(people []domain.Person, snapshot domain.Snapshot, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return renderOverview(people, snapshot, opts, s)
	})
}

func run(view func(s styles) string) (string, error) {
	p := tea.NewProgram(
		newModel(view),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
