package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
)

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	answer *domain.Answer
}

// answerErrMsg carries a failed query back into the update loop.
type answerErrMsg struct {
	err error
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// assistant answers queries through the tool-calling loop.
	assistant driving.AssistantService

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *Styles

	// sessionID threads conversation history across queries.
	sessionID string

	// transcript accumulates rendered turns.
	transcript []string

	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	waiting   bool
	err       error
	width     int
	height    int
	ready     bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI over the assistant service.
func NewApp(assistant driving.AssistantService) (*App, error) {
	if assistant == nil {
		return nil, ErrMissingAssistantService
	}

	s := DefaultStyles()

	input := textinput.New()
	input.Placeholder = "Ask about your courses..."
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = s.Muted

	return &App{
		assistant: assistant,
		ctx:       context.Background(),
		styles:    s,
		input:     input,
		spinner:   spin,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Header, input frame and hint line take five rows.
		vpHeight := msg.Height - 5
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !a.ready {
			a.viewport = viewport.New(msg.Width, vpHeight)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = vpHeight
		}
		a.input.Width = msg.Width - 6
		a.refreshViewport()
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			if a.waiting {
				return a, nil
			}
			query := strings.TrimSpace(a.input.Value())
			if query == "" {
				return a, nil
			}
			a.input.Reset()
			a.err = nil
			a.waiting = true
			a.appendTurn(a.styles.UserLabel.Render("You: ") + query)
			return a, tea.Batch(a.spinner.Tick, a.ask(query))
		}

	case answerMsg:
		a.waiting = false
		a.sessionID = msg.answer.SessionID
		a.appendTurn(a.renderAnswer(msg.answer))
		return a, nil

	case answerErrMsg:
		a.waiting = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Lectern Chat"))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.styles.InputBorder.Width(a.width - 2).Render(a.input.View()))
	b.WriteString("\n")

	switch {
	case a.waiting:
		b.WriteString(a.spinner.View() + a.styles.Muted.Render(" Thinking..."))
	case a.err != nil:
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
	default:
		b.WriteString(a.styles.Muted.Render("Enter to send, Esc to quit"))
	}
	return b.String()
}

// ask runs one query against the assistant off the update loop.
func (a *App) ask(query string) tea.Cmd {
	sessionID := a.sessionID
	return func() tea.Msg {
		answer, err := a.assistant.Answer(a.ctx, sessionID, query)
		if err != nil {
			return answerErrMsg{err: err}
		}
		return answerMsg{answer: answer}
	}
}

// renderAnswer formats an assistant turn with its source citations.
func (a *App) renderAnswer(answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(a.styles.AssistantLabel.Render("Lectern: "))
	b.WriteString(answer.Text)
	for _, src := range answer.Sources {
		line := "  " + src.Label()
		if src.Link != "" {
			line += " (" + src.Link + ")"
		}
		b.WriteString("\n" + a.styles.SourceLine.Render(line))
	}
	return b.String()
}

// appendTurn adds a rendered turn and scrolls to the bottom.
func (a *App) appendTurn(turn string) {
	a.transcript = append(a.transcript, turn)
	a.refreshViewport()
	a.viewport.GotoBottom()
}

// refreshViewport re-renders the transcript into the viewport.
func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(strings.Join(a.transcript, "\n\n"))
}

// Run starts the TUI program and blocks until it exits.
func Run(ctx context.Context, assistant driving.AssistantService) error {
	app, err := NewApp(assistant)
	if err != nil {
		return err
	}
	app = app.WithContext(ctx)

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
