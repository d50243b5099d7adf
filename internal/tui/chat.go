// Package tui renders the interactive chat session in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bull/docchat/internal/memory"
	"github.com/bull/docchat/internal/query"
	"github.com/bull/docchat/internal/store"
)

// Asker is the TUI-facing subset of the query pipeline.
type Asker interface {
	Ask(ctx context.Context, sess *query.Session, question string) (*query.Result, error)
}

// answerMsg carries a finished query result back into the update loop.
type answerMsg struct {
	result *query.Result
}

// errMsg carries a failed query turn. The conversation history is left
// untouched by the pipeline, so the view only updates the status line.
type errMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat UI.
type Model struct {
	asker     Asker
	session   *query.Session
	assistant string

	input    textinput.Model
	viewport viewport.Model
	sources  map[int][]store.Chunk // answer turn index -> provenance
	status   string
	waiting  bool
	ready    bool
}

// New creates the chat UI over an existing session.
func New(asker Asker, session *query.Session, assistant string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		asker:     asker,
		session:   session,
		assistant: assistant,
		input:     ti,
		viewport:  vp,
		sources:   make(map[int][]store.Chunk),
		status:    "Ready. Ask me anything about " + assistant + ".",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and drives queries.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := historyBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - fh
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(question)
		}

	case answerMsg:
		m.waiting = false
		m.status = fmt.Sprintf("Answered from %d passage(s).", len(msg.result.Sources))
		// memory already holds the new turns; remember provenance for the
		// assistant turn just appended
		m.sources[m.session.Memory.Len()-1] = msg.result.Sources
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case errMsg:
		m.waiting = false
		m.status = "Error: " + msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs one query turn off the update loop.
func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.asker.Ask(context.Background(), m.session, question)
		if err != nil {
			return errMsg{err: err}
		}
		return answerMsg{result: result}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(m.assistant + " Assistant")
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

// renderHistory formats the conversation with sources under each answer.
func (m Model) renderHistory() string {
	turns := m.session.Memory.Turns()
	if len(turns) == 0 {
		return "No messages yet."
	}

	var b strings.Builder
	for i, turn := range turns {
		switch turn.Role {
		case memory.RoleUser:
			b.WriteString(userStyle.Render("You: "))
		case memory.RoleAssistant:
			b.WriteString(assistantStyle.Render(m.assistant + ": "))
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
		if sources, ok := m.sources[i]; ok && len(sources) > 0 {
			refs := make([]string, len(sources))
			for j, src := range sources {
				refs[j] = fmt.Sprintf("%s@%d", src.Source, src.Offset)
			}
			b.WriteString(sourceStyle.Render("  sources: " + strings.Join(refs, ", ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
