package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"prism/internal/rag"
	"prism/internal/search"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	idle state = iota
	working
)

type message struct {
	role    string // "user", "answer", "results", "error", "system"
	content string
}

// resultMsg is sent when a search or answer query completes.
type resultMsg struct {
	role    string
	content string
	err     error
}

// Model is the single-view query interface: an input line over a
// scrolling transcript.
type Model struct {
	engine   *rag.Engine
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	messages []message
	scope    search.Scope
	topK     int
	state    state
	width    int
	height   int
	ready    bool
}

// Run starts the TUI over a loaded engine.
func Run(engine *rag.Engine) error {
	p := tea.NewProgram(New(engine), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// New creates the TUI model.
func New(engine *rag.Engine) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = titleStyle

	ti := textinput.New()
	ti.Placeholder = "Ask about your components, or /search <query>..."
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		engine:  engine,
		input:   ti,
		spinner: sp,
		scope:   search.ScopeAll,
		topK:    5,
		state:   idle,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) layout(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render(fmt.Sprintf(
		"prism — %d components indexed.\n\nType a question for a grounded answer, or /search <query> to rank components.\nCommands: /search, /scope, /k, /help, /exit",
		m.engine.Index().Len())))

	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}
	m.ready = true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		if len(m.messages) > 0 {
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
		}
		return m, nil

	case resultMsg:
		m.state = idle
		if msg.err != nil {
			m.messages = append(m.messages, message{role: "error", content: msg.err.Error()})
		} else {
			m.messages = append(m.messages, message{role: msg.role, content: msg.content})
		}
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.state == working {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state != idle {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.Reset()
			return m.submit(line)
		}
	}

	if m.state == idle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	switch {
	case line == "/exit" || line == "/quit":
		return m, tea.Quit

	case line == "/help":
		help := "Commands:\n  /search <query>  - rank components\n  /scope <name>    - set scope: all, samples, core\n  /k <n>           - set result count\n  /exit            - quit"
		m.messages = append(m.messages, message{role: "system", content: help})

	case strings.HasPrefix(line, "/scope"):
		m.scope = search.ParseScope(strings.TrimSpace(strings.TrimPrefix(line, "/scope")))
		m.messages = append(m.messages, message{role: "system", content: fmt.Sprintf("Scope set to %q.", m.scope)})

	case strings.HasPrefix(line, "/k"):
		if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/k"))); err == nil {
			m.topK = n
			m.messages = append(m.messages, message{role: "system", content: fmt.Sprintf("Top-k set to %d.", n)})
		}

	case strings.HasPrefix(line, "/search"):
		query := strings.TrimSpace(strings.TrimPrefix(line, "/search"))
		if query == "" {
			return m, nil
		}
		m.messages = append(m.messages, message{role: "user", content: "/search " + query})
		m.state = working
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, runSearch(m.engine, query, m.scope, m.topK))

	default:
		m.messages = append(m.messages, message{role: "user", content: line})
		m.state = working
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, runAnswer(m.engine, line, m.scope, m.topK))
	}

	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
	return m, nil
}

func runSearch(engine *rag.Engine, query string, scope search.Scope, k int) tea.Cmd {
	return func() tea.Msg {
		resp, err := engine.Search(context.Background(), query, scope, k)
		if err != nil {
			return resultMsg{err: err}
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d of %d components in scope:\n", len(resp.Results), resp.Pool)
		for i, r := range resp.Results {
			fmt.Fprintf(&sb, "%2d. %s %s  %s\n    %s\n",
				i+1,
				titleStyle.Render(r.Record.Name),
				scoreStyle.Render(fmt.Sprintf("%.3f", r.Score)),
				dimStyle.Render(r.Record.FilePath),
				r.Record.Summary)
		}
		return resultMsg{role: "results", content: sb.String()}
	}
}

func runAnswer(engine *rag.Engine, question string, scope search.Scope, k int) tea.Cmd {
	return func() tea.Msg {
		resp, err := engine.Answer(context.Background(), question, scope, k)
		if err != nil {
			return resultMsg{err: err}
		}
		var sb strings.Builder
		sb.WriteString(resp.Answer)
		if len(resp.Sources) > 0 {
			sb.WriteString("\n\nSources:\n")
			for _, s := range resp.Sources {
				fmt.Fprintf(&sb, "- %s (%s, %.3f)\n", s.Name, s.File, s.Score)
			}
		}
		return resultMsg{role: "answer", content: sb.String()}
	}
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return answerStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return answerStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m Model) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "answer":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n\n")
		case "results":
			sb.WriteString(msg.content + "\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n\n")
		case "system":
			sb.WriteString(dimStyle.Render(msg.content) + "\n\n")
		}
	}
	if m.state == working {
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render("Working...") + "\n")
	}
	return sb.String()
}

func (m Model) View() string {
	if !m.ready {
		return ""
	}

	status := fmt.Sprintf(" prism • scope %s • k %d", m.scope, m.topK)
	if m.state == working {
		status += " • working..."
	}
	statusBar := statusBarStyle.Width(m.width).Render(status)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
