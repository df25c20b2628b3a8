package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recipechat/internal/domain"
)

const authorUser = "You"

// ChatPort is the TUI-facing subset of the chat handler.
type ChatPort interface {
	Welcome() domain.Message
	Respond(ctx context.Context, text string) domain.Message
}

// replyMsg carries a finished answer back into the event loop.
type replyMsg struct {
	reply domain.Message
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	chat       ChatPort
	ctx        context.Context
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript []domain.Message
	pending    int
	status     string
	ready      bool
}

// New creates a new TUI model instance. The welcome message opens the transcript.
func New(ctx context.Context, chat ChatPort, status string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "e.g. high protein, vegetarian, under 600 kcal"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle
	vp := viewport.New(0, 0)
	return Model{
		chat:       chat,
		ctx:        ctx,
		input:      ti,
		viewport:   vp,
		spinner:    sp,
		transcript: []domain.Message{chat.Welcome()},
		status:     status,
	}
}

// Init starts the cursor blink and the spinner.
func (m Model) Init() tea.Cmd { return tea.Batch(textinput.Blink, m.spinner.Tick) }

// Update handles key, window and reply events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header + status + input box + spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh-th)
		m.refresh()
		return m, nil
	case replyMsg:
		m.pending--
		m.transcript = append(m.transcript, msg.reply)
		m.status = "Ready."
		if m.pending > 0 {
			m.status = fmt.Sprintf("Generating %d more...", m.pending)
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.input.Reset()
			m.transcript = append(m.transcript, domain.Message{Author: authorUser, Content: q})
			m.pending++
			m.status = "Generating recipe..."
			m.refresh()
			return m, m.ask(q)
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the pipeline as a command so the event loop keeps handling input.
func (m Model) ask(q string) tea.Cmd {
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		return replyMsg{reply: chat.Respond(ctx, q)}
	}
}

// View renders the layout: header, transcript, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Recipe Generator")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.pending > 0 {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.transcript, m.viewport.Width))
	m.viewport.GotoBottom()
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	authorStyles       = map[string]lipgloss.Style{
		domain.AuthorSystem: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),
		domain.AuthorBot:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		authorUser:          lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	}
)

func renderTranscript(msgs []domain.Message, width int) string {
	body := lipgloss.NewStyle()
	if width > 4 {
		body = body.Width(width - 4)
	}
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		style, ok := authorStyles[msg.Author]
		if !ok {
			style = lipgloss.NewStyle().Bold(true)
		}
		content := msg.Content
		if strings.TrimSpace(content) == "" {
			content = "(empty answer)"
		}
		parts = append(parts, style.Render(msg.Author+":")+"\n"+body.Render(content))
	}
	return strings.Join(parts, "\n\n")
}
