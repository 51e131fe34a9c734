package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/hrdesk/internal/chat"
	"github.com/diogo/hrdesk/internal/models"
	"github.com/diogo/hrdesk/internal/render"
)

// replyMsg carries the outcome of an exchange back to Update
type replyMsg struct {
	ex    *chat.Exchange
	reply string
	err   error
}

// Options configures the chat model
type Options struct {
	// Host is shown in the header
	Host string
	// Render configures glamour for bot turns
	Render render.Options
	// CopyReplies copies every successful reply to the clipboard
	CopyReplies bool
	// Context parents every request. Defaults to context.Background.
	Context context.Context
}

// Model is the bubbletea model of the chat window. The controller owns the
// transcript; the model only draws chat.View projections of it.
type Model struct {
	ctrl        *chat.Controller
	ctx         context.Context
	host        string
	renderOpts  render.Options
	copyReplies bool
	copyFn      func(string) error

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready bool

	// Quick question picker
	picking    bool
	pickCursor int

	notice string
	err    error

	width  int
	height int
}

// New creates the chat model around ctrl
func New(ctrl *chat.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about leave, documents, salary..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = pendingStyle

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		ctrl:        ctrl,
		ctx:         ctx,
		host:        opts.Host,
		renderOpts:  opts.Render,
		copyReplies: opts.CopyReplies,
		copyFn:      clipboard.WriteAll,
		textarea:    ta,
		spinner:     s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.picking {
		if key, ok := msg.(tea.KeyMsg); ok {
			return m.updatePicker(key)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "ctrl+c":
			m.ctrl.Cancel()
			return m, tea.Quit

		case "esc":
			if m.ctrl.Cancel() {
				m.notice = "Request cancelled"
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+l":
			m.ctrl.Clear()
			m.err = nil
			m.refresh()
			return m, nil

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "ctrl+o":
			if m.ctrl.State() == chat.Idle {
				m.openPicker()
			}
			return m, nil

		case "enter":
			return m.submit()
		}

	case replyMsg:
		reply, ok := m.ctrl.Resolve(msg.ex, msg.reply, msg.err)
		if ok && msg.err == nil && m.copyReplies {
			if err := m.copyFn(reply.Source()); err != nil {
				m.err = fmt.Errorf("failed to copy reply: %w", err)
			}
		}
		m.refresh()

	case spinner.TickMsg:
		if m.ctrl.State() == chat.Pending {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only key presses reach the textarea; other messages can carry
	// terminal escape sequences.
	if m.ctrl.State() == chat.Idle {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 5
	statusHeight := 1
	padding := 2

	vpHeight := max(height-headerHeight-inputHeight-statusHeight-padding, 5)
	contentWidth := max(width-4, 20)

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refresh()
}

// submit sends the textarea content. Blank input and input typed while a
// reply is pending are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	switch input {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	case "/help":
		m.textarea.Reset()
		m.openPicker()
		return m, nil
	case "/clear":
		m.textarea.Reset()
		m.ctrl.Clear()
		m.refresh()
		return m, nil
	}

	ex, err := m.ctrl.Submit(m.ctx, input)
	if err != nil {
		return m, nil
	}
	m.textarea.Reset()
	return m.startExchange(ex)
}

func (m Model) startExchange(ex *chat.Exchange) (tea.Model, tea.Cmd) {
	m.err = nil
	m.refresh()
	return m, tea.Batch(call(ex), m.spinner.Tick)
}

// call runs the request off the update loop
func call(ex *chat.Exchange) tea.Cmd {
	return func() tea.Msg {
		reply, err := ex.Call()
		return replyMsg{ex: ex, reply: reply, err: err}
	}
}

func (m *Model) copyLastReply() {
	reply, ok := m.ctrl.LastReply()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.copyFn(reply.Source()); err != nil {
		m.err = fmt.Errorf("failed to copy reply: %w", err)
		return
	}
	m.notice = "Reply copied to clipboard"
}

func (m *Model) openPicker() {
	m.picking = true
	m.pickCursor = 0
}

func (m Model) updatePicker(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	questions := m.ctrl.QuickQuestions()

	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc", "ctrl+o":
		m.picking = false

	case "up", "k":
		m.pickCursor--
		if m.pickCursor < 0 {
			m.pickCursor = len(questions) - 1
		}

	case "down", "j", "tab":
		m.pickCursor++
		if m.pickCursor >= len(questions) {
			m.pickCursor = 0
		}

	case "enter":
		return m.ask(m.pickCursor)

	default:
		if s := key.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(questions) {
				return m.ask(i)
			}
		}
	}

	return m, nil
}

// ask places quick question i in the transcript and sends it
func (m Model) ask(i int) (tea.Model, tea.Cmd) {
	m.picking = false
	ex, err := m.ctrl.Ask(m.ctx, i)
	if err != nil {
		return m, nil
	}
	m.textarea.Reset()
	return m.startExchange(ex)
}

// refresh redraws the transcript and follows it to the end
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	v := m.ctrl.View(m.textarea.Value())
	m.viewport.SetContent(m.transcript(v))
	if v.ScrollToEnd {
		m.viewport.GotoBottom()
	}
}

// transcript renders every entry of v as a labelled bubble
func (m Model) transcript(v chat.View) string {
	var sb strings.Builder
	bubbleWidth := max(m.viewport.Width-6, 10)
	opts := m.renderOpts.WithWidth(bubbleWidth - 4)

	for i, e := range v.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		if e.Sender == models.SenderUser {
			sb.WriteString(userLabelStyle.Render("● You"))
			sb.WriteString("\n")
			sb.WriteString(userBubbleStyle.Width(bubbleWidth).Render(e.Content))
		} else {
			sb.WriteString(botLabelStyle.Render("✦ HR Assistant"))
			sb.WriteString("\n")
			sb.WriteString(botBubbleStyle.Width(bubbleWidth).Render(render.MarkdownOrPlain(e.Content, opts)))
		}
		sb.WriteString("\n")
	}

	if v.Onboarding {
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render("Try one of these (ctrl+o):"))
		sb.WriteString("\n")
		for i, q := range m.ctrl.QuickQuestions() {
			sb.WriteString(subtitleStyle.Render(fmt.Sprintf("  %d. %s", i+1, q)))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return pendingStyle.Render("  Initializing...")
	}
	if m.picking {
		return m.renderPicker()
	}

	v := m.ctrl.View(m.textarea.Value())
	contentWidth := m.viewport.Width

	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ HR Assistant"),
		separatorStyle.Render("  •  "),
		subtitleStyle.Render(m.hostLabel()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	var input string
	if v.ShowPending {
		input = m.spinner.View() + pendingStyle.Render(" Assistant is typing...")
	} else {
		send := sendIdleStyle.Render("enter ↵ send")
		if v.SendEnabled {
			send = sendReadyStyle.Render("enter ↵ send")
		}
		input = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Center, inputLabelStyle.Render("You"), "  ", send),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) hostLabel() string {
	if m.host == "" {
		return "local portal"
	}
	return m.host
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"^O", "Questions"},
		{"^L", "Clear"},
		{"^Y", "Copy"},
		{"Esc", "Cancel/Quit"},
	}

	items := make([]string, len(shortcuts))
	for i, s := range shortcuts {
		items[i] = statusKeyStyle.Render(s.key) + statusDescStyle.Render(" "+s.desc)
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

func (m Model) renderPicker() string {
	width := max(m.width-8, 40)

	var sb strings.Builder
	sb.WriteString(pickerTitleStyle.Render("Quick questions"))
	sb.WriteString("\n\n")

	for i, q := range m.ctrl.QuickQuestions() {
		cursor := "  "
		style := pickerItemStyle
		if i == m.pickCursor {
			cursor = pickerCursorStyle.Render("▸ ")
			style = pickerSelectedStyle
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", cursor, style.Render(fmt.Sprintf("%d. %s", i+1, q))))
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Join([]string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter/1-9") + statusDescStyle.Render(" Ask"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Back"),
	}, "  │  "))

	return pickerStyle.Width(width).Render(sb.String())
}

// Run starts the chat TUI on the alternate screen
func Run(ctrl *chat.Controller, opts Options) error {
	p := tea.NewProgram(New(ctrl, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
