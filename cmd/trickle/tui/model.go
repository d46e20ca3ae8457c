package tuicmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/trickle/pkg/cliui"
	"github.com/papercomputeco/trickle/pkg/session"
)

// updateBuffer is the subscription depth. Updates only wake the model,
// which then renders the latest snapshot.
const updateBuffer = 256

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	tuiMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tuiPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	tuiErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	tuiRuleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
)

type tuiKeyMap struct {
	Start key.Binding
	Stop  key.Binding
	Clear key.Binding
	Quit  key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Clear, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Start, k.Stop}, {k.Clear, k.Quit}}
}

func defaultKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Start: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Stop:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
		Clear: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// sessionUpdateMsg signals that the session changed.
type sessionUpdateMsg struct{}

type tuiModel struct {
	ctx         context.Context
	sess        *session.Session
	cfg         session.Config
	updates     <-chan session.Update
	unsubscribe func()

	snap     session.Snapshot
	actErr   error
	input    textinput.Model
	viewport viewport.Model
	keys     tuiKeyMap
	help     help.Model
	width    int
	height   int
}

func newTUIModel(ctx context.Context, sess *session.Session, cfg session.Config) tuiModel {
	updates, unsubscribe := sess.Subscribe(updateBuffer)

	input := textinput.New()
	input.Placeholder = "Ask something and press enter"
	input.Prompt = tuiPromptStyle.Render("› ")
	input.CharLimit = 4000
	input.Focus()

	return tuiModel{
		ctx:         ctx,
		sess:        sess,
		cfg:         cfg,
		updates:     updates,
		unsubscribe: unsubscribe,
		snap:        sess.Snapshot(),
		input:       input,
		viewport:    viewport.New(80, 20),
		keys:        defaultKeyMap(),
		help:        help.New(),
	}
}

func (m tuiModel) Init() bubbletea.Cmd {
	return bubbletea.Batch(textinput.Blink, waitForUpdate(m.updates))
}

func (m tuiModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.viewport.Width = max(msg.Width-2, 10)
		m.viewport.Height = max(msg.Height-7, 3)
		m.refresh()
		return m, nil
	case sessionUpdateMsg:
		m.refresh()
		return m, waitForUpdate(m.updates)
	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd bubbletea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m tuiModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.Stop()
		return m, bubbletea.Quit
	case key.Matches(msg, m.keys.Start):
		return m.start()
	case key.Matches(msg, m.keys.Stop):
		m.sess.Stop()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.actErr = m.sess.Clear()
		m.refresh()
		return m, nil
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// start sends the typed prompt. A finished session is cleared first so
// enter always begins a fresh run.
func (m tuiModel) start() (bubbletea.Model, bubbletea.Cmd) {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return m, nil
	}

	if m.sess.Snapshot().State.Terminal() {
		if err := m.sess.Clear(); err != nil {
			m.actErr = err
			return m, nil
		}
	}

	m.actErr = m.sess.Start(m.ctx, prompt)
	if m.actErr == nil {
		m.input.Reset()
	}
	m.refresh()
	return m, nil
}

// refresh pulls the latest snapshot into the viewport.
func (m *tuiModel) refresh() {
	m.snap = m.sess.Snapshot()

	wrap := lipgloss.NewStyle().Width(m.viewport.Width)
	var b strings.Builder
	if m.snap.Prompt != "" {
		b.WriteString(tuiPromptStyle.Render("› " + m.snap.Prompt))
		b.WriteString("\n\n")
	}
	b.WriteString(m.snap.Text)

	m.viewport.SetContent(wrap.Render(b.String()))
	m.viewport.GotoBottom()
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.viewStats())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m tuiModel) viewHeader() string {
	id := m.snap.ID
	if len(id) > 8 {
		id = id[:8]
	}

	left := fmt.Sprintf("%s  %s  %s",
		tuiTitleStyle.Render("trickle"),
		cliui.State(m.snap.State),
		tuiMutedStyle.Render(id),
	)
	right := tuiMutedStyle.Render(fmt.Sprintf("%s · %s", m.cfg.Model, m.cfg.Strategy))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return left + "  " + right
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m tuiModel) viewStats() string {
	rule := ""
	if m.width > 0 {
		rule = tuiRuleStyle.Render(strings.Repeat("─", m.width)) + "\n"
	}

	stats := tuiMutedStyle.Render(fmt.Sprintf("%d chunks · %d chars · %d frames",
		m.snap.ChunkCount, m.snap.TotalChars, m.snap.FrameCount))
	if d := m.snap.Duration(); d > 0 {
		stats += tuiMutedStyle.Render(" · " + cliui.FormatDuration(d))
	}

	switch {
	case m.actErr != nil:
		stats += "  " + tuiErrorStyle.Render(m.actErr.Error())
	case m.snap.LastError != nil:
		stats += "  " + tuiErrorStyle.Render(m.snap.LastError.Error())
	}

	return rule + stats
}

// waitForUpdate blocks until the session publishes an update.
func waitForUpdate(updates <-chan session.Update) bubbletea.Cmd {
	return func() bubbletea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return sessionUpdateMsg{}
	}
}
