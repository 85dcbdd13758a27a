// Package viewer is the interactive terminal front end: it drives a
// navigator from the keyboard and shows its events and logs.
package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/log"
	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/pubsub"
	"github.com/zjrosen/twinview/internal/viewmodel"
)

const (
	maxLines     = 500
	headerHeight = 4
	footerHeight = 1
	pingScript   = "console.log('ping from viewer')"
)

// navDoneMsg reports the end of a keyboard-triggered navigation.
type navDoneMsg struct {
	label string
	err   error
}

// Crasher is implemented by windows that can be made to crash on demand.
type Crasher interface {
	Crash(reason string)
}

// Model is the Bubble Tea model for the viewer.
type Model struct {
	ctx        context.Context
	nav        *navigation.Navigator
	pages      []*viewmodel.Page
	dispatcher *Dispatcher
	events     <-chan pubsub.Event[navigation.Event]
	logs       *log.LogListener

	keys         KeyMap
	viewport     viewport.Model
	lines        []string
	status       string
	statusErr    bool
	useNavigable bool

	width  int
	height int
	ready  bool
}

// New creates the viewer model. The dispatcher must be the one the
// navigator's provider displays through.
func New(ctx context.Context, nav *navigation.Navigator, pages []*viewmodel.Page, dispatcher *Dispatcher) Model {
	return Model{
		ctx:        ctx,
		nav:        nav,
		pages:      pages,
		dispatcher: dispatcher,
		events:     nav.Subscribe(ctx),
		logs:       log.NewListener(ctx),
		keys:       DefaultKeyMap(),
		viewport:   viewport.New(80, 20),
	}
}

// Init starts the event, log and display listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		pubsub.ListenCmd(m.ctx, m.events),
		m.dispatcher.Next(),
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight-2, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case navDoneMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("navigation to %s failed: %v", msg.label, msg.err), true)
		} else {
			m.setStatus("showing "+msg.label, false)
		}
		return m, nil

	case dispatchMsg:
		msg.fn()
		return m, m.dispatcher.Next()

	case pubsub.Event[navigation.Event]:
		m.appendLine(FormatEvent(msg))
		return m, pubsub.ListenCmd(m.ctx, m.events)

	case log.LogEvent:
		m.appendLine(logStyle(msg.Payload.Level).Render(msg.Payload.String()))
		return m, m.logs.Listen()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Navigate):
		idx := int(msg.String()[0] - '1')
		if idx >= len(m.pages) {
			m.setStatus(fmt.Sprintf("no view bound to %s", msg.String()), true)
			return m, nil
		}
		return m, m.navigate(m.pages[idx])

	case key.Matches(msg, m.keys.Crash):
		c, ok := m.nav.Active().(Crasher)
		if !ok {
			m.setStatus("no window to crash", true)
			return m, nil
		}
		c.Crash("crashed from viewer")
		m.setStatus("crashed active window", false)
		return m, nil

	case key.Matches(msg, m.keys.Script):
		m.nav.ExecuteScript(pingScript)
		m.setStatus("script sent", false)
		return m, nil

	case key.Matches(msg, m.keys.Navigable):
		m.useNavigable = !m.useNavigable
		m.nav.SetUseNavigable(m.useNavigable)
		m.setStatus(fmt.Sprintf("view-model back-reference %s", onOff(m.useNavigable)), false)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
		return m, nil
	}
	return m, nil
}

// navigate returns a command that runs the navigation off the update loop.
func (m Model) navigate(p *viewmodel.Page) tea.Cmd {
	ctx, nav := m.ctx, m.nav
	return func() tea.Msg {
		return navDoneMsg{label: p.Label(), err: nav.Navigate(ctx, p, p.Options()...)}
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, time.Now().Format("15:04:05")+" "+line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.refresh()
}

func (m *Model) refresh() {
	atBottom := m.viewport.AtBottom()
	content := strings.Join(m.lines, "\n")
	if m.viewport.Width > 0 {
		content = wordwrap.String(content, m.viewport.Width)
	}
	m.viewport.SetContent(content)
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// View renders the viewer.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		paneStyle.Width(max(m.width-2, 10)).Render(m.viewport.View()),
		m.footer(),
	)
}

func (m Model) header() string {
	state := m.nav.State().String()
	style, ok := stateStyles[state]
	if !ok {
		style = mutedStyle
	}
	url := m.nav.URL()
	if url == "" {
		url = "-"
	}
	view := "-"
	if root := m.nav.Root(); root != nil {
		view = locator.NameOf(root)
	}

	width := max(m.width, 20)
	lines := []string{
		titleStyle.Render("twinview") + "  " + style.Render(state) + "  " + mutedStyle.Render("session "+m.nav.SessionID()),
		truncate.StringWithTail(fmt.Sprintf("view %s  url %s", view, url), uint(width), "…"), //nolint:gosec // width is positive
		mutedStyle.Render(m.nav.Stats().FormatSummary()),
		m.pageList(width),
	}
	return strings.Join(lines, "\n")
}

func (m Model) pageList(width int) string {
	parts := make([]string, 0, len(m.pages))
	for i, p := range m.pages {
		if i >= 9 {
			break
		}
		parts = append(parts, keyStyle.Render(fmt.Sprintf("%d", i+1))+" "+p.Label())
	}
	return truncate.StringWithTail(strings.Join(parts, "  "), uint(width), "…") //nolint:gosec // width is positive
}

func (m Model) footer() string {
	if m.status != "" {
		if m.statusErr {
			return errorStyle.Render(m.status)
		}
		return m.status
	}
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// FormatEvent renders a navigator event as one log line.
func FormatEvent(ev pubsub.Event[navigation.Event]) string {
	p := ev.Payload
	switch ev.Type {
	case navigation.EventNavigated:
		return fmt.Sprintf("navigated %s -> %s (%s)", nameOr(p.OldViewModel), nameOr(p.NewViewModel), p.Path)
	case navigation.EventDisplayed:
		return fmt.Sprintf("displayed %s", nameOr(p.ViewModel))
	case navigation.EventRecovered:
		return fmt.Sprintf("recovered %s (%s)", nameOr(p.NewViewModel), p.Path)
	case navigation.EventFirstLoad:
		return "first load"
	default:
		return string(ev.Type)
	}
}

func nameOr(vm any) string {
	if p, ok := vm.(*viewmodel.Page); ok {
		return p.Label()
	}
	if name := locator.NameOf(vm); name != "" {
		return name
	}
	return "none"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
