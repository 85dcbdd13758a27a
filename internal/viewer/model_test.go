package viewer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/twinview/internal/headless"
	"github.com/zjrosen/twinview/internal/locator"
	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/pubsub"
	"github.com/zjrosen/twinview/internal/viewmodel"
)

type fixture struct {
	model      Model
	nav        *navigation.Navigator
	provider   *headless.Provider
	dispatcher *Dispatcher
	pages      []*viewmodel.Page
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	entries := []locator.Entry{
		{Name: "Home", Path: "/home.html"},
		{Name: "Person", ID: "detail", Path: "/person-detail.html"},
	}
	dispatcher := NewDispatcher()
	provider := headless.NewProvider(headless.WithDispatcher(dispatcher))
	nav, err := navigation.New(navigation.Config{
		Provider:  provider,
		Engine:    headless.NewEngine(0),
		Locator:   locator.NewRegistry(entries...),
		SessionID: "viewer-session",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		dispatcher.Stop()
		_ = nav.Close()
	})

	pages := viewmodel.Pages(entries)
	m := New(ctx, nav, pages, dispatcher)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return &fixture{model: next.(Model), nav: nav, provider: provider, dispatcher: dispatcher, pages: pages}
}

func (f *fixture) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) press(t *testing.T, k string) tea.Cmd {
	t.Helper()
	return f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// navigateTo presses the page key and feeds the result back into the model.
func (f *fixture) navigateTo(t *testing.T, k string) {
	t.Helper()
	cmd := f.press(t, k)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, navDoneMsg{}, msg)
	f.update(t, msg)
}

// nextEvent reads the model's navigator subscription.
func (f *fixture) nextEvent(t *testing.T) pubsub.Event[navigation.Event] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg := pubsub.ListenCmd(ctx, f.model.events)()
	ev, ok := msg.(pubsub.Event[navigation.Event])
	require.True(t, ok, "timed out waiting for navigator event")
	return ev
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := Model{}
	require.Equal(t, "Starting...", m.View())
}

func TestModel_NavigateKey(t *testing.T) {
	f := newFixture(t)

	f.navigateTo(t, "1")
	require.Equal(t, "showing Home", f.model.status)
	require.False(t, f.model.statusErr)
	require.Equal(t, "/home.html", f.nav.URL())
	require.Same(t, f.pages[0], f.nav.Root())

	f.navigateTo(t, "2")
	require.Equal(t, "/person-detail.html", f.nav.URL())
	require.Contains(t, f.model.View(), "Person")
}

func TestModel_NavigateUnboundKey(t *testing.T) {
	f := newFixture(t)

	cmd := f.press(t, "7")
	require.Nil(t, cmd)
	require.True(t, f.model.statusErr)
	require.Contains(t, f.model.status, "no view bound to 7")
}

func TestModel_DisplayRunsOnUpdateLoop(t *testing.T) {
	f := newFixture(t)
	f.navigateTo(t, "1")

	require.Equal(t, navigation.EventFirstLoad, f.nextEvent(t).Type)
	require.Equal(t, navigation.EventNavigated, f.nextEvent(t).Type)

	msg := f.dispatcher.Next()()
	require.IsType(t, dispatchMsg{}, msg)
	cmd := f.update(t, msg)
	require.NotNil(t, cmd, "dispatcher is re-armed")

	ev := f.nextEvent(t)
	require.Equal(t, navigation.EventDisplayed, ev.Type)
	require.Same(t, f.pages[0], ev.Payload.ViewModel)
}

func TestModel_EventsAreLogged(t *testing.T) {
	f := newFixture(t)

	cmd := f.update(t, pubsub.Event[navigation.Event]{
		Type:    navigation.EventNavigated,
		Payload: navigation.Event{NewViewModel: f.pages[1], Path: "/person-detail.html"},
	})
	require.NotNil(t, cmd)
	require.Len(t, f.model.lines, 1)
	require.Contains(t, f.model.lines[0], "navigated none -> Person/detail (/person-detail.html)")
	require.Contains(t, f.model.View(), "Person/detail")
}

func TestModel_CrashKeyRecovers(t *testing.T) {
	f := newFixture(t)
	f.navigateTo(t, "1")
	first := f.nav.Active()

	f.press(t, "x")
	require.Equal(t, "crashed active window", f.model.status)

	require.Eventually(t, func() bool {
		a := f.nav.Active()
		return a != nil && a != first && f.nav.State() == navigation.StateIdle
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 1, f.nav.Stats().Recoveries)
	require.Equal(t, "/home.html", f.nav.URL())
}

// snapshot renders the screen without the timestamped log pane and the
// timing-dependent stats line.
func snapshot(m Model) string {
	header := strings.Split(m.header(), "\n")
	return strings.Join([]string{header[0], header[1], header[3], m.footer()}, "\n") + "\n"
}

func outputContains(parts ...string) func([]byte) bool {
	return func(out []byte) bool {
		for _, p := range parts {
			if !bytes.Contains(out, []byte(p)) {
				return false
			}
		}
		return true
	}
}

func TestModel_ProgramRecoversCrashedWindow(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	f := newFixture(t)
	tm := teatest.NewTestModel(t, f.model, teatest.WithInitialTermSize(100, 30))
	wait := []teatest.WaitForOption{teatest.WithDuration(3 * time.Second), teatest.WithCheckInterval(10 * time.Millisecond)}

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	teatest.WaitFor(t, tm.Output(), outputContains("showing Home", "displayed Home"), wait...)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	teatest.WaitFor(t, tm.Output(), outputContains("recovered Home (/home.html)"), wait...)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.True(t, ok)
	require.Equal(t, 1, f.nav.Stats().Crashes)
	teatest.RequireEqualOutput(t, []byte(snapshot(final)))
}

func TestModel_CrashKeyWithoutWindow(t *testing.T) {
	f := newFixture(t)

	f.press(t, "x")
	require.True(t, f.model.statusErr)
	require.Equal(t, "no window to crash", f.model.status)
}

func TestModel_ScriptKey(t *testing.T) {
	f := newFixture(t)
	f.navigateTo(t, "1")

	f.press(t, "s")
	w := f.nav.Active().(*headless.Window)
	require.Contains(t, w.Scripts(), pingScript)
}

func TestModel_ToggleNavigable(t *testing.T) {
	f := newFixture(t)
	f.navigateTo(t, "1")
	require.Nil(t, f.pages[0].Navigator())

	f.press(t, "n")
	require.True(t, f.model.useNavigable)
	require.Contains(t, f.model.status, "on")
	require.Same(t, f.nav, f.pages[0].Navigator())

	f.press(t, "n")
	require.Contains(t, f.model.status, "off")
}

func TestModel_Quit(t *testing.T) {
	f := newFixture(t)
	cmd := f.press(t, "q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_LinesAreBounded(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < maxLines+10; i++ {
		f.model.appendLine("line")
	}
	require.Len(t, f.model.lines, maxLines)
}
