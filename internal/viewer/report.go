package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/twinview/internal/diagnostics"
	"github.com/zjrosen/twinview/internal/navigation"
)

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// RunReport summarizes a navigation session.
type RunReport struct {
	SessionID string
	Stats     navigation.Stats
	Steps     []string
	Critical  []string
	Browser   []string
}

// NewRunReport collects a report from a navigator and the messages a
// recorder saw.
func NewRunReport(nav *navigation.Navigator, steps []string, rec *diagnostics.Recorder) RunReport {
	r := RunReport{SessionID: nav.SessionID(), Stats: nav.Stats(), Steps: steps}
	if rec != nil {
		r.Critical = rec.Critical()
		r.Browser = rec.Browser()
	}
	return r
}

// Markdown renders the report as markdown.
func (r RunReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Navigation report\n\nSession `%s`: %s.\n\n", r.SessionID, r.Stats.FormatSummary())

	b.WriteString("| Counter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Navigations | %d |\n", r.Stats.Navigations)
	fmt.Fprintf(&b, "| Recoveries | %d |\n", r.Stats.Recoveries)
	fmt.Fprintf(&b, "| Crashes | %d |\n", r.Stats.Crashes)
	fmt.Fprintf(&b, "| Pending crashes | %d |\n", r.Stats.PendingCrashes)
	fmt.Fprintf(&b, "| Failures | %d |\n", r.Stats.Failures)
	fmt.Fprintf(&b, "| Dropped | %d |\n", r.Stats.Dropped)
	fmt.Fprintf(&b, "| Last transition | %s |\n", r.Stats.LastDuration)

	section(&b, "Steps", r.Steps)
	section(&b, "Critical", r.Critical)
	section(&b, "Browser console", r.Browser)
	return b.String()
}

func section(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// RenderMarkdown renders markdown for the terminal at the given width.
func RenderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
