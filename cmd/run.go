package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/zjrosen/twinview/internal/navigation"
	"github.com/zjrosen/twinview/internal/viewer"
	"github.com/zjrosen/twinview/internal/viewmodel"
)

var runCmd = &cobra.Command{
	Use:   "run [view...]",
	Short: "Navigate through views on the headless surface",
	Long: `Navigate through the named views in order and print the navigator's
event stream. Views are registry labels, "Name" or "Name/ID". With no
arguments every registered view is visited.

Examples:
  twinview run Home Person/detail
  twinview run Home Person --crash-after 1
  twinview run --report
  twinview run --profile cpu --profile-path ./profiles`,
	RunE: runViews,
}

var (
	runCrashAfter  int
	runReport      bool
	runProfile     string
	runProfilePath string
	runTimeout     time.Duration
)

func init() {
	runCmd.Flags().IntVar(&runCrashAfter, "crash-after", 0, "crash the active window after the Nth navigation (0 = never)")
	runCmd.Flags().BoolVar(&runReport, "report", false, "render a markdown report when done")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "profile the run: cpu, mem or block")
	runCmd.Flags().StringVar(&runProfilePath, "profile-path", ".", "directory for profile output")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second, "overall time limit")
	rootCmd.AddCommand(runCmd)
}

func runViews(cmd *cobra.Command, args []string) error {
	p, err := startProfile(runProfile, runProfilePath)
	if err != nil {
		return err
	}
	if p != nil {
		defer p.Stop()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	s, err := openSession(ctx, cfg, sessionOptions{})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range s.nav.Subscribe(context.Background()) {
			fmt.Fprintln(out, viewer.FormatEvent(ev))
		}
	}()

	steps := visit(ctx, s, selectPages(s.pages, args), runCrashAfter)
	s.nav.Wait()
	report := viewer.NewRunReport(s.nav, steps, s.recorder)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	closeErr := s.Close(closeCtx)
	<-printed

	if err := writeSummary(out, report, runReport); err != nil {
		return err
	}
	return closeErr
}

// visit navigates through pages in order and returns one line per step.
func visit(ctx context.Context, s *session, pages []*viewmodel.Page, crashAfter int) []string {
	steps := make([]string, 0, len(pages))
	for i, p := range pages {
		opts := append(p.Options(), mode(cfg))
		if err := s.nav.Navigate(ctx, p, opts...); err != nil {
			steps = append(steps, fmt.Sprintf("%s failed: %v", p.Label(), err))
			continue
		}
		steps = append(steps, fmt.Sprintf("%s shown at %s", p.Label(), s.nav.URL()))

		if crashAfter > 0 && i+1 == crashAfter {
			steps = append(steps, crashActive(ctx, s.nav))
		}
	}
	return steps
}

// crashActive crashes the active window and waits for recovery to settle.
func crashActive(ctx context.Context, nav *navigation.Navigator) string {
	active := nav.Active()
	c, ok := active.(viewer.Crasher)
	if !ok {
		return "no window to crash"
	}
	c.Crash("crash requested by --crash-after")

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Sprintf("recovery did not finish: %v", ctx.Err())
		case <-ticker.C:
		}
		if nav.State() != navigation.StateIdle {
			continue
		}
		if current := nav.Active(); current != nil && current != active {
			return fmt.Sprintf("recovered %s on window %s", nav.URL(), current.ID())
		}
		if nav.Active() == nil {
			return "recovery abandoned"
		}
	}
}

// selectPages maps labels to registered pages. Unknown labels become pages
// that fail to resolve, so the run reports them.
func selectPages(pages []*viewmodel.Page, labels []string) []*viewmodel.Page {
	if len(labels) == 0 {
		return pages
	}
	selected := make([]*viewmodel.Page, 0, len(labels))
	for _, label := range labels {
		if p, ok := viewmodel.Find(pages, label); ok {
			selected = append(selected, p)
			continue
		}
		name, id, _ := strings.Cut(label, "/")
		selected = append(selected, &viewmodel.Page{Name: name, ID: id})
	}
	return selected
}

func writeSummary(out io.Writer, report viewer.RunReport, markdown bool) error {
	if !markdown {
		_, err := fmt.Fprintf(out, "session %s: %s\n", report.SessionID, report.Stats.FormatSummary())
		return err
	}
	rendered, err := viewer.RenderMarkdown(report.Markdown(), 80)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// startProfile starts the requested profile, or returns nil for none.
func startProfile(kind, path string) (interface{ Stop() }, error) {
	opts := []func(*profile.Profile){profile.ProfilePath(path), profile.NoShutdownHook, profile.Quiet}
	switch kind {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(append(opts, profile.CPUProfile)...), nil
	case "mem":
		return profile.Start(append(opts, profile.MemProfile, profile.MemProfileAllocs)...), nil
	case "block":
		return profile.Start(append(opts, profile.BlockProfile)...), nil
	default:
		return nil, fmt.Errorf("unknown profile %q (want cpu, mem or block)", kind)
	}
}
