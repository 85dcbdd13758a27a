package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/twinview/internal/viewer"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Drive a navigator interactively",
	Long: `Open the interactive viewer. Number keys navigate to the registered
views, x crashes the active window, s runs a script in it and n toggles
the view-model back-reference. Display events run on the viewer's update
loop.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	dispatcher := viewer.NewDispatcher()
	s, err := openSession(ctx, cfg, sessionOptions{dispatcher: dispatcher})
	if err != nil {
		return err
	}

	model := viewer.New(ctx, s.nav, s.pages, dispatcher)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()

	// release display callbacks still queued for the closed program
	dispatcher.Stop()
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if closeErr := s.Close(closeCtx); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
