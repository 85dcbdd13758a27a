package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/twinview/internal/diagnostics"
)

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "List persisted critical and browser messages",
	Long: `List diagnostics recorded by earlier sessions. Recording requires
diagnostics.enabled in the config.

Examples:
  twinview diagnostics
  twinview diagnostics --kind critical --limit 20
  twinview diagnostics --session 3f2c... --json
  twinview diagnostics --prune 168h`,
	RunE: runDiagnostics,
}

var (
	diagSession string
	diagKind    string
	diagLimit   int
	diagJSON    bool
	diagPrune   time.Duration
)

func init() {
	diagnosticsCmd.Flags().StringVar(&diagSession, "session", "", "only entries from this session")
	diagnosticsCmd.Flags().StringVar(&diagKind, "kind", "", "only entries of this kind: critical or browser")
	diagnosticsCmd.Flags().IntVarP(&diagLimit, "limit", "n", 0, "maximum number of entries (0 = all)")
	diagnosticsCmd.Flags().BoolVar(&diagJSON, "json", false, "print entries as JSON")
	diagnosticsCmd.Flags().DurationVar(&diagPrune, "prune", 0, "delete entries older than this before listing")
	rootCmd.AddCommand(diagnosticsCmd)
}

// entryDTO is the JSON shape of a diagnostics entry.
type entryDTO struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func runDiagnostics(cmd *cobra.Command, _ []string) error {
	kind := diagnostics.Kind(diagKind)
	switch kind {
	case "", diagnostics.KindCritical, diagnostics.KindBrowser:
	default:
		return fmt.Errorf("--kind must be %q or %q, got %q", diagnostics.KindCritical, diagnostics.KindBrowser, diagKind)
	}
	if cfg.Diagnostics.StorePath == "" {
		return fmt.Errorf("diagnostics.store_path is not set")
	}

	store, err := diagnostics.OpenStore(cfg.Diagnostics.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if diagPrune > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-diagPrune))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "pruned %d entries\n", n)
	}

	entries, err := store.List(ctx, diagnostics.Filter{SessionID: diagSession, Kind: kind, Limit: diagLimit})
	if err != nil {
		return err
	}
	if diagJSON {
		return writeEntriesJSON(cmd.OutOrStdout(), entries)
	}
	return writeEntriesTable(cmd.OutOrStdout(), entries)
}

func writeEntriesJSON(w io.Writer, entries []diagnostics.Entry) error {
	dtos := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryDTO{
			ID:        e.ID,
			SessionID: e.SessionID,
			Kind:      string(e.Kind),
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dtos)
}

func writeEntriesTable(w io.Writer, entries []diagnostics.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no diagnostics recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tSESSION\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Kind, shortID(e.SessionID), e.Message)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
