package filecmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/portsync/internal/board"
	"github.com/bjulian5/portsync/internal/common"
	"github.com/bjulian5/portsync/internal/followup"
	"github.com/bjulian5/portsync/internal/ui"
)

// Command files porting issues for board entries that still need them
type Command struct {
	clients *common.Clients
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "File porting issues for changes that still need porting",
		Long: `File an issue in the target repository for every board entry marked
"Not Ported" in the oldest release line that does not already have one.

An issue is linked to its change by the "#<number>" fragment in its title, so
running this twice never files the same issue twice. At most --limit issues are
filed per run; entries that already have an issue do not count.

With --dry-run each issue is rendered instead of created.

Example:
  portsync file
  portsync file --limit 25
  portsync file --dry-run`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.clients, err = common.InitClients(true)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	result, err := Execute(ctx, c.clients)
	if err != nil {
		return err
	}
	PrintResult(result, c.clients.Config.DryRun)
	if result.Failed > 0 {
		ui.Warningf("%d issues could not be filed, see the log for details", result.Failed)
	}
	return nil
}

// Execute reads the board and runs one filing pass with clients
func Execute(ctx context.Context, clients *common.Clients) (*followup.Result, error) {
	vocab := clients.Config.Vocabulary
	snapshot, err := board.Load(ctx, clients.GH, board.Target(vocab), clients.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}

	clients.Logger.Info().
		Int("entries", snapshot.Len()).
		Int("limit", clients.Config.Limit).
		Bool("dry_run", clients.Config.DryRun).
		Msg("filing follow-up issues")

	result, err := clients.Filer().Run(ctx, snapshot.Entries())
	if err != nil {
		return nil, err
	}
	clients.Logger.Info().
		Int("candidates", result.Candidates).
		Int("existing", result.Existing).
		Int("created", result.Created).
		Int("failed", result.Failed).
		Msg("filing complete")
	return result, nil
}

// PrintResult prints previews in dry-run mode, then the summary table
func PrintResult(result *followup.Result, dryRun bool) {
	if dryRun {
		for _, d := range result.Drafts {
			ui.PrintPreview(d.Title, d.Owners, d.Body)
		}
	} else {
		for _, d := range result.Drafts {
			ui.Successf("%s %s", d.Title, ui.Dim(d.URL))
		}
	}

	counts := []ui.Count{
		{Label: "Candidates", Value: result.Candidates},
		{Label: "Already filed", Value: result.Existing},
		{Label: "Skipped", Value: result.Skipped},
	}
	title := "Follow-up issues"
	if dryRun {
		title = "Follow-up issues (dry run)"
		counts = append(counts, ui.Count{Label: "Previewed", Value: result.Previewed})
	} else {
		counts = append(counts, ui.Count{Label: "Created", Value: result.Created})
	}
	counts = append(counts, ui.Count{Label: "Failed", Value: result.Failed})
	ui.PrintCounts(title, "Entries", counts)
}
