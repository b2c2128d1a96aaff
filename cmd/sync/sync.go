package synccmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/portsync/internal/common"
	"github.com/bjulian5/portsync/internal/engine"
	"github.com/bjulian5/portsync/internal/ui"
)

// Command fetches newly merged changes and reconciles them onto the board
type Command struct {
	clients *common.Clients
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch merged changes and reconcile the porting board",
		Long: `Fetch every pull request merged into the source repository since the cache
watermark, classify it and bring its board entry in line.

New changes get a board entry with a disposition, suggested owner and release.
On existing entries the disposition is never changed and the release is only
filled in when it is blank. The suggested owner is rewritten whenever the newly
computed owner differs from the one on the board, including clearing it.

With --dry-run the board is read but never written. The cache is still updated.

Example:
  portsync sync
  portsync sync --dry-run --log-level debug
  portsync sync --repo-path ~/src/TypeScript`,
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
		ui.Warningf("%d board updates failed, see the log for details", result.Failed)
	}
	return nil
}

// Execute performs one sync pass with clients
func Execute(ctx context.Context, clients *common.Clients) (*engine.SyncResult, error) {
	ops, err := clients.SyncOperations()
	if err != nil {
		return nil, err
	}

	clients.Logger.Info().Bool("dry_run", clients.Config.DryRun).Msg("starting sync")
	result, err := ops.PerformSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}
	clients.Logger.Info().
		Int("scanned", result.Scanned).
		Int("new", result.New).
		Int("total", result.Total).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("failed", result.Failed).
		Msg("sync complete")
	return result, nil
}

// PrintResult prints the sync summary table
func PrintResult(result *engine.SyncResult, dryRun bool) {
	counts := []ui.Count{
		{Label: "Scanned", Value: result.Scanned},
		{Label: "New", Value: result.New},
		{Label: "Reconciled", Value: result.Total},
	}
	if dryRun {
		counts = append(counts, ui.Count{Label: "Planned", Value: result.Planned})
	} else {
		counts = append(counts,
			ui.Count{Label: "Created", Value: result.Created},
			ui.Count{Label: "Updated", Value: result.Updated},
		)
	}
	counts = append(counts,
		ui.Count{Label: "Unchanged", Value: result.Unchanged},
		ui.Count{Label: "Failed", Value: result.Failed},
	)

	title := "Sync"
	if dryRun {
		title = "Sync (dry run)"
	}
	ui.PrintCounts(title, "Changes", counts)

	if !dryRun && result.Failed == 0 && result.Created+result.Updated == 0 {
		ui.Success("Board already up to date")
	}
}
