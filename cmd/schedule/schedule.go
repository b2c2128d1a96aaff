package schedule

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	filecmd "github.com/bjulian5/portsync/cmd/file"
	synccmd "github.com/bjulian5/portsync/cmd/sync"
	"github.com/bjulian5/portsync/internal/common"
	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/schedule"
)

// Command keeps running sync followed by file on a cron schedule
type Command struct {
	clients *common.Clients
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run sync and file on a schedule",
		Long: `Stay in the foreground and run "sync" followed by "file" every time the cron
expression fires. Configuration and the cache are reloaded on every run, and a
run that is still going when the next one is due causes that tick to be skipped.

Stop with Ctrl-C; an in-flight run is allowed to finish.

Example:
  portsync schedule
  portsync schedule --cron "*/30 * * * *"
  portsync schedule --cron @daily --limit 25`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.clients, err = common.InitClients(true)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().String(config.KeyCron, config.DefaultCron, "Cron expression (five fields, or a descriptor such as @hourly)")
	_ = viper.BindPFlag(config.KeyCron, cmd.Flags().Lookup(config.KeyCron))

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	s, err := schedule.New(c.clients.Config.Cron, runOnce, c.clients.Logger)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// runOnce does one sync then one filing pass with freshly loaded clients
func runOnce(ctx context.Context) error {
	clients, err := common.InitClients(true)
	if err != nil {
		return err
	}

	var errs []error
	if result, err := synccmd.Execute(ctx, clients); err != nil {
		errs = append(errs, err)
	} else {
		synccmd.PrintResult(result, clients.Config.DryRun)
	}

	if result, err := filecmd.Execute(ctx, clients); err != nil {
		errs = append(errs, err)
	} else {
		filecmd.PrintResult(result, clients.Config.DryRun)
	}
	return errors.Join(errs...)
}
