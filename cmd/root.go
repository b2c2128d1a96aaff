package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	filecmd "github.com/bjulian5/portsync/cmd/file"
	"github.com/bjulian5/portsync/cmd/schedule"
	"github.com/bjulian5/portsync/cmd/status"
	synccmd "github.com/bjulian5/portsync/cmd/sync"
	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portsync",
	Short: "Keep the porting board in step with upstream merges",
	Long: `Portsync tracks pull requests merged into the upstream TypeScript repository,
classifies whether each one needs to be ported, and reflects that on the
porting project board. It can also file a porting issue for every change that
still needs one.

Every run resumes from the watermark stored in the local cache.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	v := viper.GetViper()
	config.SetDefaults(v)

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyCache, config.DefaultCachePath, "Path of the change cache")
	flags.String(config.KeyRepoPath, "", "Local clone of the source repository used for release attribution")
	flags.Bool(config.KeyDryRun, false, "Plan and preview without writing to GitHub")
	flags.Int(config.KeyLimit, config.DefaultLimit, "Maximum number of issues to file per run (0 for no limit)")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.Int(config.KeyPageSize, config.DefaultPageSize, "Items requested per GitHub page (1-100)")
	flags.Int(config.KeyFileRefetchAttempts, config.DefaultFileRefetchAttempts, "Attempts at reading a change's file list from the first page")

	for _, key := range []string{
		config.KeyCache,
		config.KeyRepoPath,
		config.KeyDryRun,
		config.KeyLimit,
		config.KeyLogLevel,
		config.KeyPageSize,
		config.KeyFileRefetchAttempts,
	} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}

	commands := []Command{
		&synccmd.Command{},
		&filecmd.Command{},
		&status.Command{},
		&schedule.Command{},
	}

	for _, cmd := range commands {
		cmd.Register(rootCmd)
	}
}
