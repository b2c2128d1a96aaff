package status

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjulian5/portsync/internal/common"
	"github.com/bjulian5/portsync/internal/engine"
	"github.com/bjulian5/portsync/internal/model"
	"github.com/bjulian5/portsync/internal/ui"
)

// Command summarizes the local cache without touching the network
type Command struct {
	clients *common.Clients
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the local change cache",
		Long: `Show the cache watermark, how many changes are cached and how they classify.
Nothing is read from GitHub, so no token is needed.

Example:
  portsync status
  portsync status --cache ./pr_cache.json`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.clients, err = common.InitClients(false)
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
	snap, err := c.clients.Store.Load()
	if err != nil {
		return err
	}
	summary := engine.SummarizeCache(snap, c.clients.Classifier)
	printSummary(c.clients.Store.Path(), summary)
	return nil
}

func printSummary(path string, s *engine.CacheSummary) {
	ui.Header("Cache")
	ui.Println(ui.Dim(path))
	ui.Infof("Version:   %d", s.Version)
	ui.Infof("Watermark: %s", s.Watermark.Format(time.RFC3339))
	ui.Infof("Changes:   %d", s.Records)
	if s.Records == 0 {
		return
	}
	ui.Infof("Merged:    %s to %s", s.Oldest.Format(time.DateOnly), s.Newest.Format(time.DateOnly))

	counts := make([]ui.Count, 0, len(s.ByDisposition))
	for _, d := range model.Dispositions() {
		n, ok := s.ByDisposition[d]
		if !ok {
			continue
		}
		style := ui.DispositionStyle(d)
		counts = append(counts, ui.Count{Label: string(d), Value: n, Style: &style})
	}
	ui.PrintCounts("Classification", "Disposition", counts)
}
