package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/discover"
	"github.com/skyrmion/antop/internal/format"
	"github.com/skyrmion/antop/internal/logger"
	"github.com/skyrmion/antop/internal/metrics"
	"github.com/skyrmion/antop/internal/store"
)

// listCmd prints the fleet once without opening the TUI.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Poll every node once and print the fleet as a table",
	Long: `Discover nodes, poll each one once, and print the result.

Useful for scripting, cron jobs, or terminals where the dashboard
cannot run.

Examples:
  antop list
  antop list --path '~/ant-nodes/*'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return listCommand(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// listCommand discovers the fleet, runs a single poll sweep, and renders
// a table.
func listCommand(out io.Writer, cfg *config.Config) error {
	log := logger.NewEnvLogger("antop")

	resolver := discover.NewResolver(log)
	endpoints, err := resolver.Resolve(cfg.NodeGlob(), cfg.LogOverrideGlob())
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		fmt.Fprintf(out, "No nodes found under %s\n", cfg.Nodes.Path)
		return nil
	}

	st := store.New(cfg.History.Size, log)
	st.Reconcile(endpoints)

	fetcher := metrics.NewFetcher(metrics.DefaultTimeout, log)
	ctx, cancel := context.WithTimeout(context.Background(), 2*metrics.DefaultTimeout)
	defer cancel()

	for res := range fetcher.FetchAll(ctx, endpoints) {
		if res.Err != nil {
			st.ApplyFailure(res.Endpoint.ID, res.Err)
		} else {
			st.ApplySuccess(res.Endpoint.ID, res.Sample)
		}
	}

	renderNodeTable(out, st.Snapshot())
	return nil
}

// renderNodeTable prints one row per node plus a summary line.
func renderNodeTable(out io.Writer, snap store.FleetSnapshot) {
	table := tablewriter.NewWriter(out)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Node", "Status", "Uptime", "Mem", "CPU", "Peers", "Records", "Rewards", "In", "Out"})

	for _, n := range snap.Nodes {
		status := n.Status.String()
		if n.Status == store.StatusError && n.Reason != "" {
			status += " (" + n.Reason + ")"
		}
		table.Append([]string{
			n.ID,
			status,
			format.Uptime(n.Latest.Uptime()),
			format.MegaBytes(n.Latest.MemoryMB()),
			format.Percent(n.Latest.CPUPercent()),
			format.Count(n.Latest.Peers()),
			format.Count(n.Latest.Records()),
			format.Attos(n.Latest.Rewards()),
			format.Bytes(n.Latest.BandwidthIn()),
			format.Bytes(n.Latest.BandwidthOut()),
		})
	}
	table.Render()

	fmt.Fprintf(out, "\n%d nodes, %d running, %d unreachable, %d errored\n",
		snap.Total(), snap.Running, snap.Unreachable, snap.Errored)
}
