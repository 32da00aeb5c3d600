// Package cli wires the cobra command tree. Running antop with no
// subcommand opens the dashboard.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/errors"
)

// Root command flags
var (
	configFlag   string
	pathFlag     string
	logsFlag     string
	intervalFlag string
	watchFlag    bool
	noWatchFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "antop",
	Short: "Terminal dashboard for a fleet of local antnode processes",
	Long: `antop discovers antnode instances under a node directory glob, polls
each node's local metrics endpoint, and renders a live fleet dashboard
in the terminal.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Refresh now
  /           Filter nodes by name
  i           Cycle poll interval
  s           Cycle sort order (name/rx/tx/status)
  up/k        Select previous node
  down/j      Select next node
  Enter       Expand selected node details
  Esc         Collapse / clear filter
  ?           Show help

Examples:
  antop
  antop --path '~/ant-nodes/*'
  antop --interval 5s --watch`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return dashboardCommand(cfg)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default searches .antop.yaml, then ~/.config/antop/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&pathFlag, "path", "", "node root directory glob")
	rootCmd.PersistentFlags().StringVar(&logsFlag, "logs", "", "log file glob override")

	rootCmd.Flags().StringVar(&intervalFlag, "interval", "", "poll interval ("+config.IntervalChoices()+")")
	rootCmd.Flags().BoolVar(&watchFlag, "watch", false, "watch node directories and rescan on changes")
	rootCmd.Flags().BoolVar(&noWatchFlag, "no-watch", false, "disable filesystem watching")
}

// loadConfig resolves the effective config: file if one is found, defaults
// otherwise, with command line flags layered on top.
func loadConfig() (*config.Config, error) {
	path, err := config.Find(configFlag)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides layers the command line flags over the loaded config.
// --no-watch wins over --watch when both are given.
func applyFlagOverrides(cfg *config.Config) error {
	if pathFlag != "" {
		cfg.Nodes.Path = pathFlag
	}
	if logsFlag != "" {
		cfg.Nodes.Logs = logsFlag
	}
	if intervalFlag != "" {
		d, err := time.ParseDuration(intervalFlag)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid interval", intervalFlag),
				"Choose one of "+config.IntervalChoices())
		}
		if !config.ValidInterval(d) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unsupported interval: %s", intervalFlag),
				"Choose one of "+config.IntervalChoices())
		}
		cfg.Poll.Interval = d
	}
	if watchFlag {
		cfg.Poll.Watch = true
	}
	if noWatchFlag {
		cfg.Poll.Watch = false
	}
	return nil
}
