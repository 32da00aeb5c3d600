package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/errors"
)

var (
	initForceFlag  bool
	initGlobalFlag bool
	initYesFlag    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an antop config file",
	Long: `Create a config file by answering a few questions.

By default the file is written to ./` + config.ConfigFileName + `. With
--global it goes to ~/` + config.GlobalConfigDir + `/` + config.GlobalConfigFile + ` instead,
where every invocation of antop will find it.

Examples:
  antop init
  antop init --global
  antop init --yes --path '~/ant-nodes/*'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(InitOptions{
			Global:         initGlobalFlag,
			Overwrite:      initForceFlag,
			NonInteractive: initYesFlag,
		})
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite an existing config without asking")
	initCmd.Flags().BoolVar(&initGlobalFlag, "global", false, "write the config to the global location")
	initCmd.Flags().BoolVar(&initYesFlag, "yes", false, "skip the prompts and write defaults (honors --path, --logs, --interval)")
	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Global         bool // Write to the global config path instead of ./
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, use defaults plus flag overrides
}

// initCommand creates a new antop configuration file.
func initCommand(opts InitOptions) error {
	configPath := filepath.Join(".", config.ConfigFileName)
	if opts.Global {
		var err error
		configPath, err = config.GlobalConfigPath()
		if err != nil {
			return err
		}
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if opts.NonInteractive {
		if err := applyFlagOverrides(cfg); err != nil {
			return err
		}
	} else {
		nodePath := cfg.Nodes.Path
		logsPath := cfg.Nodes.Logs
		interval := formatIntervalOption(cfg.Poll.Interval)
		watchNodes := cfg.Poll.Watch

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Node directory pattern").
					Description("Glob matching one directory per antnode").
					Placeholder(config.DefaultNodePattern).
					Value(&nodePath).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("node directory pattern is required")
						}
						if _, err := filepath.Match(s, ""); err != nil {
							return fmt.Errorf("not a valid glob pattern")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Log file pattern (optional)").
					Description("Override where node logs live; leave empty for <node>/logs/antnode.log").
					Placeholder("leave empty for the default").
					Value(&logsPath).
					Validate(func(s string) error {
						if s == "" {
							return nil
						}
						if _, err := filepath.Match(s, ""); err != nil {
							return fmt.Errorf("not a valid glob pattern")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Poll interval").
					Description("How often every node gets polled").
					Options(huh.NewOptions(intervalOptions()...)...).
					Value(&interval),
			),
			huh.NewGroup(
				huh.NewConfirm().
					Title("Watch the node directory for changes?").
					Description("Re-discovers nodes as soon as directories appear or vanish").
					Value(&watchNodes),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --yes for defaults")
		}

		cfg.Nodes.Path = nodePath
		cfg.Nodes.Logs = logsPath
		cfg.Poll.Watch = watchNodes

		d, err := time.ParseDuration(interval)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Cannot parse interval '%s'", interval),
				"Choose one of: "+config.IntervalChoices())
		}
		cfg.Poll.Interval = d
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Write(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("✓ Created %s\n\n", configPath)
	fmt.Println("Next steps:")
	fmt.Println("  antop       - Open the dashboard")
	fmt.Println("  antop list  - Poll once and print the fleet")

	return nil
}

// intervalOptions renders the allowed intervals as whole-second strings for
// the select prompt.
func intervalOptions() []string {
	opts := make([]string, len(config.AllowedIntervals))
	for i, d := range config.AllowedIntervals {
		opts[i] = formatIntervalOption(d)
	}
	return opts
}

func formatIntervalOption(d time.Duration) string {
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
