package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/dashboard"
	"github.com/skyrmion/antop/internal/doctor"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, discovery, and endpoint issues",
	Long: `Run diagnostic checks on the antop environment: config file,
node directory discovery, log scanning, and metrics endpoint
reachability.

Examples:
  antop doctor
  antop doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(out io.Writer) error {
	// Load whatever config would apply. Load errors are ignored here, the
	// CONFIG checks report them with suggestions.
	cfg := config.DefaultConfig()
	if path, err := config.Find(configFlag); err == nil && path != "" {
		if loaded, loadErr := config.Load(path); loadErr == nil {
			cfg = loaded
		}
	}
	_ = applyFlagOverrides(cfg)

	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(configFlag)...)
	checks = append(checks, doctor.NewNodeChecks(cfg)...)
	checks = append(checks, doctor.NewEndpointChecks(cfg)...)

	results := doctor.RunAll(checks)

	if doctorJSON {
		return outputDoctorJSON(out, checks, results)
	}
	return outputDoctorText(out, checks, results)
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := make(map[string][]doctor.CheckResult)
	var categoryOrder []string

	for i, check := range checks {
		cat := check.Category()
		if _, exists := grouped[cat]; !exists {
			categoryOrder = append(categoryOrder, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(categoryOrder)),
	}
	for _, cat := range categoryOrder {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(out io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	successStyle := lipgloss.NewStyle().Foreground(dashboard.ColorHealthy)
	warnStyle := lipgloss.NewStyle().Foreground(dashboard.ColorWarning)
	errorStyle := lipgloss.NewStyle().Foreground(dashboard.ColorCritical)
	mutedStyle := lipgloss.NewStyle().Foreground(dashboard.ColorTextMuted)
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("antop diagnostics"))
	fmt.Fprintln(out)

	grouped := make(map[string][]int)
	for i, check := range checks {
		grouped[check.Category()] = append(grouped[check.Category()], i)
	}

	for _, category := range []string{"CONFIG", "NODES", "METRICS"} {
		indices, ok := grouped[category]
		if !ok || len(indices) == 0 {
			continue
		}

		fmt.Fprintln(out, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(out, results[idx], successStyle, warnStyle, errorStyle, mutedStyle)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("✓"), doctor.Summary(results))
	} else {
		fmt.Fprintf(out, "%s %s\n", errorStyle.Render("✗"), doctor.Summary(results))
	}
	fmt.Fprintln(out)

	return nil
}

// renderCheckResult renders a single check result.
func renderCheckResult(out io.Writer, result doctor.CheckResult, successStyle, warnStyle, errorStyle, mutedStyle lipgloss.Style) {
	var symbol string
	switch result.Status {
	case doctor.StatusPass:
		symbol = successStyle.Render("✓")
	case doctor.StatusWarn:
		symbol = warnStyle.Render("!")
	case doctor.StatusFail:
		symbol = errorStyle.Render("✗")
	}

	fmt.Fprintf(out, "  %s %s\n", symbol, result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", mutedStyle.Render(line))
		}
	}
}
