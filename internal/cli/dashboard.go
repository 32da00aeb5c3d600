package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/skyrmion/antop/internal/config"
	"github.com/skyrmion/antop/internal/dashboard"
	"github.com/skyrmion/antop/internal/errors"
	"github.com/skyrmion/antop/internal/logger"
	"github.com/skyrmion/antop/internal/watch"
)

// dashboardCommand starts the interactive dashboard.
func dashboardCommand(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrConfig,
			"Standard output is not a terminal",
			"The dashboard needs an interactive terminal; try 'antop list' for one-shot output")
	}

	log := logger.NewEnvLogger("antop")

	var w *watch.Watcher
	if cfg.Poll.Watch {
		var err error
		w, err = watch.New(cfg.NodeGlob(), log)
		if err != nil {
			// Watching is best effort; the periodic rescan still runs.
			log.Warn("filesystem watch unavailable: %v", err)
			w = nil
		}
	}

	model := dashboard.New(cfg, w, log)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
