package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/tui"
	"github.com/theirongolddev/runway/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	addInputFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	ctrl, err := newController(cmd, cfg)
	if err != nil {
		return err
	}
	engine, err := newAlertEngine(cfg)
	if err != nil {
		return err
	}

	// The alt screen owns stderr, so diagnostics only go to the log file
	// when --debug is set.
	tuiLog := logging.Nop()
	if flagDebug {
		logFile := cfg.Daemon.LogFile
		if logFile == "" {
			logFile = filepath.Join(config.DataDir(), "runway-tui.log")
		}
		tuiLog = logging.New(logging.Config{
			LogFile: logFile,
			Debug:   true,
			Quiet:   true,
		})
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	if !flagNoColor && os.Getenv("NO_COLOR") == "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	app := tui.NewApp(tui.Options{
		Controller: ctrl,
		Alerts:     engine,
		ParseMode:  cfg.ParseMode(),
		DataDir:    cfg.General.DataDir,
		NeedSetup:  !configExists(),
		Logger:     tuiLog,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
