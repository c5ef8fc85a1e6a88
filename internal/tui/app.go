// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/alerts"
	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/source"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Tab indexes, in the order of components.Tabs.
const (
	tabOverview = iota
	tabBurn
	tabCashFlow
	tabFunding
	tabSavings
	tabScenario
)

// DataLoadedMsg is sent when the ledger load finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background ledger reload completes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// Options configures a new App.
type Options struct {
	Controller *scenario.Controller
	Alerts     *alerts.Engine
	ParseMode  forecast.ParseMode
	// DataDir holds ledger JSONL files merged onto the sample ledger.
	DataDir string
	Workers int
	// NeedSetup shows the first-run setup form after loading.
	NeedSetup bool
	Logger    *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	// Forecast state. ctrl and draft are shared across model copies.
	ctrl  *scenario.Controller
	draft *scenario.Draft
	mode  forecast.ParseMode
	snap  *scenario.Snapshot

	// Ledger data
	ledger     *model.Ledger
	loadResult *pipeline.LoadResult
	loaded     bool
	loadTime   time.Duration
	refreshing bool

	// Derived on every snapshot or ledger change
	engine     *alerts.Engine
	metrics    model.Metrics
	ruleAlerts []model.Alert

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusErr bool

	// Per-tab state
	scen scenarioState
	flow flowState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	dataDir string
	workers int
	log     *zap.Logger
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5 // minimum content area height
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	a := App{
		ctrl:      opts.Controller,
		draft:     scenario.NewDraft(),
		mode:      opts.ParseMode,
		engine:    opts.Alerts,
		needSetup: opts.NeedSetup,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
		dataDir:   opts.DataDir,
		workers:   opts.Workers,
		log:       log.Named("tui"),
		scen:      newScenarioState(),
	}
	a.sync()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.dataDir, a.workers, a.loadSub),
		a.spinner.Tick,
	)
}

// sync re-reads the controller's snapshot and recomputes everything
// derived from it.
func (a *App) sync() {
	a.snap = a.ctrl.Current()
	if a.ledger != nil {
		a.metrics = pipeline.ComputeMetrics(a.ledger, a.snap)
	}
	a.ruleAlerts = nil
	if a.engine != nil {
		var errs []error
		a.ruleAlerts, errs = a.engine.Evaluate(a.snap)
		for _, err := range errs {
			a.log.Warn("alert rule failed", zap.Error(err))
		}
	}
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) setError(msg string) {
	a.status = msg
	a.statusErr = true
}

// applyPreset switches to a named preset, discarding pending edits.
func (a *App) applyPreset(name string) {
	snap, err := a.ctrl.ApplyPreset(name)
	if err != nil {
		a.setError(err.Error())
		return
	}
	a.draft.Reset()
	a.scen.editing = false
	a.sync()

	p, _ := forecast.PresetByName(name)
	a.setStatus(fmt.Sprintf("%s preset applied, runway %s", p.Title, snap.RunwayText))
	a.log.Debug("preset applied", zap.String("preset", p.Name), zap.String("runway", snap.RunwayText))
}

// submitDraft parses the pending edits and replaces the forecast. On error
// the previous forecast stays and the edits are kept for correction.
func (a *App) submitDraft() {
	snap, err := a.draft.SubmitTo(a.ctrl, a.mode)
	if err != nil {
		a.setError(err.Error())
		a.log.Debug("submit rejected", zap.Error(err))
		return
	}
	a.sync()
	a.setStatus("Forecast updated, runway " + snap.RunwayText)
}

func (a *App) setLedger(res *pipeline.LoadResult, err error, took time.Duration) {
	a.loadTime = took
	if err != nil {
		a.log.Warn("ledger load failed, using sample data", zap.Error(err))
		a.setError("ledger load failed: " + err.Error())
		res = &pipeline.LoadResult{Ledger: source.Sample()}
	}
	a.loadResult = res
	a.ledger = res.Ledger
	a.flow.clamp(len(a.movements()))
	a.sync()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabCashFlow {
				a.flow.move(-1, len(a.movements()))
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabCashFlow {
				a.flow.move(1, len(a.movements()))
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.setLedger(msg.Result, msg.Err, msg.LoadTime)

		if a.needSetup {
			a.setupVals = newSetupValues(a.snap, a.mode, a.dataDir)
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.setLedger(msg.Result, msg.Err, msg.LoadTime)
		if msg.Err == nil {
			a.setStatus(fmt.Sprintf("Reloaded %d ledger files", msg.Result.ParsedFiles))
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.scen.editing {
		var cmd tea.Cmd
		a.scen.input, cmd = a.scen.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Field editing owns the keyboard until enter or esc
	if a.activeTab == tabScenario && a.scen.editing {
		return a.updateScenarioInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch a.activeTab {
	case tabScenario:
		if m, cmd, handled := a.updateScenarioKey(key); handled {
			return m, cmd
		}
	case tabCashFlow:
		if m, handled := a.updateCashFlowKey(key); handled {
			return m, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "p":
		a.applyPreset(forecast.NextPreset(a.snap.Preset).Name)
	case "b":
		a.applyPreset("baseline")
	case "o":
		a.applyPreset("optimistic")
	case "c":
		a.applyPreset("conservative")
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.workers)
		}
	case "tab", "right", "l":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "shift+tab", "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		if err := a.saveSetupConfig(); err != nil {
			a.setError("could not save config: " + err.Error())
			return a, nil
		}
		a.setStatus("Setup saved to " + config.Path())
		if dir := strings.TrimSpace(a.setupVals.DataDir); dir != "" && dir != a.dataDir {
			a.dataDir = dir
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.workers)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ runway"))
	b.WriteString(subtitleStyle.Render(" · Cash Flow Forecast"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing ledger files\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading ledger..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1-6", "Jump to tab"},
			{"tab ⇧tab", "Next / Previous tab"},
			{"j k", "Move selection"},
		}},
		{"Forecast", []struct{ key, desc string }{
			{"p", "Cycle presets"},
			{"b o c", "Baseline / Optimistic / Conservative"},
			{"Enter", "Edit field / Confirm"},
			{"u", "Update forecast from edits"},
			{"Esc", "Cancel edit / Discard edits"},
		}},
		{"Other", []struct{ key, desc string }{
			{"f", "Cycle cash flow filter"},
			{"r", "Reload ledger files"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar plus the active scenario pill
	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pillAccent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	presetTitle := "Custom"
	if p, ok := forecast.PresetByName(a.snap.Preset); ok && a.snap.Preset != "" {
		presetTitle = p.Title
	}
	pill := pillStyle.Render(" ") +
		pillAccent.Render(presetTitle) +
		pillStyle.Render(" │ ") +
		pillAccent.Render(fmt.Sprintf("%d months", a.snap.Input.HorizonMonths)) +
		pillStyle.Render(" │ "+a.mode.String()+" parsing ")
	if a.loadResult != nil && a.loadResult.TotalFiles > 0 {
		pill += pillStyle.Render(fmt.Sprintf("│ %d ledger files, %d bad lines ",
			a.loadResult.ParsedFiles, a.loadResult.ParseErrors))
	}

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(pill)

	// 2. Status bar
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Preset:    a.snap.Preset,
		ParseMode: a.mode.String(),
		Runway:    a.snap.RunwayText,
		Message:   a.status,
		IsError:   a.statusErr,
		Dirty:     a.draft.Dirty(),
		Loading:   a.refreshing,
	})

	// 3. Content zone height
	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	// 4. Tab content
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabBurn:
		content = a.renderBurnTab(cw)
	case tabCashFlow:
		content = a.renderCashFlowTab(cw, contentH)
	case tabFunding:
		content = a.renderFundingTab(cw)
	case tabSavings:
		content = a.renderSavingsTab(cw)
	case tabScenario:
		content = a.renderScenarioTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines, fill with background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd starts the ledger load in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(dir string, workers int, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled. A skipped
			// update is covered by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res, err := pipeline.Load(context.Background(), dir, workers, progressFn)
			sub <- DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads the ledger in the background without progress UI.
func refreshDataCmd(dir string, workers int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := pipeline.Load(context.Background(), dir, workers, nil)
		return RefreshDataMsg{Result: res, Err: err, LoadTime: time.Since(start)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
