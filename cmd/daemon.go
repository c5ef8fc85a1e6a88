package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/runway/internal/client"
	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/daemon"
	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/scenario"
	"github.com/theirongolddev/runway/internal/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path,omitempty"`
}

var (
	flagDaemonAddr         string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonNoStore      bool
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the forecast service with HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

var daemonPresetCmd = &cobra.Command{
	Use:   "apply-preset NAME",
	Short: "Apply a preset on the running daemon",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaemonApplyPreset,
}

var daemonSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit input fields to the running daemon",
	Example: `  runway daemon submit --cash 750000 --expense-growth 3`,
	RunE: runDaemonSubmit,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", "", "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", "", "Log file path")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonNoStore, "no-store", false, "Do not record forecast runs")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")
	addInputFlags(daemonCmd)
	addInputFlags(daemonSubmitCmd)

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd, daemonPresetCmd, daemonSubmitCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonPIDFile() pidFile {
	if flagDaemonPIDFile != "" {
		return pidFile(flagDaemonPIDFile)
	}
	return pidFile(filepath.Join(config.DataDir(), "runwayd.pid"))
}

func daemonLogFile(cfg config.Config) string {
	switch {
	case flagDaemonLogFile != "":
		return flagDaemonLogFile
	case cfg.Daemon.LogFile != "":
		return cfg.Daemon.LogFile
	}
	return filepath.Join(config.DataDir(), "runwayd.log")
}

func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagDaemonDetach {
		return startDaemonDetached(cfg)
	}
	return runDaemonForeground(cmd, cfg)
}

func startDaemonDetached(cfg config.Config) error {
	pf := daemonPIDFile()
	if err := pf.ensureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(string(pf)), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	// The child writes its own rotated log, so its stdio is discarded.
	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pf)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr(cfg))
	fmt.Printf("  Log: %s\n", daemonLogFile(cfg))
	return nil
}

func runDaemonForeground(cmd *cobra.Command, cfg config.Config) error {
	pf := daemonPIDFile()
	if err := pf.ensureFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(string(pf)), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	dlog := logging.New(logging.Config{
		LogFile: daemonLogFile(cfg),
		Debug:   flagDebug,
		Quiet:   flagDaemonChild,
	})
	defer func() { _ = dlog.Sync() }()

	ctrl, err := newController(cmd, cfg)
	if err != nil {
		return err
	}
	engine, err := newAlertEngine(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps := daemon.Deps{
		Controller: ctrl,
		Alerts:     engine,
		Logger:     dlog,
	}

	dbPath := ""
	if !flagDaemonNoStore {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		deps.Store = st
		dbPath = config.GetDBPath(cfg)
	}

	rec, err := telemetry.NewRecorder(ctx, telemetry.MetricsConfig{
		Endpoint: config.GetOTLPEndpoint(cfg),
		Insecure: cfg.Telemetry.OTLPInsecure,
		Version:  version,
	})
	if err != nil {
		dlog.Warn("metrics export disabled", zap.Error(err))
		rec = telemetry.NoopRecorder{}
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = rec.Close(shutdownCtx)
	}()
	deps.Metrics = rec

	reporter, err := telemetry.InitSentry(config.GetSentryDSN(cfg), cfg.Telemetry.Environment, "runway@"+version)
	if err != nil {
		dlog.Warn("error reporting disabled", zap.Error(err))
		reporter = &telemetry.Reporter{}
	}
	defer reporter.Flush(2 * time.Second)
	deps.Sentry = reporter

	pid := os.Getpid()
	if err := pf.write(pid); err != nil {
		return err
	}
	defer pf.remove()

	addr := daemonAddr(cfg)
	state := daemonRuntimeState{
		PID:       pid,
		Addr:      addr,
		StartedAt: time.Now(),
		DBPath:    dbPath,
	}
	_ = pf.writeState(state)

	buffer := cfg.Daemon.EventsBuffer
	if flagDaemonEventsBuffer > 0 {
		buffer = flagDaemonEventsBuffer
	}
	svc := daemon.New(daemon.Config{
		Addr:         addr,
		EventsBuffer: buffer,
		ParseMode:    cfg.ParseMode(),
	}, deps)

	snap := ctrl.Current()
	fmt.Printf("  runway daemon listening on http://%s\n", addr)
	fmt.Printf("  Forecast: %s over %d months (%s parsing)\n", snap.RunwayText, snap.Input.HorizonMonths, cfg.ParseMode())
	fmt.Printf("  Stop with: runway daemon stop --pid-file %s\n", pf)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		reporter.CaptureError(err, map[string]string{"op": "serve"})
		return err
	}
	return nil
}

// daemonClient connects to the daemon named by the state file, --addr or
// config, in that order.
func daemonClient() (*client.Client, error) {
	addr := flagDaemonAddr
	if st, err := daemonPIDFile().readState(); err == nil && st.Addr != "" && addr == "" {
		addr = st.Addr
	}
	if addr == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		addr = cfg.Daemon.Addr
	}
	return client.New(addr, client.WithLogger(log), client.WithRetry(3, 200*time.Millisecond))
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pid, err := daemonPIDFile().read()
	switch {
	case err != nil:
		fmt.Printf("  Daemon: no pid file\n")
	case !processAlive(pid):
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
	default:
		fmt.Printf("  Daemon PID: %d\n", pid)
	}

	c, err := daemonClient()
	if err != nil {
		return err
	}
	fmt.Printf("  Address: %s\n", c.BaseURL())

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	st, err := c.Status(ctx)
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}

	fmt.Printf("  Started: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	fmt.Printf("  Last compute: %s\n", st.LastComputeAt.Local().Format(time.RFC3339))
	fmt.Printf("  Computes: %d (%d rejected)\n", st.ComputeCount, st.InvalidCount)
	fmt.Printf("  Parse mode: %s\n", st.ParseMode)
	if st.Summary.Preset != "" {
		fmt.Printf("  Preset: %s\n", st.Summary.Preset)
	}
	fmt.Printf("  Runway: %s\n", st.Summary.Runway)
	fmt.Printf("  Ending cash: %d\n", st.Summary.EndingCash)
	fmt.Printf("  Alerts: %d\n", st.AlertCount)
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := daemonPIDFile()
	pid, err := pf.read()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			pf.remove()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func runDaemonApplyPreset(cmd *cobra.Command, args []string) error {
	c, err := daemonClient()
	if err != nil {
		return err
	}
	snap, err := c.ApplyPreset(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("unknown preset %q", args[0])
		}
		return err
	}
	printRemoteSnapshot(snap)
	return nil
}

func runDaemonSubmit(cmd *cobra.Command, _ []string) error {
	fields := inputFlagValues(cmd)
	if len(fields) == 0 {
		return errors.New("nothing to submit: set at least one of --cash, --revenue, --expenses, --revenue-growth, --expense-growth")
	}
	c, err := daemonClient()
	if err != nil {
		return err
	}
	snap, err := c.SubmitFields(cmd.Context(), fields)
	if err != nil {
		if errors.Is(err, client.ErrBadRequest) {
			return fmt.Errorf("daemon kept the previous forecast: %w", err)
		}
		return err
	}
	printRemoteSnapshot(snap)
	return nil
}

func printRemoteSnapshot(snap *scenario.Snapshot) {
	preset := snap.Preset
	if preset == "" {
		preset = "custom"
	}
	fmt.Printf("  Forecast v%d (%s): runway %s, ending cash %d\n",
		snap.Version, preset, snap.RunwayText, snap.Summary.EndingCash)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// pidFile is the daemon's pid file. Runtime state sits next to it as
// "<pid file>.json".
type pidFile string

func (p pidFile) statePath() string {
	return string(p) + ".json"
}

// ensureFree fails when a live daemon owns the pid file and clears a stale
// one.
func (p pidFile) ensureFree() error {
	pid, err := p.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.remove()
	return nil
}

func (p pidFile) write(pid int) error {
	return os.WriteFile(string(p), []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p)
	}
	return pid, nil
}

func (p pidFile) remove() {
	_ = os.Remove(string(p))
	_ = os.Remove(p.statePath())
}

func (p pidFile) writeState(st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
}

func (p pidFile) readState() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	data, err := os.ReadFile(p.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
