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

	"github.com/theirongolddev/eventoo/internal/cli"
	"github.com/theirongolddev/eventoo/internal/daemon"
	"github.com/theirongolddev/eventoo/internal/notify"
	"github.com/theirongolddev/eventoo/internal/store"

	"github.com/spf13/cobra"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonSpeed        float64
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonRecent       int
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the simulation daemon with HTTP/SSE endpoints",
	Long: "Run every active plan on a shared simulated clock and serve plans,\n" +
		"reports and a live event stream over HTTP.",
	RunE: runDaemon,
}

var daemonRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recent events published to Redis",
	RunE:  runDaemonRecent,
}

var daemonPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plans the running daemon is driving",
	RunE:  runDaemonPlans,
}

var daemonSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Generate a plan on the running daemon and start simulating it",
	RunE:  runDaemonSubmit,
}

var daemonSubmitFlags struct {
	budget      float64
	inDays      int
	people      int
	destination string
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

func init() {
	defaultPID := filepath.Join(store.DefaultDir(), "eventood.pid")
	defaultLog := filepath.Join(store.DefaultDir(), "eventood.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Real time between ticks (default from config)")
	daemonCmd.PersistentFlags().Float64Var(&flagDaemonSpeed, "speed", 0, "Simulated seconds per real second (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	daemonSubmitCmd.Flags().Float64VarP(&daemonSubmitFlags.budget, "budget", "b", 0, "Total trip budget in euros")
	daemonSubmitCmd.Flags().IntVar(&daemonSubmitFlags.inDays, "in", 60, "Departure in N simulated days")
	daemonSubmitCmd.Flags().IntVarP(&daemonSubmitFlags.people, "people", "p", 0, "Group size (default from config)")
	daemonSubmitCmd.Flags().StringVarP(&daemonSubmitFlags.destination, "destination", "d", "", "Destination (default from config)")
	daemonRecentCmd.Flags().IntVarP(&flagDaemonRecent, "limit", "l", 20, "Number of events to show")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonRecentCmd)
	daemonCmd.AddCommand(daemonPlansCmd)
	daemonCmd.AddCommand(daemonSubmitCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := ensureDaemonNotRunning(flagDaemonPIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", daemonConfig().Addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground() error {
	if err := ensureDaemonNotRunning(flagDaemonPIDFile); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(flagDaemonPIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagDaemonPIDFile) }()

	cfg := daemonConfig()
	state := daemonRuntimeState{
		PID:       pid,
		Addr:      cfg.Addr,
		StartedAt: time.Now(),
		DBPath:    dbPath(),
	}
	_ = writeState(statePath(flagDaemonPIDFile), state)
	defer func() { _ = os.Remove(statePath(flagDaemonPIDFile)) }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	opts := []daemon.Option{daemon.WithStore(st), daemon.WithLogger(appLog)}
	if appConfig.Redis.Enabled {
		pub, err := notify.Dial(ctx, appConfig.Redis.URL, appConfig.Redis.Channel)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		opts = append(opts, daemon.WithSink(pub))
		appLog.WithField("channel", pub.Channel()).Info("publishing events to redis")
	}

	svc := daemon.New(cfg, newSimulator(), opts...)
	restored, err := svc.Restore()
	if err != nil {
		return err
	}

	fmt.Printf("  eventoo daemon listening on http://%s\n", cfg.Addr)
	fmt.Printf("  Ticking every %s at %.0fx (%s simulated per tick)\n", cfg.Interval, cfg.Speed, svc.Step())
	fmt.Printf("  Resumed %d active plans from %s\n", restored, dbPath())
	fmt.Printf("  Stop with: eventoo daemon stop --pid-file %s\n", flagDaemonPIDFile)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// daemonConfig merges daemon flags over the loaded configuration.
func daemonConfig() daemon.Config {
	dc := appConfig.Daemon
	cfg := daemon.Config{
		Addr:         dc.Addr,
		Interval:     time.Duration(dc.IntervalSeconds) * time.Second,
		Speed:        dc.Speed,
		EventsBuffer: dc.EventsBuffer,
		CORSOrigins:  dc.CORSOrigins,
	}
	if flagDaemonAddr != "" {
		cfg.Addr = flagDaemonAddr
	}
	if flagDaemonInterval > 0 {
		cfg.Interval = flagDaemonInterval
	}
	if flagDaemonSpeed > 0 {
		cfg.Speed = flagDaemonSpeed
	}
	if flagDaemonEventsBuffer > 0 {
		cfg.EventsBuffer = flagDaemonEventsBuffer
	}
	return cfg
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pid, err := readPID(flagDaemonPIDFile)
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}

	alive := processAlive(pid)
	if !alive {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonConfig().Addr
	if rs, err := readState(statePath(flagDaemonPIDFile)); err == nil && rs.Addr != "" {
		addr = rs.Addr
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	st, err := daemon.NewClient(addr).Status(ctx)
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}

	fmt.Printf("  Simulated now: %s\n", cli.FormatDate(st.SimulatedNow))
	if st.LastTickAt.IsZero() {
		fmt.Printf("  Last tick: pending\n")
	} else {
		fmt.Printf("  Last tick: %s\n", st.LastTickAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Ticks: %d (every %ds at %.0fx)\n", st.TickCount, st.TickIntervalSec, st.Speed)
	fmt.Printf("  Plans: %d (%d active)\n", st.Plans, st.ActivePlans)
	fmt.Printf("  Events buffered: %d, subscribers: %d\n", st.EventCount, st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagDaemonPIDFile)
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
			_ = os.Remove(flagDaemonPIDFile)
			_ = os.Remove(statePath(flagDaemonPIDFile))
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

// daemonClient targets the running daemon's recorded address, else the configured one.
func daemonClient() *daemon.Client {
	addr := daemonConfig().Addr
	if rs, err := readState(statePath(flagDaemonPIDFile)); err == nil && rs.Addr != "" {
		addr = rs.Addr
	}
	return daemon.NewClient(addr)
}

func runDaemonPlans(cmd *cobra.Command, _ []string) error {
	plans, err := daemonClient().Plans(cmd.Context())
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Println("  The daemon is not driving any plans.")
		return nil
	}

	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		current := p.Current
		if p.Exhausted {
			current = "(exhausted)"
		}
		rows = append(rows, []string{
			p.ID,
			p.Destination,
			string(p.Status),
			cli.FormatEuros(p.CurrentAmount) + " / " + cli.FormatEuros(p.TotalBudget),
			fmt.Sprintf("%d%%", p.Progress),
			current,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Daemon Plans",
		Headers: []string{"ID", "Destination", "Status", "Raised", "Progress", "Current"},
		Rows:    rows,
	}))
	return nil
}

func runDaemonSubmit(cmd *cobra.Command, _ []string) error {
	req := daemon.CreatePlanRequest{
		TotalBudget:     daemonSubmitFlags.budget,
		DepartureInDays: daemonSubmitFlags.inDays,
		NumPeople:       daemonSubmitFlags.people,
		Destination:     daemonSubmitFlags.destination,
	}
	if req.NumPeople == 0 {
		req.NumPeople = appConfig.General.DefaultPeople
	}
	if req.Destination == "" {
		req.Destination = appConfig.General.DefaultDestination
	}

	p, err := daemonClient().CreatePlan(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Printf("  Submitted plan %s (%s, %s over %d weeks)\n",
		p.ID, p.Destination, cli.FormatEuros(p.TotalBudget), p.Weeks())
	return nil
}

func runDaemonRecent(cmd *cobra.Command, _ []string) error {
	if !appConfig.Redis.Enabled {
		return errors.New("redis is not enabled (set [redis] enabled = true or EVENTOO_REDIS_URL)")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	pub, err := notify.Dial(ctx, appConfig.Redis.URL, appConfig.Redis.Channel)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	events, err := pub.Recent(ctx, flagDaemonRecent)
	if err != nil {
		return fmt.Errorf("reading recent events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("  No events published yet.")
		return nil
	}
	for _, ev := range events {
		fmt.Println("  " + cli.RenderEvent(ev))
	}
	return nil
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

func ensureDaemonNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
