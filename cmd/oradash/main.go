// Package main provides the CLI entrypoint for oradash.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/oradash/internal/config"
	"github.com/verte-zerg/oradash/internal/dashui"
	"github.com/verte-zerg/oradash/internal/logging"
	"github.com/verte-zerg/oradash/internal/model"
	"github.com/verte-zerg/oradash/internal/session"
	"github.com/verte-zerg/oradash/internal/stats"
	"github.com/verte-zerg/oradash/internal/store"
	"github.com/verte-zerg/oradash/internal/views"
)

const (
	defaultRotate       = 30.0
	defaultTick         = 0.3
	defaultTop          = 10
	defaultLogLevel     = "info"
	defaultHistoryLimit = 20
	defaultReportWidth  = 80
)

const (
	minRotate = 10.0
	maxRotate = 300.0
	minTick   = 0.1
	maxTick   = 1.0
	minTop    = 1
	maxTop    = 50
)

var (
	dashRotate   float64
	dashTick     float64
	dashTop      int
	dashLogLevel string

	historyLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "oradash [logfile]",
		Short:         "Rotating dashboard for Oracle error logs",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.Float64Var(&dashRotate, "rotate", defaultRotate, "seconds each view stays on screen (10-300)")
	flags.Float64Var(&dashTick, "tick", defaultTick, "seconds between refreshes (0.1-1.0)")
	flags.IntVar(&dashTop, "top", defaultTop, "rows in the top errors tables (1-50)")
	flags.StringVar(&dashLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveConfig merges the config file into flags that were not set explicitly.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "rotate", &dashRotate, fileCfg.Dashboard.RotateSeconds)
	applyFloatConfig(cmd, "tick", &dashTick, fileCfg.Dashboard.TickSeconds)
	applyIntConfig(cmd, "top", &dashTop, fileCfg.Dashboard.TopK)
	applyStringConfig(cmd, "log-level", &dashLogLevel, fileCfg.Dashboard.LogLevel)

	cfg := model.Config{
		RotationPeriod: secondsToDuration(dashRotate),
		TickInterval:   secondsToDuration(dashTick),
		TopK:           dashTop,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	if err := views.Validate(); err != nil {
		return model.Config{}, fmt.Errorf("invalid view catalog: %w", err)
	}
	return cfg, nil
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	closeLog, err := logging.InitFile(config.DefaultLogPath(), logging.ParseLevel(dashLogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		last, ok, err := st.LastSuccessfulPath(context.Background())
		if err != nil {
			slog.Warn("failed to read load history", "err", err)
		} else if ok {
			path = last
			slog.Info("reopening last loaded file", "path", path)
		}
	}

	sess := session.New(cfg, session.WithLoadHook(recordLoad(st)))
	dash := dashui.NewModel(sess, path)
	program := tea.NewProgram(dash, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// recordLoad returns a load hook that writes every parse attempt to history.
func recordLoad(st *store.Store) func(session.LoadResult) {
	return func(res session.LoadResult) {
		rec := model.LoadRecord{
			Path:         res.Source,
			LoadedAt:     time.Now(),
			TotalLines:   res.Stats.TotalLines,
			Events:       res.Stats.Events,
			SkippedLines: res.Stats.SkippedLines,
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		if _, err := st.InsertLoad(context.Background(), rec); err != nil {
			slog.Warn("failed to record load", "path", res.Source, "err", err)
		}
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <logfile>",
		Short: "Print every dashboard view as text",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logging.Init(os.Stderr, logging.ParseLevel(dashLogLevel))

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	sess := session.New(cfg)
	sess.SetUpload(session.Upload{Name: path, Content: string(data)})
	return writeReport(cmd.OutOrStdout(), sess, time.Now(), reportWidth())
}

// writeReport renders all views in catalog order. Views without data print
// their notice; a load failure aborts the report.
func writeReport(w io.Writer, sess *session.Context, now time.Time, width int) error {
	opts := stats.ChartOptions{
		Width:  width,
		Height: 10,
	}
	for i := 0; i < views.Len(); i++ {
		in := sess.Render(i, now)
		if in.Heading == "" && in.Err != nil {
			return errors.New(in.Notice)
		}
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if !in.HasData() {
			if _, err := fmt.Fprintf(w, "%s\n%s\n", in.Heading, in.Notice); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		var err error
		if in.View.Kind == model.KindTable {
			err = stats.RenderTopErrors(w, in.Heading, in.Rows)
		} else {
			err = stats.RenderChart(w, in.Heading, in.View, in.Buckets, opts)
		}
		if err != nil {
			return fmt.Errorf("failed to render view %d: %w", i+1, err)
		}
	}
	return nil
}

func reportWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			return width
		}
	}
	return defaultReportWidth
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently loaded log files",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "last", defaultHistoryLimit, "limit to last N loads (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	loads, err := st.ListLoads(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list loads: %w", err)
	}
	return stats.RenderHistory(cmd.OutOrStdout(), loads)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# oradash configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# rotate = %.1f           # Seconds each view stays on screen (%.0f-%.0f)
# tick = %.1f              # Seconds between refreshes (%.1f-%.1f)
# top = %d                 # Rows in the top errors tables (%d-%d)
# log-level = %q        # debug, info, warn or error
`,
		defaultRotate, minRotate, maxRotate,
		defaultTick, minTick, maxTick,
		defaultTop, minTop, maxTop,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.RotationPeriod < secondsToDuration(minRotate) || cfg.RotationPeriod > secondsToDuration(maxRotate) {
		return fmt.Errorf("--rotate must be between %.0f and %.0f seconds", minRotate, maxRotate)
	}
	if cfg.TickInterval < secondsToDuration(minTick) || cfg.TickInterval > secondsToDuration(maxTick) {
		return fmt.Errorf("--tick must be between %.1f and %.1f seconds", minTick, maxTick)
	}
	if cfg.TopK < minTop || cfg.TopK > maxTop {
		return fmt.Errorf("--top must be between %d and %d", minTop, maxTop)
	}
	return nil
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
