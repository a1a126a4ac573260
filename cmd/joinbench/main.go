// Command joinbench measures N-thread join-barrier latency and
// efficiency across seven waiting disciplines, driving a CPU-bound
// prime-search workload per round.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chalkan3-sloth/joinbench/internal/barrier"
	"github.com/chalkan3-sloth/joinbench/internal/common"
	"github.com/chalkan3-sloth/joinbench/internal/config"
	"github.com/chalkan3-sloth/joinbench/internal/coordinator"
	"github.com/chalkan3-sloth/joinbench/internal/history"
	"github.com/chalkan3-sloth/joinbench/internal/telemetry"
	"github.com/chalkan3-sloth/joinbench/internal/topology"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	flagInputCount      int
	flagComplexity      int
	flagThreadCount     int
	flagJoinType        int
	flagMwaitxCycles    uint64
	flagConfigPath      string
	flagMetricsAddr     string
	flagHistoryDB       string
	flagDebug           bool
	flagInputCountSet   bool
	flagComplexitySet   bool
	flagThreadCountSet  bool
	flagMwaitxCyclesSet bool

	version = "dev"
)

func main() {
	common.SetupLogger(containsFlag(os.Args[1:], "--debug"))

	if containsHelpAlias(os.Args[1:]) {
		printUsage()
		os.Exit(1)
	}

	rootCmd := newRootCmd()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		printUsage()
		os.Exit(1)
	})

	if err := rootCmd.Execute(); err != nil {
		slog.Error("joinbench failed", "error", err)
		printUsage()
		os.Exit(1)
	}
}

// containsHelpAlias recognizes the original tool's non-standard help
// spellings (-?, -h, -help), none of which pflag parses as a single
// token the way cobra's own --help does.
func containsHelpAlias(args []string) bool {
	for _, a := range args {
		switch a {
		case "-?", "-h", "-help", "--help":
			return true
		}
	}
	return false
}

func containsFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: joinbench --input_count <N> --complexity <C> [options]")
	fmt.Fprintln(os.Stderr, "  <N>: number of prime numbers per thread.")
	fmt.Fprintln(os.Stderr, "  <C>: complexity, 0..31 (taken modulo 32).")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  --thread_count <N>        number of threads (default: all logical processors)")
	fmt.Fprintln(os.Stderr, "  --join_type <1..7>        wait discipline (default 1)")
	fmt.Fprintln(os.Stderr, "    1 default, 2 pause soft-only, 3 mwaitx loop, 4 mwaitx loop soft-only,")
	fmt.Fprintln(os.Stderr, "    5 mwaitx no-loop, 6 mwaitx no-loop soft-only, 7 hard-wait only")
	fmt.Fprintln(os.Stderr, "  --mwaitx_cycle_count <N>  required when join_type is 3..6")
	fmt.Fprintln(os.Stderr, "  --config <path>           optional YAML file of defaults")
	fmt.Fprintln(os.Stderr, "  --metrics-addr <host:port> optional live Prometheus /metrics server")
	fmt.Fprintln(os.Stderr, "  --history-db <path>       where run summaries are recorded")
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "joinbench",
		Short:         "N-thread join-barrier microbenchmark harness",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBenchmark,
	}

	flags := cmd.Flags()
	flags.IntVar(&flagInputCount, "input_count", 0, "number of prime numbers per thread (required)")
	flags.IntVar(&flagComplexity, "complexity", 0, "complexity, 0..31 (required)")
	flags.IntVar(&flagThreadCount, "thread_count", 0, "number of threads (default: all logical processors)")
	flags.IntVar(&flagJoinType, "join_type", 1, "wait discipline, 1..7")
	flags.Uint64Var(&flagMwaitxCycles, "mwaitx_cycle_count", 0, "mwaitx cycle budget (required for join_type 3..6)")
	flags.StringVar(&flagConfigPath, "config", "", "optional YAML file of defaults")
	flags.StringVar(&flagMetricsAddr, "metrics-addr", "", "optional live Prometheus /metrics server address")
	flags.StringVar(&flagHistoryDB, "history-db", "joinbench_history.db", "run-history SQLite database path")
	flags.BoolVar(&flagDebug, "debug", false, "enable debug-level logging")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		flagInputCountSet = flags.Changed("input_count")
		flagComplexitySet = flags.Changed("complexity")
		flagThreadCountSet = flags.Changed("thread_count")
		flagMwaitxCyclesSet = flags.Changed("mwaitx_cycle_count")
	}

	cmd.AddCommand(newHistoryCmd())
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List past benchmark runs recorded in the history database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(flagHistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				pterm.Info.Printfln("%s  %s  inputs=%d complexity=%d threads=%d join_type=%d iterations=%d hard=%d soft=%d ticks=%d ms=%d",
					r.ID, r.RanAt.Format(time.RFC3339), r.InputCount, r.Complexity, r.ThreadCount, r.JoinType,
					r.TotalIterations, r.TotalHardWaits, r.TotalSoftWaits, r.ElapsedTicks, r.ElapsedMS)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	if !flagInputCountSet || !flagComplexitySet {
		return fmt.Errorf("missing mandatory argument --input_count and/or --complexity")
	}

	// Unset flags go in as zero so a --config file can fill them.
	joinType := barrier.JoinType(flagJoinType)
	if !cmd.Flags().Changed("join_type") {
		joinType = 0
	}
	historyDB := flagHistoryDB
	if !cmd.Flags().Changed("history-db") {
		historyDB = ""
	}
	cfg := config.Config{
		InputCount:      flagInputCount,
		Complexity:      config.NormalizeComplexity(flagComplexity),
		ThreadCount:     flagThreadCount,
		JoinType:        joinType,
		MwaitxCycles:    flagMwaitxCycles,
		MetricsAddr:     flagMetricsAddr,
		HistoryDB:       historyDB,
		ThreadCountSet:  flagThreadCountSet,
		MwaitxCyclesSet: flagMwaitxCyclesSet,
	}

	cfg, err := config.Overlay(cfg, flagConfigPath)
	if err != nil {
		return err
	}
	if cfg.JoinType == 0 {
		cfg.JoinType = barrier.JoinDefault
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = flagHistoryDB
	}

	if !cfg.ThreadCountSet || cfg.ThreadCount == 0 {
		info, err := topology.Detect()
		if err != nil {
			return err
		}
		cfg.ThreadCount = info.LogicalProcessors
	}

	if flagMwaitxCyclesSet && !cfg.JoinType.RequiresMwaitxCycles() {
		slog.Warn("--mwaitx_cycle_count specified but ignored for this join_type", "join_type", int(cfg.JoinType))
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("running", "input_count", cfg.InputCount, "complexity", cfg.Complexity,
		"thread_count", cfg.ThreadCount, "join_type", cfg.JoinType.String())

	var srv *telemetry.Server
	if cfg.MetricsAddr != "" {
		srv = telemetry.NewServer(cfg.MetricsAddr)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("starting telemetry server: %w", err)
		}
	}

	res, err := coordinator.Run(cfg)
	if err != nil {
		return err
	}

	if srv != nil {
		m := srv.Metrics()
		for _, o := range res.Outputs {
			m.Observe(o.TotalIterations, o.HardWaitCount, o.SoftWaitCount, o.HardWaitWakeupTicks, o.SoftWaitWakeupTicks)
		}
		m.ObserveRounds(cfg.InputCount)
		m.RefreshUptime()
	}

	agg := telemetry.Report(os.Stdout, res.Outputs, cfg.InputCount, cfg.ThreadCount, cfg.Complexity,
		res.ElapsedTicks, res.ElapsedWall.Milliseconds())

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		slog.Warn("could not open history database", "error", err)
	} else {
		defer store.Close()
		if _, err := store.Record(history.Run{
			InputCount:      cfg.InputCount,
			Complexity:      cfg.Complexity,
			ThreadCount:     cfg.ThreadCount,
			JoinType:        int(cfg.JoinType),
			TotalIterations: agg.TotalIterations,
			TotalHardWaits:  agg.TotalHardWaits,
			TotalSoftWaits:  agg.TotalSoftWaits,
			ElapsedTicks:    res.ElapsedTicks,
			ElapsedMS:       res.ElapsedWall.Milliseconds(),
		}); err != nil {
			slog.Warn("could not record run history", "error", err)
		}
	}

	return nil
}
