package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Iron-Ham/parawalk/internal/config"
	"github.com/Iron-Ham/parawalk/internal/errors"
	"github.com/Iron-Ham/parawalk/internal/graph"
	"github.com/Iron-Ham/parawalk/internal/logging"
	"github.com/Iron-Ham/parawalk/internal/pool"
	"github.com/Iron-Ham/parawalk/internal/walker"
	"github.com/google/uuid"
	"github.com/jacobsa/syncutil"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// Report writes err to w. Failures the user can act on are shown as is;
// anything else, such as a malformed command line, also points at --help.
func Report(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if !errors.IsUserFacing(err) {
		fmt.Fprintln(w, "Run 'parawalk --help' for usage.")
	}
}

// NewRootCommand builds the parawalk command over its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "parawalk <graph-file>",
		Short: "Sum the node values reachable in a graph using a worker pool",
		Long: `Parawalk loads a graph and sums the values of every node reachable from
the start nodes. Each node is expanded as a task on a fixed pool of workers.

The graph file is read as YAML when it ends in .yaml, .yml or .json, and
otherwise as text: "N M", then N node values, then M undirected edges "a b".

Only the total is printed, with no trailing newline.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd, v, args[0])
		},
	}

	flags := rootCmd.Flags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/parawalk/config.yaml)")
	flags.IntP("workers", "w", config.Default().Pool.Workers, "number of worker goroutines")
	flags.IntSliceP("start", "s", config.Default().Walk.Start, "start node indices")
	flags.String("log-level", config.Default().Logging.Level, "log level (debug, info, warn, error)")
	flags.String("log-dir", "", "write logs to <dir>/debug.log instead of stderr")

	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("pool.workers", flags.Lookup("workers"))
	_ = v.BindPFlag("walk.start", flags.Lookup("start"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.dir", flags.Lookup("log-dir"))

	return rootCmd
}

func initConfig(v *viper.Viper) error {
	// Set defaults first so they're available even without a config file
	config.ApplyDefaults(v)

	cfgFile := v.GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("PARAWALK")
	// e.g., PARAWALK_POOL_WORKERS for pool.workers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Only a missing default config file is ignored; a file named with
	// --config must be readable and well formed.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.NewValidationError("cannot read config file").
			WithField("config").
			WithValue(v.ConfigFileUsed()).
			WithCause(err)
	}
	return nil
}

func runWalk(cmd *cobra.Command, v *viper.Viper, path string) error {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return err
	}
	if cfg.Debug.CheckInvariants {
		syncutil.EnableInvariantChecking()
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return errors.NewValidationError("cannot open log").
			WithField("logging.dir").
			WithValue(cfg.Logging.Dir).
			WithCause(err)
	}
	defer logger.Close()
	runLogger := logger.WithRun(uuid.NewString())

	g, err := graph.Load(path)
	if err != nil {
		return err
	}
	runLogger.Info("graph loaded", "path", path, "nodes", g.Len())

	p, err := pool.New(cfg.Pool.Workers, pool.WithLogger(runLogger))
	if err != nil {
		return err
	}
	total, err := walker.New(g, p, walker.WithLogger(runLogger)).Run(cmd.Context(), cfg.Walk.Start...)
	if err != nil {
		return err
	}

	logMetrics(runLogger, p.Registry())
	fmt.Fprint(cmd.OutOrStdout(), total)
	return nil
}

// newLogger writes to <dir>/debug.log when a directory is configured and to
// stderr otherwise.
func newLogger(stderr io.Writer, cfg config.LoggingConfig) (*logging.Logger, error) {
	if cfg.Dir == "" {
		return logging.NewWriterLogger(stderr, cfg.Level), nil
	}
	return logging.NewLogger(cfg.Dir, cfg.Level)
}

// logMetrics writes every gathered sample at debug level.
func logMetrics(logger *logging.Logger, g prometheus.Gatherer) {
	if !logger.Enabled(logging.LevelDebug) {
		return
	}

	families, err := g.Gather()
	if err != nil {
		logger.Warn("failed to gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			logger.Debug("metric", "name", mf.GetName(), "value", sampleValue(mf.GetType(), m))
		}
	}
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return m.GetUntyped().GetValue()
	default:
		return math.NaN()
	}
}
