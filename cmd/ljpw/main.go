// Command ljpw runs the four-axis semantic field engine: score text or
// proxy indicators onto the Love/Justice/Power/Wisdom coordinate,
// simulate the coupled dynamics, or serve both over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/ljpw-field/internal/api"
	"github.com/talgya/ljpw-field/internal/config"
	"github.com/talgya/ljpw-field/internal/coord"
	"github.com/talgya/ljpw-field/internal/dynamics"
	"github.com/talgya/ljpw-field/internal/extract"
	"github.com/talgya/ljpw-field/internal/metrics"
	"github.com/talgya/ljpw-field/internal/persistence"
)

var (
	profilePath string
	dbPath      string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ljpw",
		Short: "Four-axis semantic field engine",
		Long: `ljpw scores inputs onto a four-axis coordinate (Love, Justice,
Power, Wisdom), derives harmony / voltage / consciousness metrics, and
integrates the coupled field dynamics forward in time.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "JSON profile file (default: built-in v1)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (empty = no persistence)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(constantsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func loadProfile() (*config.Profile, error) {
	if profilePath == "" {
		return config.V1(), nil
	}
	return config.Load(profilePath)
}

func openDB() (*persistence.DB, error) {
	if dbPath == "" {
		return nil, nil
	}
	return persistence.Open(dbPath)
}

func analyzeCmd() *cobra.Command {
	var (
		text      string
		file      string
		proxyJSON string
		quantum   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score text or proxy indicators onto the four axes",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}

			mode := coord.ModeClassical
			if quantum {
				mode = coord.ModeQuantum
			}

			var c coord.Coordinate
			switch {
			case text != "":
				c = extract.FromText(p, text, mode)
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				c = extract.FromText(p, string(data), mode)
			case proxyJSON != "":
				var raw map[string][]extract.Observation
				if err := json.Unmarshal([]byte(proxyJSON), &raw); err != nil {
					return fmt.Errorf("parse proxies: %w", err)
				}
				set := make(extract.ProxySet, len(raw))
				for name, obs := range raw {
					a, err := coord.ParseAxis(name)
					if err != nil {
						return err
					}
					set[a] = obs
				}
				c, err = extract.FromProxies(set)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --text, --file, or --proxies is required")
			}

			sum, err := metrics.Summarize(c)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"coordinate": c, "metrics": sum})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "text to score")
	cmd.Flags().StringVar(&file, "file", "", "file whose contents to score")
	cmd.Flags().StringVar(&proxyJSON, "proxies", "", `proxy observations as JSON, e.g. {"love":[{"value":0.8,"weight":1}]}`)
	cmd.Flags().BoolVar(&quantum, "quantum", false, "let the Love axis extend to sqrt(2)")
	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		initialStr string
		duration   float64
		step       float64
		unbounded  bool
		quantum    bool
		noise      float64
		noiseSeed  int64
		samples    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Integrate the coupled field dynamics from an initial state",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			initial, err := parseCoordinate(initialStr)
			if err != nil {
				return err
			}

			mode := coord.ModeClassical
			if quantum {
				mode = coord.ModeQuantum
			}
			opts := dynamics.Options{
				Duration:       duration,
				Step:           step,
				Bounded:        !unbounded,
				Mode:           mode,
				NoiseAmplitude: noise,
				NoiseSeed:      noiseSeed,
			}

			tr, err := dynamics.Simulate(context.Background(), p, initial, opts)
			if err != nil {
				return err
			}

			slog.Info("simulation complete",
				"run_id", tr.RunID,
				"samples", len(tr.Samples),
				"path_length", fmt.Sprintf("%.4f", tr.PathLength),
				"struggle_ratio", fmt.Sprintf("%.4f", tr.StruggleRatio),
				"overflowed", tr.Overflowed,
			)

			if db, err := openDB(); err != nil {
				return err
			} else if db != nil {
				defer db.Close()
				if err := db.SaveRun(tr); err != nil {
					return err
				}
			}

			out := map[string]any{
				"run_id":              tr.RunID,
				"initial":             tr.Initial,
				"final":               tr.Final(),
				"samples":             len(tr.Samples),
				"path_length":         tr.PathLength,
				"disharmony_integral": tr.DisharmonyIntegral,
				"struggle_ratio":      tr.StruggleRatio,
				"overflowed":          tr.Overflowed,
			}
			if samples {
				out["trajectory"] = tr.Samples
			}
			return printJSON(out)
		},
	}

	cmd.Flags().StringVar(&initialStr, "initial", "", "initial state as love,justice,power,wisdom")
	cmd.Flags().Float64Var(&duration, "duration", 100, "simulated time units")
	cmd.Flags().Float64Var(&step, "step", 0.1, "integration step size")
	cmd.Flags().BoolVar(&unbounded, "unbounded", false, "skip per-step clamping (diverges; illustrative only)")
	cmd.Flags().BoolVar(&quantum, "quantum", false, "clamp the Love axis to sqrt(2) instead of 1")
	cmd.Flags().Float64Var(&noise, "noise", 0, "smooth forcing amplitude (0 = deterministic)")
	cmd.Flags().Int64Var(&noiseSeed, "noise-seed", 0, "seed for the forcing field")
	cmd.Flags().BoolVar(&samples, "samples", false, "print the full trajectory, not just the summary")
	cmd.MarkFlagRequired("initial")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				slog.Info("database opened", "path", dbPath)
			}

			srv := &api.Server{Profile: p, DB: db, Port: port}
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	return cmd
}

func constantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constants",
		Short: "Print the reference constants and active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"phi":                     coord.Phi,
				"anchor":                  coord.Anchor,
				"equilibrium":             coord.Equilibrium,
				"consciousness_threshold": coord.ConsciousnessThreshold,
				"profile":                 p,
			})
		},
	}
}

// parseCoordinate reads "love,justice,power,wisdom".
func parseCoordinate(s string) (coord.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return coord.Coordinate{}, fmt.Errorf("initial state needs 4 comma-separated values, got %d", len(parts))
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return coord.Coordinate{}, fmt.Errorf("parse %s value %q: %w", coord.Axes[i], part, err)
		}
		v[i] = f
	}
	c := coord.FromVector(v)
	if err := c.Validate(); err != nil {
		return coord.Coordinate{}, err
	}
	return c, nil
}

func printJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
