package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/harness"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
	"github.com/devicelab-dev/appium-pilot/pkg/report"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run registered test cases",
	ArgsUsage: "[name-pattern]",
	Description: `Run registered test cases against a running Appium server.

Cases are selected by an optional name substring and by markers.
Allure results are written to the configured results directory.

Examples:
  appium-pilot run
  appium-pilot run login
  appium-pilot run -m smoke,regression
  appium-pilot run -n 2 --reruns 1
  appium-pilot run --collect-only
  appium-pilot run -m smoke --open-report`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "markers",
			Aliases: []string{"m"},
			Usage:   "Only run cases with these markers (comma-separated)",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"n"},
			Usage:   "Run cases in parallel on N sessions",
			Value:   1,
		},
		&cli.IntFlag{
			Name:  "reruns",
			Usage: "Rerun failed cases up to N times",
		},
		&cli.BoolFlag{
			Name:  "collect-only",
			Usage: "List matching cases without executing them",
		},
		&cli.StringFlag{
			Name:    "report",
			Aliases: []string{"r"},
			Usage:   "Report kind: allure, html, or both",
			Value:   "allure",
		},
		&cli.StringSliceFlag{
			Name:    "cap",
			Aliases: []string{"D"},
			Usage:   "Capability overrides (KEY=VALUE)",
		},
		&cli.BoolFlag{
			Name:  "clean-reports",
			Usage: "Remove previous results before the run",
		},
		&cli.BoolFlag{
			Name:  "open-report",
			Usage: "Generate and open the Allure report after the run",
		},
		&cli.IntFlag{
			Name:  "serve-port",
			Usage: "Serve the Allure report on this port after the run",
		},
	},
	Action: runTests,
}

// parseCapOverrides parses KEY=VALUE flags into a capability override map.
func parseCapOverrides(pairs []string) map[string]interface{} {
	if len(pairs) == 0 {
		return nil
	}
	overrides := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			fmt.Fprintf(os.Stderr, "Warning: ignoring malformed capability %q\n", pair)
			continue
		}
		switch value {
		case "true":
			overrides[key] = true
		case "false":
			overrides[key] = false
		default:
			overrides[key] = value
		}
	}
	return overrides
}

// initLogging configures the logger from the config plus the verbose flag.
func initLogging(cfg *config.Manager, verbose bool) {
	level := cfg.GetString("logging.level", "info")
	if verbose {
		level = "debug"
	}
	err := logger.Init(logger.Options{
		Dir:      cfg.ProjectPath(cfg.GetString("logging.dir", "logs")),
		Level:    level,
		Console:  true,
		MaxBytes: int64(cfg.GetInt("logging.max_bytes", 10*1024*1024)),
		Backups:  cfg.GetInt("logging.backup_count", 5),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
}

func runTests(c *cli.Context) error {
	// Global flags live in the parent context when run as a subcommand.
	getString := func(name string) string {
		if c.IsSet(name) {
			return c.String(name)
		}
		if len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
			return c.Lineage()[1].String(name)
		}
		return c.String(name)
	}
	getBool := func(name string) bool {
		if c.IsSet(name) {
			return c.Bool(name)
		}
		if len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
			return c.Lineage()[1].Bool(name)
		}
		return c.Bool(name)
	}

	if getBool("no-ansi") {
		colorsEnabled = false
	}

	cfg := config.New(getString("env"))
	if err := cfg.LoadErr(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load failed, using defaults: %v\n", err)
	}

	initLogging(cfg, getBool("verbose"))
	defer logger.Close()

	reports := report.NewManager(cfg)
	reports.EnsureDirs()
	if c.Bool("clean-reports") {
		reports.CleanResults()
	}

	opts := harness.RunOptions{
		Pattern:     c.Args().First(),
		Markers:     c.String("markers"),
		Platform:    getString("platform"),
		Workers:     c.Int("workers"),
		Reruns:      c.Int("reruns"),
		CollectOnly: c.Bool("collect-only"),
		ResultsDir:  reports.ResultsDir(),
		Overrides:   parseCapOverrides(c.StringSlice("cap")),
	}
	runner := harness.NewRunner(cfg, opts)

	if opts.CollectOnly {
		for _, tc := range runner.Select() {
			fmt.Println(tc.Name)
		}
		return nil
	}

	// Ctrl+C or kill aborts the run with the conventional interrupt code.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal %v, aborting run", sig)
		fmt.Fprintf(os.Stderr, "\nReceived %v, aborting...\n", sig)
		logger.Close()
		os.Exit(130)
	}()
	defer signal.Stop(sigCh)

	reportKind := c.String("report")
	switch reportKind {
	case "allure", "html", "both", "":
	default:
		return fmt.Errorf("unknown report kind %q (allure, html, both)", reportKind)
	}

	logger.Info("starting run: env=%s platform=%s workers=%d", cfg.Env(), opts.Platform, opts.Workers)
	result := runner.Run()

	printSummary(result)

	if reportKind == "html" || reportKind == "both" {
		if reports.Generate(false) {
			fmt.Printf("  HTML report: %s\n", reports.LatestReportPath())
		}
	}

	if c.Bool("open-report") {
		reports.Open()
	} else if port := c.Int("serve-port"); port > 0 {
		reports.Serve(port)
	}

	if !result.Success() {
		return cli.Exit("", 1)
	}
	return nil
}

// printSummary prints a colored per-case and aggregate summary.
func printSummary(result *core.RunResult) {
	fmt.Println()
	for _, cr := range result.Cases {
		mark, col := "✓", colorGreen
		switch cr.Status {
		case core.StatusFailed:
			mark, col = "✗", colorRed
		case core.StatusBroken:
			mark, col = "!", colorYellow
		case core.StatusSkipped:
			mark, col = "-", colorCyan
		}
		fmt.Printf("  %s%s%s %s (%s)\n", color(col), mark, color(colorReset),
			cr.Name, cr.Duration.Round(time.Millisecond))
		if cr.Message != "" && cr.Status != core.StatusPassed {
			fmt.Printf("      %s\n", firstLine(cr.Message))
		}
	}

	fmt.Println()
	fmt.Printf("  %s%d passed%s", color(colorGreen), result.Passed, color(colorReset))
	if result.Failed > 0 {
		fmt.Printf(", %s%d failed%s", color(colorRed), result.Failed, color(colorReset))
	}
	if result.Broken > 0 {
		fmt.Printf(", %s%d broken%s", color(colorYellow), result.Broken, color(colorReset))
	}
	if result.Skipped > 0 {
		fmt.Printf(", %d skipped", result.Skipped)
	}
	if result.Flaky > 0 {
		fmt.Printf(", %d flaky", result.Flaky)
	}
	fmt.Printf(" in %s\n", result.Duration.Round(time.Millisecond))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
