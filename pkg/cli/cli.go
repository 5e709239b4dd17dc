// Package cli provides the command-line interface for appium-pilot.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "env",
		Usage:   "Config environment (dev, staging, prod)",
		Value:   "dev",
		EnvVars: []string{"TEST_ENV"},
	},
	&cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Platform to run on (android, ios)",
		EnvVars: []string{"PILOT_PLATFORM"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable verbose logging",
		EnvVars: []string{"PILOT_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	// Optional .env file in the working directory. Missing is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "appium-pilot",
		Usage:   "Appium test runner for Android and iOS apps",
		Version: Version,
		Description: `Appium Pilot executes registered UI test cases against a running
Appium server, with Allure reporting and device management.

Examples:
  appium-pilot run
  appium-pilot run -m smoke --platform android
  appium-pilot run -k login -n 2 --reruns 1
  appium-pilot devices`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
			devicesCommand,
			reportCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}
