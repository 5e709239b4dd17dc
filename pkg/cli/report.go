package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/report"
)

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "Manage Allure reports",
	Subcommands: []*cli.Command{
		{
			Name:  "generate",
			Usage: "Generate the HTML report from existing results",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "clean",
					Usage: "Remove the previous HTML report first",
				},
			},
			Action: func(c *cli.Context) error {
				mgr := reportManager(c)
				if !mgr.Generate(c.Bool("clean")) {
					return cli.Exit("report generation failed", 1)
				}
				fmt.Printf("Report generated: %s\n", mgr.LatestReportPath())
				return nil
			},
		},
		{
			Name:  "open",
			Usage: "Open the report in a browser (generates it if missing)",
			Action: func(c *cli.Context) error {
				if !reportManager(c).Open() {
					return cli.Exit("failed to open report", 1)
				}
				return nil
			},
		},
		{
			Name:  "serve",
			Usage: "Serve the report with the Allure web server",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "port",
					Aliases: []string{"p"},
					Value:   0,
					Usage:   "Port to serve on (0 = random)",
				},
			},
			Action: func(c *cli.Context) error {
				if !reportManager(c).Serve(c.Int("port")) {
					return cli.Exit("failed to serve report", 1)
				}
				return nil
			},
		},
		{
			Name:  "clean",
			Usage: "Remove raw results and prune old report archives",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "keep-days",
					Usage: "Delete archived reports older than N days",
					Value: 14,
				},
			},
			Action: func(c *cli.Context) error {
				mgr := reportManager(c)
				mgr.CleanResults()
				mgr.CleanupOld(c.Int("keep-days"))
				fmt.Println("Reports cleaned.")
				return nil
			},
		},
		{
			Name:      "archive",
			Usage:     "Zip the current HTML report",
			ArgsUsage: "[archive-name]",
			Action: func(c *cli.Context) error {
				name := c.Args().First()
				if name == "" {
					name = "report"
				}
				path := reportManager(c).Archive(name)
				if path == "" {
					return cli.Exit("archive failed", 1)
				}
				fmt.Printf("Archived: %s\n", path)
				return nil
			},
		},
	},
}

func reportManager(c *cli.Context) *report.Manager {
	env := "dev"
	for _, ctx := range c.Lineage() {
		if ctx != nil && ctx.String("env") != "" {
			env = ctx.String("env")
			break
		}
	}
	mgr := report.NewManager(config.New(env))
	mgr.EnsureDirs()
	return mgr
}
