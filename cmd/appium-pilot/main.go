package main

import (
	"github.com/devicelab-dev/appium-pilot/pkg/cli"

	// Register the shipped test suites.
	_ "github.com/devicelab-dev/appium-pilot/suites"
)

func main() {
	cli.Execute()
}
