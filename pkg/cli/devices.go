package cli

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/device"
)

var devicesCommand = &cli.Command{
	Name:  "devices",
	Usage: "List connected devices and booted simulators",
	Description: `List connected Android devices/emulators and iOS simulators/devices.

A missing platform tool (adb, xcrun, idevice_id) is reported as a note,
not an error; discovery continues for the other platform.

Examples:
  appium-pilot devices
  appium-pilot devices --platform android
  appium-pilot devices --details`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "details",
			Usage: "Query model and OS version for each device",
		},
	},
	Action: runDevices,
}

func runDevices(c *cli.Context) error {
	platform := c.String("platform")
	if platform == "" && len(c.Lineage()) > 1 && c.Lineage()[1] != nil {
		platform = c.Lineage()[1].String("platform")
	}
	details := c.Bool("details")

	var found int
	if platform == "" || platform == "android" {
		found += printDeviceList("Android", details, device.ListAndroid, device.AndroidInfo)
	}
	if platform == "" || platform == "ios" {
		found += printDeviceList("iOS", details, device.ListIOS, device.IOSInfo)
	}

	if found == 0 {
		fmt.Println("No devices found.")
	}
	return nil
}

func printDeviceList(label string, details bool, list func() ([]core.Device, error), info func(string) (core.Device, error)) int {
	devices, err := list()
	if err != nil {
		if errors.Is(err, core.ErrToolNotFound) {
			fmt.Printf("%s: tool not available (%v)\n", label, err)
		} else {
			fmt.Printf("%s: discovery failed (%v)\n", label, err)
		}
		return 0
	}
	if len(devices) == 0 {
		return 0
	}

	fmt.Printf("%s%s devices:%s\n", color(colorBold), label, color(colorReset))
	for _, d := range devices {
		if details {
			if full, err := info(d.ID); err == nil {
				d = full
			}
		}
		line := fmt.Sprintf("  %s", d.ID)
		if d.Name != "" && d.Name != d.ID {
			line += fmt.Sprintf("  %s", d.Name)
		}
		if model := d.Prop("model"); model != "" {
			line += fmt.Sprintf("  %s", model)
		}
		if ver := d.Prop("version"); ver != "" {
			line += fmt.Sprintf("  (OS %s)", ver)
		}
		if d.Emulator {
			line += "  [emulator]"
		}
		fmt.Println(line)
	}
	fmt.Println()
	return len(devices)
}
