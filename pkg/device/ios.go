package device

import (
	"encoding/json"
	"strings"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// simctlListOutput is the JSON shape of `xcrun simctl list devices --json`.
type simctlListOutput struct {
	Devices map[string][]simctlDevice `json:"devices"`
}

type simctlDevice struct {
	Name        string `json:"name"`
	UDID        string `json:"udid"`
	State       string `json:"state"`
	IsAvailable bool   `json:"isAvailable"`
}

// ListIOS returns booted iOS simulators plus any physical devices visible
// to libimobiledevice. A missing idevice_id tool only downgrades the
// result to simulators with a logged warning; a missing xcrun is an error.
func ListIOS() ([]core.Device, error) {
	xcrun, err := lookPath("xcrun")
	if err != nil {
		return nil, core.ErrToolNotFound.WithMessage("xcrun not found; install Xcode Command Line Tools").WithCause(err)
	}

	out, err := runTool(xcrun, "simctl", "list", "devices", "--json")
	if err != nil {
		return nil, err
	}

	devices, err := parseSimctlList(out, "Booted")
	if err != nil {
		return nil, err
	}

	devices = append(devices, listPhysicalIOS()...)

	logger.Info("found %d iOS device(s)", len(devices))
	return devices, nil
}

// parseSimctlList decodes simctl JSON output. When stateFilter is
// non-empty only simulators in that state are returned.
func parseSimctlList(out, stateFilter string) ([]core.Device, error) {
	var data simctlListOutput
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		return nil, core.ErrToolFailed.WithMessage("failed to parse simctl output").WithCause(err)
	}

	devices := []core.Device{}
	for runtime, list := range data.Devices {
		for _, dev := range list {
			if stateFilter != "" && dev.State != stateFilter {
				continue
			}
			devices = append(devices, core.Device{
				ID:       dev.UDID,
				Name:     dev.Name,
				Status:   dev.State,
				Platform: "iOS",
				Emulator: true,
				Props:    map[string]string{"runtime": runtime},
			})
		}
	}
	return devices, nil
}

// listPhysicalIOS queries idevice_id for attached physical devices. The
// tool is optional; absence or failure yields an empty slice plus a warn.
func listPhysicalIOS() []core.Device {
	bin, err := lookPath("idevice_id")
	if err != nil {
		logger.Warn("idevice_id not found; physical iOS devices will not be detected")
		return nil
	}

	out, err := runTool(bin, "-l")
	if err != nil {
		logger.Warn("idevice_id failed: %v", err)
		return nil
	}

	var devices []core.Device
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		udid := strings.TrimSpace(line)
		if udid == "" {
			continue
		}
		devices = append(devices, core.Device{
			ID:       udid,
			Name:     "Real Device",
			Status:   "connected",
			Platform: "iOS",
		})
	}
	return devices
}

// IOSInfo returns details for the simulator or physical device with the
// given UDID.
func IOSInfo(udid string) (core.Device, error) {
	xcrun, err := lookPath("xcrun")
	if err != nil {
		return core.Device{}, core.ErrToolNotFound.WithMessage("xcrun not found").WithCause(err)
	}

	out, err := runTool(xcrun, "simctl", "list", "devices", "--json")
	if err != nil {
		return core.Device{}, err
	}

	sims, err := parseSimctlList(out, "")
	if err != nil {
		return core.Device{}, err
	}
	for _, dev := range sims {
		if dev.ID == udid {
			return dev, nil
		}
	}

	// Not a simulator; try ideviceinfo for physical devices.
	if bin, err := lookPath("ideviceinfo"); err == nil {
		if out, err := runTool(bin, "-u", udid); err == nil {
			return core.Device{
				ID:       udid,
				Status:   "connected",
				Platform: "iOS",
				Props:    parseIdeviceinfo(out),
			}, nil
		}
	}

	return core.Device{}, core.ErrToolFailed.WithMessage("device not found: " + udid)
}

// parseIdeviceinfo parses the colon-separated key/value dump.
func parseIdeviceinfo(out string) map[string]string {
	props := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return props
}

// InstallIOSApp installs an app bundle on a simulator.
func InstallIOSApp(udid, appPath string) error {
	xcrun, err := lookPath("xcrun")
	if err != nil {
		return core.ErrToolNotFound.WithMessage("xcrun not found").WithCause(err)
	}
	if _, err := runTool(xcrun, "simctl", "install", udid, appPath); err != nil {
		return err
	}
	logger.Info("installed %s on %s", appPath, udid)
	return nil
}

// UninstallIOSApp removes an app from a simulator by bundle ID.
func UninstallIOSApp(udid, bundleID string) error {
	xcrun, err := lookPath("xcrun")
	if err != nil {
		return core.ErrToolNotFound.WithMessage("xcrun not found").WithCause(err)
	}
	if _, err := runTool(xcrun, "simctl", "uninstall", udid, bundleID); err != nil {
		return err
	}
	logger.Info("uninstalled %s from %s", bundleID, udid)
	return nil
}
