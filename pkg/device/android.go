// Package device discovers connected devices by shelling out to the
// platform tools: adb for Android, xcrun simctl and libimobiledevice for
// iOS. Discovery is recomputed on every call; nothing is cached.
//
// Functions return typed errors (core.ErrToolNotFound, core.ErrToolFailed)
// rather than swallowing, so callers can tell "adb is missing" apart from
// "adb found zero devices". The CLI and harness layers log and degrade.
package device

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// lookPath is swapped in tests to simulate missing tools.
var lookPath = exec.LookPath

// androidPropPatterns extracts key properties from getprop output. A
// property appears in the result only when its pattern matched.
var androidPropPatterns = map[string]*regexp.Regexp{
	"model":        regexp.MustCompile(`\[ro\.product\.model\]: \[(.*?)\]`),
	"brand":        regexp.MustCompile(`\[ro\.product\.brand\]: \[(.*?)\]`),
	"version":      regexp.MustCompile(`\[ro\.build\.version\.release\]: \[(.*?)\]`),
	"sdk_version":  regexp.MustCompile(`\[ro\.build\.version\.sdk\]: \[(.*?)\]`),
	"manufacturer": regexp.MustCompile(`\[ro\.product\.manufacturer\]: \[(.*?)\]`),
}

// ListAndroid returns all devices reported by `adb devices`.
func ListAndroid() ([]core.Device, error) {
	adb, err := lookPath("adb")
	if err != nil {
		return nil, core.ErrToolNotFound.WithMessage("adb not found in PATH; ensure the Android SDK is installed").WithCause(err)
	}

	out, err := runTool(adb, "devices")
	if err != nil {
		return nil, err
	}

	devices := parseADBDevices(out)
	logger.Info("found %d Android device(s)", len(devices))
	return devices, nil
}

// parseADBDevices parses `adb devices` output: a header line followed by
// tab-separated serial/status pairs.
func parseADBDevices(out string) []core.Device {
	devices := []core.Device{}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i == 0 && strings.HasPrefix(line, "List of") {
			continue
		}
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		devices = append(devices, core.Device{
			ID:       strings.TrimSpace(parts[0]),
			Status:   strings.TrimSpace(parts[1]),
			Platform: "Android",
			Emulator: strings.HasPrefix(parts[0], "emulator-"),
		})
	}
	return devices
}

// AndroidInfo returns extended properties for the device with the given
// serial, parsed from `adb shell getprop` output.
func AndroidInfo(serial string) (core.Device, error) {
	adb, err := lookPath("adb")
	if err != nil {
		return core.Device{}, core.ErrToolNotFound.WithMessage("adb not found in PATH").WithCause(err)
	}

	out, err := runTool(adb, "-s", serial, "shell", "getprop")
	if err != nil {
		return core.Device{}, err
	}

	return core.Device{
		ID:       serial,
		Status:   "device",
		Platform: "Android",
		Props:    parseGetprop(out),
	}, nil
}

// parseGetprop runs each known pattern against the property dump.
func parseGetprop(out string) map[string]string {
	props := map[string]string{}
	for key, pattern := range androidPropPatterns {
		if m := pattern.FindStringSubmatch(out); m != nil {
			props[key] = m[1]
		}
	}
	return props
}

// InstallAPK installs an APK on the device, replacing any existing
// install. adb reports success in stdout rather than the exit code.
func InstallAPK(serial, apkPath string) error {
	adb, err := lookPath("adb")
	if err != nil {
		return core.ErrToolNotFound.WithMessage("adb not found in PATH").WithCause(err)
	}

	out, err := runTool(adb, "-s", serial, "install", "-r", apkPath)
	if err != nil {
		return err
	}
	if !strings.Contains(out, "Success") {
		return core.ErrToolFailed.WithMessage(fmt.Sprintf("adb install did not report success: %s", strings.TrimSpace(out)))
	}

	logger.Info("installed %s on %s", apkPath, serial)
	return nil
}

// UninstallPackage removes a package from the device.
func UninstallPackage(serial, pkg string) error {
	adb, err := lookPath("adb")
	if err != nil {
		return core.ErrToolNotFound.WithMessage("adb not found in PATH").WithCause(err)
	}

	out, err := runTool(adb, "-s", serial, "uninstall", pkg)
	if err != nil {
		return err
	}
	if !strings.Contains(out, "Success") {
		return core.ErrToolFailed.WithMessage(fmt.Sprintf("adb uninstall did not report success: %s", strings.TrimSpace(out)))
	}

	logger.Info("uninstalled %s from %s", pkg, serial)
	return nil
}

// runTool executes an external command and captures stdout. A nonzero
// exit is converted into core.ErrToolFailed carrying stderr.
func runTool(bin string, args ...string) (string, error) {
	cmd := exec.Command(bin, args...) //#nosec G204 -- fixed binaries, argument-vector invocation
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		msg := fmt.Sprintf("%s %s: %s", bin, strings.Join(args, " "), detail)
		return "", core.ErrToolFailed.WithMessage(msg).WithCause(err)
	}

	return stdout.String(), nil
}
