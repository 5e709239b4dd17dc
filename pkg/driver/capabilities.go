package driver

import (
	"os"

	"github.com/spf13/cast"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
)

// Capability assembly layers three sources, later layers winning key by
// key with no recursive merge: built-in defaults, configuration-file
// values, then caller-supplied overrides.

// BuildAndroidCaps assembles the capability set for an Android session.
func BuildAndroidCaps(cfg *config.Manager, overrides map[string]interface{}) map[string]interface{} {
	android := cfg.AndroidSection()

	caps := map[string]interface{}{
		"platformName":           sectionString(android, "platform_name", "Android"),
		"appium:platformVersion": sectionString(android, "platform_version", "13"),
		"appium:deviceName":      sectionString(android, "device_name", "Android Device"),
		"appium:automationName":  sectionString(android, "automation_name", "UiAutomator2"),
		"appium:appPackage":      sectionString(android, "app_package", ""),
		"appium:appActivity":     sectionString(android, "app_activity", ""),
		"appium:noReset":         sectionBool(android, "no_reset", true),
		"appium:fullReset":       sectionBool(android, "full_reset", false),
		"appium:unicodeKeyboard": sectionBool(android, "unicode_keyboard", true),
		"appium:resetKeyboard":   sectionBool(android, "reset_keyboard", true),
		"appium:newCommandTimeout": cfg.GetInt("appium.new_command_timeout", 300),
	}

	// Only install from a binary when one is actually configured and present.
	if appPath := sectionString(android, "app_path", ""); appPath != "" {
		if _, err := os.Stat(appPath); err == nil {
			caps["appium:app"] = appPath
		}
	}

	applyOverrides(caps, overrides)
	return caps
}

// BuildIOSCaps assembles the capability set for an iOS session.
func BuildIOSCaps(cfg *config.Manager, overrides map[string]interface{}) map[string]interface{} {
	ios := cfg.IOSSection()

	caps := map[string]interface{}{
		"platformName":           sectionString(ios, "platform_name", "iOS"),
		"appium:platformVersion": sectionString(ios, "platform_version", "16.0"),
		"appium:deviceName":      sectionString(ios, "device_name", "iPhone"),
		"appium:automationName":  sectionString(ios, "automation_name", "XCUITest"),
		"appium:bundleId":        sectionString(ios, "bundle_id", ""),
		"appium:noReset":         sectionBool(ios, "no_reset", true),
		"appium:fullReset":       sectionBool(ios, "full_reset", false),
		"appium:newCommandTimeout": cfg.GetInt("appium.new_command_timeout", 300),
	}

	if udid := sectionString(ios, "udid", ""); udid != "" {
		caps["appium:udid"] = udid
	}
	if appPath := sectionString(ios, "app_path", ""); appPath != "" {
		if _, err := os.Stat(appPath); err == nil {
			caps["appium:app"] = appPath
		}
	}

	applyOverrides(caps, overrides)
	return caps
}

// applyOverrides copies overrides over caps, key by key.
func applyOverrides(caps, overrides map[string]interface{}) {
	for key, value := range overrides {
		caps[key] = value
	}
}

func sectionString(section map[string]interface{}, key, def string) string {
	v, ok := section[key]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func sectionBool(section map[string]interface{}, key string, def bool) bool {
	v, ok := section[key]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}
