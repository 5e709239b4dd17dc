package device

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
)

const simctlSample = `{
  "devices": {
    "com.apple.CoreSimulator.SimRuntime.iOS-16-0": [
      {
        "name": "iPhone 14",
        "udid": "AAAA-1111",
        "state": "Booted",
        "isAvailable": true
      },
      {
        "name": "iPhone 14 Pro",
        "udid": "BBBB-2222",
        "state": "Shutdown",
        "isAvailable": true
      }
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-17-0": [
      {
        "name": "iPhone 15",
        "udid": "CCCC-3333",
        "state": "Booted",
        "isAvailable": true
      }
    ]
  }
}`

func TestParseSimctlList_BootedOnly(t *testing.T) {
	devices, err := parseSimctlList(simctlSample, "Booted")
	if err != nil {
		t.Fatalf("parseSimctlList failed: %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2 booted", len(devices))
	}
	for _, d := range devices {
		if d.Status != "Booted" {
			t.Errorf("device %s status = %q, want Booted", d.ID, d.Status)
		}
		if !d.Emulator {
			t.Errorf("simulator %s not flagged as emulator", d.ID)
		}
		if d.Platform != "iOS" {
			t.Errorf("device %s platform = %q", d.ID, d.Platform)
		}
		if d.Prop("runtime") == "" {
			t.Errorf("device %s missing runtime prop", d.ID)
		}
	}
}

func TestParseSimctlList_NoFilter(t *testing.T) {
	devices, err := parseSimctlList(simctlSample, "")
	if err != nil {
		t.Fatalf("parseSimctlList failed: %v", err)
	}
	if len(devices) != 3 {
		t.Errorf("got %d devices, want all 3", len(devices))
	}
}

func TestParseSimctlList_BadJSON(t *testing.T) {
	_, err := parseSimctlList("not json", "Booted")
	if !errors.Is(err, core.ErrToolFailed) {
		t.Errorf("err = %v, want ErrToolFailed", err)
	}
}

func TestParseIdeviceinfo(t *testing.T) {
	out := `DeviceName: My iPhone
ProductType: iPhone14,2
ProductVersion: 16.4
garbage line without separator
`
	props := parseIdeviceinfo(out)

	if props["DeviceName"] != "My iPhone" {
		t.Errorf("DeviceName = %q", props["DeviceName"])
	}
	if props["ProductVersion"] != "16.4" {
		t.Errorf("ProductVersion = %q", props["ProductVersion"])
	}
	if len(props) != 3 {
		t.Errorf("got %d props, want 3", len(props))
	}
}

func TestListIOS_XcrunMissing(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}
	defer func() { lookPath = orig }()

	_, err := ListIOS()
	if !errors.Is(err, core.ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
}
