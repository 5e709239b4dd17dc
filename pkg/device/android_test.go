package device

import (
	"errors"
	"testing"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
)

func TestParseADBDevices(t *testing.T) {
	out := `List of devices attached
emulator-5554	device
R58M123ABC	device
0a1b2c3d	offline

`
	devices := parseADBDevices(out)

	if len(devices) != 3 {
		t.Fatalf("got %d devices, want 3", len(devices))
	}
	if devices[0].ID != "emulator-5554" || !devices[0].Emulator {
		t.Errorf("first device = %+v, want emulator-5554 flagged as emulator", devices[0])
	}
	if devices[1].ID != "R58M123ABC" || devices[1].Emulator {
		t.Errorf("second device = %+v, want physical R58M123ABC", devices[1])
	}
	if devices[2].Status != "offline" {
		t.Errorf("third device status = %q, want offline", devices[2].Status)
	}
}

func TestParseADBDevices_Empty(t *testing.T) {
	out := "List of devices attached\n\n"
	if devices := parseADBDevices(out); len(devices) != 0 {
		t.Errorf("got %d devices, want 0", len(devices))
	}
}

func TestParseGetprop(t *testing.T) {
	out := `[ro.product.model]: [Pixel 6]
[ro.product.brand]: [google]
[ro.build.version.release]: [13]
[ro.build.version.sdk]: [33]
[ro.product.manufacturer]: [Google]
[ro.unrelated.key]: [noise]
`
	props := parseGetprop(out)

	want := map[string]string{
		"model":        "Pixel 6",
		"brand":        "google",
		"version":      "13",
		"sdk_version":  "33",
		"manufacturer": "Google",
	}
	for key, val := range want {
		if props[key] != val {
			t.Errorf("props[%q] = %q, want %q", key, props[key], val)
		}
	}
	if _, ok := props["unrelated"]; ok {
		t.Error("unmatched keys must not appear")
	}
}

func TestParseGetprop_PartialDump(t *testing.T) {
	props := parseGetprop("[ro.product.model]: [Pixel 6]\n")
	if len(props) != 1 || props["model"] != "Pixel 6" {
		t.Errorf("props = %v, want only model", props)
	}
}

func TestListAndroid_ADBMissing(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}
	defer func() { lookPath = orig }()

	_, err := ListAndroid()
	if !errors.Is(err, core.ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
}

func TestAndroidInfo_ADBMissing(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}
	defer func() { lookPath = orig }()

	if _, err := AndroidInfo("emulator-5554"); !errors.Is(err, core.ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
}
