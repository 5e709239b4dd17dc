// Package harness runs registered test cases: per-case setup restores a
// dead session, teardown captures failure screenshots, and assertion
// helpers convert wait-based checks into harness-level failures with
// diagnostic evidence attached.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/driver"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
	"github.com/devicelab-dev/appium-pilot/pkg/page"
)

// Case is a registered test case. Fn receives a per-case context and
// reports failure through it; returning normally means the case passed.
type Case struct {
	Name     string
	Feature  string
	Story    string
	Severity string   // blocker, critical, normal, minor (default normal)
	Markers  []string // filter tags: smoke, regression, ...
	Fn       func(t *T)
}

var registry []Case

// Register adds a case to the global registry. Suites call this from
// their init functions.
func Register(c Case) {
	registry = append(registry, c)
}

// Cases returns all registered cases.
func Cases() []Case {
	return registry
}

// ResetRegistry clears the registry (for testing).
func ResetRegistry() {
	registry = nil
}

// HasMarker reports whether the case carries the given marker.
func (c Case) HasMarker(marker string) bool {
	for _, m := range c.Markers {
		if strings.EqualFold(m, marker) {
			return true
		}
	}
	return false
}

// caseFailed is the panic payload used to unwind a failed case; the
// runner recovers it and marks the case failed rather than broken.
type caseFailed struct {
	msg string
}

// T is the per-case context handed to case functions.
type T struct {
	name    string
	h       *Harness
	failed  bool
	message string
	steps   []core.StepRecord
	attach  []core.Attachment
}

// Name returns the case name.
func (t *T) Name() string { return t.name }

// Harness returns the harness running this case.
func (t *T) Harness() *Harness { return t.h }

// Page returns the page-object base bound to the harness driver.
func (t *T) Page() *page.Page {
	return page.New(t.h.drv)
}

// Logf records an informational message.
func (t *T) Logf(format string, v ...interface{}) {
	logger.Info("[%s] "+format, append([]interface{}{t.name}, v...)...)
}

// Step runs fn as a named step recorded in the report.
func (t *T) Step(name string, fn func()) {
	start := time.Now()
	status := core.StatusPassed
	defer func() {
		t.steps = append(t.steps, core.StepRecord{
			Name:      name,
			Status:    status,
			StartTime: start,
			Duration:  time.Since(start),
		})
	}()

	defer func() {
		if r := recover(); r != nil {
			status = core.StatusFailed
			panic(r)
		}
	}()
	t.Logf("step: %s", name)
	fn()
}

// Failf captures a screenshot, records the failure message, and aborts
// the case.
func (t *T) Failf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	t.failed = true
	t.message = msg
	logger.Error("[%s] %s", t.name, msg)
	t.h.captureScreenshot(t, "failure")
	panic(caseFailed{msg: msg})
}

// Errorf records a failure but lets the case continue.
func (t *T) Errorf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	t.failed = true
	if t.message == "" {
		t.message = msg
	}
	logger.Error("[%s] %s", t.name, msg)
}

// Screenshot captures a screenshot with the given description and
// attaches it to the case result.
func (t *T) Screenshot(description string) {
	t.h.captureScreenshot(t, description)
}

// Harness wires config, driver lifecycle, and report directories for a
// single worker. Workers do not share harnesses.
type Harness struct {
	cfg            *config.Manager
	drv            *driver.Manager
	platform       string
	overrides      map[string]interface{}
	screenshotsDir string
	device         *core.Device
}

// New creates a harness for the given platform ("android" or "ios").
func New(cfg *config.Manager, platform string, overrides map[string]interface{}) *Harness {
	return &Harness{
		cfg:            cfg,
		drv:            driver.NewManager(cfg),
		platform:       platform,
		overrides:      overrides,
		screenshotsDir: cfg.ProjectPath("reports/screenshots"),
	}
}

// Driver returns the harness driver manager.
func (h *Harness) Driver() *driver.Manager { return h.drv }

// Config returns the configuration the harness was built with.
func (h *Harness) Config() *config.Manager { return h.cfg }

// SetDevice records the device this harness runs against, for reporting.
func (h *Harness) SetDevice(dev *core.Device) { h.device = dev }

// Setup verifies the session is alive before each case and restarts it
// when it is not.
func (h *Harness) Setup() error {
	if h.drv.IsAlive() {
		return nil
	}
	logger.Warn("driver not alive, restarting")
	_, err := h.drv.Restart(h.platform, h.overrides)
	return err
}

// Teardown runs after each case. On failure, when screenshot-on-failure
// is enabled, it captures diagnostic evidence.
func (h *Harness) Teardown(t *T) {
	if t.failed && h.cfg.GetBool("test.screenshot_on_failure", true) {
		h.captureFailureScreenshot(t)
	}
}

// Close quits the session.
func (h *Harness) Close() {
	h.drv.Quit()
}

func (h *Harness) captureFailureScreenshot(t *T) {
	dir := filepath.Join(h.screenshotsDir, "failures")
	name := fmt.Sprintf("failure_%s_%s.png", sanitize(t.name), time.Now().Format("20060102_150405"))
	h.writeScreenshot(t, dir, name, "failure screenshot")
}

func (h *Harness) captureScreenshot(t *T, description string) {
	name := fmt.Sprintf("screenshot_%s_%s.png", sanitize(t.name), time.Now().Format("20060102_150405.000"))
	h.writeScreenshot(t, h.screenshotsDir, name, description)
}

// writeScreenshot saves a PNG from the live session and attaches it to
// the case. Failures here only log; evidence capture never fails a case.
func (h *Harness) writeScreenshot(t *T, dir, name, description string) {
	client := h.drv.Client()
	if client == nil {
		return
	}
	png, err := client.Screenshot()
	if err != nil {
		logger.Error("failed to capture screenshot: %v", err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create screenshot dir: %v", err)
		return
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		logger.Error("failed to write screenshot: %v", err)
		return
	}
	t.attach = append(t.attach, core.NewScreenshotAttachment(description, path))
	logger.Info("screenshot saved: %s", path)
}

// Assertions. Each waits for the condition, and on failure captures a
// screenshot and raises a harness-level failure with the message.

// AssertPresent asserts that the element appears within the timeout.
func (h *Harness) AssertPresent(t *T, p *page.Page, loc page.Locator, timeout time.Duration, message string) {
	if p.Find(loc, timeout) != "" {
		t.Logf("assert ok: element present %s", loc)
		return
	}
	if message == "" {
		message = fmt.Sprintf("element not present: %s", loc)
	}
	t.Failf("%s", message)
}

// AssertVisible asserts that the element becomes visible within the
// timeout.
func (h *Harness) AssertVisible(t *T, p *page.Page, loc page.Locator, timeout time.Duration, message string) {
	if p.WaitVisible(loc, timeout) {
		t.Logf("assert ok: element visible %s", loc)
		return
	}
	if message == "" {
		message = fmt.Sprintf("element not visible: %s", loc)
	}
	t.Failf("%s", message)
}

// AssertTextContains asserts that actual contains expected.
func (h *Harness) AssertTextContains(t *T, expected, actual, message string) {
	if strings.Contains(actual, expected) {
		t.Logf("assert ok: text contains %q", expected)
		return
	}
	if message == "" {
		message = fmt.Sprintf("expected text %q not found in %q", expected, actual)
	}
	t.Failf("%s", message)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
