package page

import (
	"time"

	"github.com/devicelab-dev/appium-pilot/pkg/driver"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

const (
	pollInterval      = 500 * time.Millisecond
	defaultMaxScrolls = 5
)

// Page is the base for page objects. Every element operation waits up to
// a timeout for a readiness condition, performs the action, logs the
// outcome, and on failure returns a sentinel value ("" / false) rather
// than an error. Callers check return values.
//
// A timeout of 0 means "use the driver's explicit wait from config".
type Page struct {
	drv *driver.Manager
}

// New creates a Page over the driver manager.
func New(drv *driver.Manager) *Page {
	return &Page{drv: drv}
}

// Driver returns the underlying driver manager.
func (p *Page) Driver() *driver.Manager {
	return p.drv
}

func (p *Page) timeout(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return p.drv.ExplicitWait()
}

// waitFor polls check until it returns a non-empty element ID or the
// timeout elapses.
func (p *Page) waitFor(timeout time.Duration, check func(client *driver.Client) (string, bool)) (string, bool) {
	client := p.drv.Client()
	if client == nil {
		return "", false
	}

	deadline := time.Now().Add(timeout)
	for {
		if id, ok := check(client); ok {
			return id, true
		}
		if !time.Now().Before(deadline) {
			return "", false
		}
		time.Sleep(pollInterval)
	}
}

// Find waits for an element to be present and returns its element ID, or
// "" on timeout.
func (p *Page) Find(loc Locator, timeout time.Duration) string {
	id, ok := p.waitFor(p.timeout(timeout), func(client *driver.Client) (string, bool) {
		id, err := client.FindElement(string(loc.Strategy), loc.Value)
		if err != nil || id == "" {
			return "", false
		}
		return id, true
	})
	if !ok {
		logger.Warn("element lookup timed out: %s", loc)
		return ""
	}
	logger.Debug("found element: %s", loc)
	return id
}

// FindAll returns the IDs of all matching elements once at least one is
// present, or an empty slice on timeout.
func (p *Page) FindAll(loc Locator, timeout time.Duration) []string {
	var ids []string
	_, ok := p.waitFor(p.timeout(timeout), func(client *driver.Client) (string, bool) {
		found, err := client.FindElements(string(loc.Strategy), loc.Value)
		if err != nil || len(found) == 0 {
			return "", false
		}
		ids = found
		return found[0], true
	})
	if !ok {
		logger.Warn("element lookup timed out: %s", loc)
		return nil
	}
	return ids
}

// IsPresent reports whether the element exists right now, without waiting.
func (p *Page) IsPresent(loc Locator) bool {
	client := p.drv.Client()
	if client == nil {
		return false
	}
	id, err := client.FindElement(string(loc.Strategy), loc.Value)
	return err == nil && id != ""
}

// IsVisible reports whether the element exists and is displayed right now.
func (p *Page) IsVisible(loc Locator) bool {
	client := p.drv.Client()
	if client == nil {
		return false
	}
	id, err := client.FindElement(string(loc.Strategy), loc.Value)
	if err != nil || id == "" {
		return false
	}
	displayed, err := client.IsElementDisplayed(id)
	return err == nil && displayed
}

// WaitVisible waits for the element to be present and displayed.
func (p *Page) WaitVisible(loc Locator, timeout time.Duration) bool {
	_, ok := p.waitFor(p.timeout(timeout), func(client *driver.Client) (string, bool) {
		id, err := client.FindElement(string(loc.Strategy), loc.Value)
		if err != nil || id == "" {
			return "", false
		}
		displayed, err := client.IsElementDisplayed(id)
		if err != nil || !displayed {
			return "", false
		}
		return id, true
	})
	if !ok {
		logger.Warn("wait for visible timed out: %s", loc)
	}
	return ok
}

// WaitClickable waits for the element to be displayed and enabled.
func (p *Page) WaitClickable(loc Locator, timeout time.Duration) bool {
	_, ok := p.waitFor(p.timeout(timeout), func(client *driver.Client) (string, bool) {
		id, err := client.FindElement(string(loc.Strategy), loc.Value)
		if err != nil || id == "" {
			return "", false
		}
		if displayed, err := client.IsElementDisplayed(id); err != nil || !displayed {
			return "", false
		}
		if enabled, err := client.IsElementEnabled(id); err != nil || !enabled {
			return "", false
		}
		return id, true
	})
	if !ok {
		logger.Warn("wait for clickable timed out: %s", loc)
	}
	return ok
}

// Click waits for the element to be clickable, then clicks it.
func (p *Page) Click(loc Locator, timeout time.Duration) bool {
	if !p.WaitClickable(loc, timeout) {
		logger.Warn("click failed, element not clickable: %s", loc)
		return false
	}
	id := p.Find(loc, timeout)
	if id == "" {
		return false
	}
	if err := p.drv.Client().ClickElement(id); err != nil {
		logger.Error("click failed: %s: %v", loc, err)
		return false
	}
	logger.Info("clicked element: %s", loc)
	return true
}

// SendKeys waits for the element and types text into it, clearing first
// when clearFirst is set.
func (p *Page) SendKeys(loc Locator, text string, clearFirst bool, timeout time.Duration) bool {
	id := p.Find(loc, timeout)
	if id == "" {
		logger.Warn("send keys failed, element not found: %s", loc)
		return false
	}

	client := p.drv.Client()
	if clearFirst {
		if err := client.ClearElement(id); err != nil {
			logger.Error("clear failed: %s: %v", loc, err)
			return false
		}
	}
	if err := client.SendKeysToElement(id, text); err != nil {
		logger.Error("send keys failed: %s: %v", loc, err)
		return false
	}
	logger.Info("sent keys to element: %s", loc)
	return true
}

// Text returns the element's text, or "" when the lookup or read fails.
func (p *Page) Text(loc Locator, timeout time.Duration) string {
	id := p.Find(loc, timeout)
	if id == "" {
		return ""
	}
	text, err := p.drv.Client().GetElementText(id)
	if err != nil {
		logger.Error("get text failed: %s: %v", loc, err)
		return ""
	}
	logger.Debug("got text from %s: %q", loc, text)
	return text
}

// Attribute returns an element attribute value, or "".
func (p *Page) Attribute(loc Locator, name string, timeout time.Duration) string {
	id := p.Find(loc, timeout)
	if id == "" {
		return ""
	}
	value, err := p.drv.Client().GetElementAttribute(id, name)
	if err != nil {
		logger.Error("get attribute failed: %s.%s: %v", loc, name, err)
		return ""
	}
	return value
}

// Swipe performs a raw swipe between two points.
func (p *Page) Swipe(startX, startY, endX, endY, durationMs int) bool {
	client := p.drv.Client()
	if client == nil {
		return false
	}
	if err := client.Swipe(startX, startY, endX, endY, durationMs); err != nil {
		logger.Error("swipe failed: %v", err)
		return false
	}
	logger.Info("swiped (%d,%d) -> (%d,%d)", startX, startY, endX, endY)
	return true
}

// ScrollDown swipes upward by a third of the screen, moving content down.
func (p *Page) ScrollDown() bool {
	return p.scrollVertical(false)
}

// ScrollUp swipes downward by a third of the screen.
func (p *Page) ScrollUp() bool {
	return p.scrollVertical(true)
}

func (p *Page) scrollVertical(up bool) bool {
	client := p.drv.Client()
	if client == nil {
		return false
	}
	w, h, err := client.WindowSize()
	if err != nil {
		logger.Error("scroll failed, window size unavailable: %v", err)
		return false
	}

	x := w / 2
	startY, endY := h*2/3, h/3
	if up {
		startY, endY = endY, startY
	}
	return p.Swipe(x, startY, x, endY, 500)
}

// ScrollToElement scrolls down up to maxScrolls times (default 5 when 0)
// until the element is visible.
func (p *Page) ScrollToElement(loc Locator, maxScrolls int) bool {
	if maxScrolls <= 0 {
		maxScrolls = defaultMaxScrolls
	}

	for i := 0; i < maxScrolls; i++ {
		if p.IsVisible(loc) {
			logger.Debug("scrolled to element: %s", loc)
			return true
		}
		if !p.ScrollDown() {
			return false
		}
	}

	if p.IsVisible(loc) {
		return true
	}
	logger.Warn("element not reached after %d scrolls: %s", maxScrolls, loc)
	return false
}

// HideKeyboard dismisses the on-screen keyboard, ignoring failures (the
// keyboard may simply not be shown).
func (p *Page) HideKeyboard() {
	client := p.drv.Client()
	if client == nil {
		return
	}
	if err := client.HideKeyboard(); err != nil {
		logger.Debug("hide keyboard: %v", err)
	}
}
