package driver

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// restartDelay gives the server time to release the previous session
// before a new one is requested.
const restartDelay = 2 * time.Second

// Manager owns at most one automation session. Start moves it to the
// active state, Quit always returns it to the idle state. Starting while
// a session is already active is not guarded: the first session leaks
// unless the caller quits first.
type Manager struct {
	cfg          *config.Manager
	client       *Client
	explicitWait time.Duration
}

// NewManager creates a driver lifecycle manager over the given config.
func NewManager(cfg *config.Manager) *Manager {
	return &Manager{cfg: cfg}
}

// StartAndroid opens an Android session. Overrides win key by key over
// config-derived capability values.
func (m *Manager) StartAndroid(overrides map[string]interface{}) (*Client, error) {
	return m.start("android", BuildAndroidCaps(m.cfg, overrides))
}

// StartIOS opens an iOS session.
func (m *Manager) StartIOS(overrides map[string]interface{}) (*Client, error) {
	return m.start("ios", BuildIOSCaps(m.cfg, overrides))
}

// Start opens a session for the named platform.
func (m *Manager) Start(platform string, overrides map[string]interface{}) (*Client, error) {
	switch strings.ToLower(platform) {
	case "android":
		return m.StartAndroid(overrides)
	case "ios":
		return m.StartIOS(overrides)
	default:
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("unsupported platform: %s", platform))
	}
}

func (m *Manager) start(platform string, caps map[string]interface{}) (*Client, error) {
	serverURL := fmt.Sprintf("http://%s:%d",
		m.cfg.GetString("appium.host", "127.0.0.1"),
		m.cfg.GetInt("appium.port", 4723))

	logger.Info("starting %s driver against %s", platform, serverURL)
	logger.Debug("capabilities: %v", caps)

	client := NewClient(serverURL)
	if err := client.Connect(caps); err != nil {
		logger.Error("failed to start %s driver: %v", platform, err)
		return nil, core.ErrSessionStart.WithCause(err)
	}

	implicit := m.cfg.GetDuration("test.implicit_wait", 10*time.Second)
	if err := client.SetImplicitWait(implicit); err != nil {
		logger.Warn("failed to set implicit wait: %v", err)
	}
	m.explicitWait = m.cfg.GetDuration("test.explicit_wait", 30*time.Second)

	m.client = client
	logger.Info("%s driver started, session %s", platform, client.SessionID())
	return client, nil
}

// Quit closes the session and returns to the idle state. Errors are
// logged; the state is cleared regardless.
func (m *Manager) Quit() {
	if m.client == nil {
		return
	}
	if err := m.client.Disconnect(); err != nil {
		logger.Error("failed to quit driver: %v", err)
	} else {
		logger.Info("driver quit")
	}
	m.client = nil
	m.explicitWait = 0
}

// Restart quits the current session, waits for the server to release it,
// and starts a fresh session for the given platform.
func (m *Manager) Restart(platform string, overrides map[string]interface{}) (*Client, error) {
	m.Quit()
	time.Sleep(restartDelay)
	return m.Start(platform, overrides)
}

// IsAlive probes session liveness by fetching the page source. Any
// failure, including having no session at all, reads as not alive.
func (m *Manager) IsAlive() bool {
	if m.client == nil {
		return false
	}
	_, err := m.client.Source()
	return err == nil
}

// Client returns the active session client, or nil when idle.
func (m *Manager) Client() *Client {
	return m.client
}

// ExplicitWait returns the explicit wait timeout captured at session
// start, falling back to the configured value.
func (m *Manager) ExplicitWait() time.Duration {
	if m.explicitWait > 0 {
		return m.explicitWait
	}
	return m.cfg.GetDuration("test.explicit_wait", 30*time.Second)
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Manager {
	return m.cfg
}
