// Package config loads the workspace settings: config/config.yaml (base)
// overlaid by the active environment's block from config/env_config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// Manager holds the merged configuration document. Loading happens once
// at construction; SetEnv triggers a full reload from disk.
//
// Load failures are swallowed: the manager logs the error, keeps an empty
// document, and every Get returns the supplied default. Callers that need
// to tell "key absent" from "config failed to load" check LoadErr.
type Manager struct {
	mu sync.RWMutex

	root          string
	env           string
	configPath    string
	envConfigPath string

	data    map[string]interface{}
	loadErr error
}

// New creates a Manager rooted at the resolved project home, with the
// given environment active (default "dev").
func New(env string) *Manager {
	return NewFromDir(GetHome(), env)
}

// NewFromDir creates a Manager rooted at dir, reading dir/config/*.yaml.
func NewFromDir(dir, env string) *Manager {
	if env == "" {
		env = "dev"
	}
	m := &Manager{
		root:          dir,
		env:           env,
		configPath:    filepath.Join(dir, "config", "config.yaml"),
		envConfigPath: filepath.Join(dir, "config", "env_config.yaml"),
	}
	m.load()
	return m
}

// load reads both documents and merges the active environment's overlay
// into the base. Any failure yields an empty document plus a logged error.
func (m *Manager) load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = map[string]interface{}{}
	m.loadErr = nil

	base, err := readYAML(m.configPath)
	if err != nil {
		m.loadErr = fmt.Errorf("load config: %w", err)
		logger.Error("failed to load config %s: %v", m.configPath, err)
		return
	}

	if _, err := os.Stat(m.envConfigPath); err == nil {
		overlay, err := readYAML(m.envConfigPath)
		if err != nil {
			m.loadErr = fmt.Errorf("load env config: %w", err)
			logger.Error("failed to load env config %s: %v", m.envConfigPath, err)
			return
		}
		if envBlock, ok := overlay[m.env].(map[string]interface{}); ok {
			mergeMaps(base, envBlock)
		}
	}

	m.data = base
}

// readYAML reads a YAML document into a string-keyed map. A missing or
// empty document is not an error here; unreadable or unparsable is.
func readYAML(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- workspace config file
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return doc, nil
}

// mergeMaps merges overlay into base depth-first. When both sides hold a
// map the merge recurses; otherwise the overlay value replaces the base
// value. Right-biased, non-destructive to sibling keys.
func mergeMaps(base, overlay map[string]interface{}) {
	for key, ov := range overlay {
		ovMap, ovIsMap := ov.(map[string]interface{})
		baseMap, baseIsMap := base[key].(map[string]interface{})
		if ovIsMap && baseIsMap {
			mergeMaps(baseMap, ovMap)
			continue
		}
		base[key] = ov
	}
}

// Get walks the merged document one dotted segment at a time. It returns
// def when any segment is missing or the traversed value is not a map.
func (m *Manager) Get(dottedKey string, def interface{}) interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cur interface{} = m.data
	for _, seg := range strings.Split(dottedKey, ".") {
		node, ok := cur.(map[string]interface{})
		if !ok {
			return def
		}
		cur, ok = node[seg]
		if !ok {
			return def
		}
	}
	return cur
}

// GetString returns the value at dottedKey coerced to string.
func (m *Manager) GetString(dottedKey, def string) string {
	v := m.Get(dottedKey, nil)
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// GetInt returns the value at dottedKey coerced to int.
func (m *Manager) GetInt(dottedKey string, def int) int {
	v := m.Get(dottedKey, nil)
	if v == nil {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns the value at dottedKey coerced to bool.
func (m *Manager) GetBool(dottedKey string, def bool) bool {
	v := m.Get(dottedKey, nil)
	if v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// GetDuration reads an integer number of seconds at dottedKey.
func (m *Manager) GetDuration(dottedKey string, def time.Duration) time.Duration {
	v := m.Get(dottedKey, nil)
	if v == nil {
		return def
	}
	secs, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return time.Duration(secs) * time.Second
}

// Section returns the top-level mapping under name, or an empty map.
func (m *Manager) Section(name string) map[string]interface{} {
	if sec, ok := m.Get(name, nil).(map[string]interface{}); ok {
		return sec
	}
	return map[string]interface{}{}
}

// Section helpers mirroring the document layout.

func (m *Manager) AppiumSection() map[string]interface{}  { return m.Section("appium") }
func (m *Manager) AndroidSection() map[string]interface{} { return m.Section("android") }
func (m *Manager) IOSSection() map[string]interface{}     { return m.Section("ios") }
func (m *Manager) TestSection() map[string]interface{}    { return m.Section("test") }
func (m *Manager) ReportSection() map[string]interface{}  { return m.Section("report") }
func (m *Manager) LoggingSection() map[string]interface{} { return m.Section("logging") }
func (m *Manager) DataSection() map[string]interface{}    { return m.Section("data") }

// SetEnv reassigns the active environment and reloads both documents.
func (m *Manager) SetEnv(env string) {
	m.mu.Lock()
	m.env = env
	m.mu.Unlock()
	m.load()
}

// Env returns the active environment name.
func (m *Manager) Env() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.env
}

// LoadErr returns the error from the last load, or nil. Lookups after a
// failed load silently return defaults; this is the only way to tell.
func (m *Manager) LoadErr() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadErr
}

// ProjectPath joins rel onto the project root. Absolute paths pass
// through unchanged.
func (m *Manager) ProjectPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.root, rel)
}
