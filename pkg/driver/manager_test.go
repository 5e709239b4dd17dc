package driver

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
)

// newAppiumStub runs a minimal Appium-compatible server and returns a
// config manager pointing at it.
func newAppiumStub(t *testing.T, handler http.HandlerFunc) (*httptest.Server, string, int) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return server, host, port
}

func stubHandler(alive *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/session" && r.Method == "POST":
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"sessionId":    "sess-m",
					"capabilities": map[string]interface{}{"platformName": "Android"},
				},
			})
		case r.URL.Path == "/session/sess-m/timeouts":
			writeJSON(w, map[string]interface{}{"value": nil})
		case r.URL.Path == "/session/sess-m/source":
			if alive != nil && !*alive {
				w.WriteHeader(http.StatusNotFound)
				writeJSON(w, map[string]interface{}{
					"value": map[string]interface{}{
						"error":   "invalid session id",
						"message": "session deleted",
					},
				})
				return
			}
			writeJSON(w, map[string]interface{}{"value": "<hierarchy/>"})
		case r.URL.Path == "/session/sess-m" && r.Method == "DELETE":
			writeJSON(w, map[string]interface{}{"value": nil})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestManager_StartAndQuit(t *testing.T) {
	alive := true
	_, host, port := newAppiumStub(t, stubHandler(&alive))

	cfg := newTestConfig(t, fmt.Sprintf(`
appium:
  host: %s
  port: %d
test:
  implicit_wait: 1
  explicit_wait: 2
`, host, port))

	m := NewManager(cfg)
	client, err := m.StartAndroid(nil)
	if err != nil {
		t.Fatalf("StartAndroid failed: %v", err)
	}
	if client.SessionID() != "sess-m" {
		t.Errorf("session = %q", client.SessionID())
	}
	if m.ExplicitWait().Seconds() != 2 {
		t.Errorf("ExplicitWait = %v, want 2s", m.ExplicitWait())
	}
	if !m.IsAlive() {
		t.Error("IsAlive = false right after start")
	}

	alive = false
	if m.IsAlive() {
		t.Error("IsAlive = true after the session died")
	}

	m.Quit()
	if m.Client() != nil {
		t.Error("client not cleared after Quit")
	}
	if m.IsAlive() {
		t.Error("IsAlive = true with no session")
	}
}

func TestManager_StartFailure(t *testing.T) {
	_, host, port := newAppiumStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "session not created",
				"message": "no devices connected",
			},
		})
	})

	cfg := newTestConfig(t, fmt.Sprintf("appium:\n  host: %s\n  port: %d\n", host, port))
	m := NewManager(cfg)

	_, err := m.StartAndroid(nil)
	if !errors.Is(err, core.ErrSessionStart) {
		t.Errorf("err = %v, want ErrSessionStart", err)
	}
	if m.Client() != nil {
		t.Error("client set after failed start")
	}
}

func TestManager_UnsupportedPlatform(t *testing.T) {
	cfg := newTestConfig(t, "x: 1\n")
	m := NewManager(cfg)

	_, err := m.Start("windows", nil)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestManager_QuitWithoutSession(t *testing.T) {
	cfg := newTestConfig(t, "x: 1\n")
	m := NewManager(cfg)

	m.Quit() // must not panic
	if m.IsAlive() {
		t.Error("IsAlive = true on idle manager")
	}
}
