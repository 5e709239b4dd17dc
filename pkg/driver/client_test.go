package driver

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// writeJSON encodes data as JSON to the response writer.
func writeJSON(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// newSessionServer returns a server that answers session create plus the
// given extra handler for everything else.
func newSessionServer(t *testing.T, extra http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" && r.Method == "POST" {
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"sessionId": "sess-1",
					"capabilities": map[string]interface{}{
						"platformName": "Android",
					},
				},
			})
			return
		}
		if extra != nil {
			extra(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
}

func TestClient_Connect(t *testing.T) {
	var gotCaps map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session" || r.Method != "POST" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		caps := body["capabilities"].(map[string]interface{})
		gotCaps, _ = caps["alwaysMatch"].(map[string]interface{})
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"sessionId": "test-session-123",
				"capabilities": map[string]interface{}{
					"platformName": "Android",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Connect(map[string]interface{}{
		"platformName":          "Android",
		"appium:automationName": "UiAutomator2",
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if client.SessionID() != "test-session-123" {
		t.Errorf("SessionID = %q, want 'test-session-123'", client.SessionID())
	}
	if client.Platform() != "android" {
		t.Errorf("Platform = %q, want 'android'", client.Platform())
	}
	if gotCaps == nil || gotCaps["appium:automationName"] != "UiAutomator2" {
		t.Errorf("server saw alwaysMatch caps %v, want automationName present", gotCaps)
	}
}

func TestClient_ConnectError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "session not created",
				"message": "Could not start a new session",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Connect(map[string]interface{}{}); err == nil {
		t.Fatal("Connect should fail on a WebDriver error response")
	}
	if client.SessionID() != "" {
		t.Errorf("SessionID = %q after failed connect, want empty", client.SessionID())
	}
}

func TestClient_Disconnect(t *testing.T) {
	deleteCalled := false
	server := newSessionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/sess-1" && r.Method == "DELETE" {
			deleteCalled = true
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Connect(map[string]interface{}{}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if !deleteCalled {
		t.Error("DELETE /session/sess-1 not called")
	}
	if client.SessionID() != "" {
		t.Error("session ID not cleared after disconnect")
	}

	// Second disconnect is a no-op.
	if err := client.Disconnect(); err != nil {
		t.Errorf("Disconnect without session = %v, want nil", err)
	}
}

func TestClient_FindElement(t *testing.T) {
	server := newSessionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/sess-1/element" && r.Method == "POST" {
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					w3cElementKey: "elem-42",
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Connect(map[string]interface{}{}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	id, err := client.FindElement("id", "com.example:id/login")
	if err != nil {
		t.Fatalf("FindElement failed: %v", err)
	}
	if id != "elem-42" {
		t.Errorf("element ID = %q, want 'elem-42'", id)
	}
}

func TestClient_FindElement_NotFound(t *testing.T) {
	server := newSessionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "no such element",
				"message": "An element could not be located",
			},
		})
	})
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Connect(map[string]interface{}{}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if _, err := client.FindElement("id", "missing"); err == nil {
		t.Error("FindElement should surface the WebDriver error")
	}
}

func TestClient_Screenshot(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	server := newSessionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/sess-1/screenshot" {
			writeJSON(w, map[string]interface{}{
				"value": base64.StdEncoding.EncodeToString(png),
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Connect(map[string]interface{}{}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	data, err := client.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if string(data) != string(png) {
		t.Errorf("screenshot bytes = %v, want decoded PNG header", data)
	}
}

func TestClient_SendKeys(t *testing.T) {
	var gotText string
	server := newSessionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/sess-1/element/elem-1/value" && r.Method == "POST" {
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			gotText, _ = body["text"].(string)
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Connect(map[string]interface{}{}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := client.SendKeysToElement("elem-1", "hello"); err != nil {
		t.Fatalf("SendKeysToElement failed: %v", err)
	}
	if gotText != "hello" {
		t.Errorf("server saw text %q, want 'hello'", gotText)
	}
}

func TestExtractElementID_LegacyFormat(t *testing.T) {
	if got := extractElementID(map[string]interface{}{"ELEMENT": "legacy-1"}); got != "legacy-1" {
		t.Errorf("legacy element ID = %q", got)
	}
	if got := extractElementID(map[string]interface{}{}); got != "" {
		t.Errorf("empty value = %q, want empty", got)
	}
}
