// Package suites registers the test cases shipped with the project.
// Importing it for side effects populates the harness registry.
package suites

import (
	"github.com/devicelab-dev/appium-pilot/pkg/harness"
	"github.com/devicelab-dev/appium-pilot/pkg/page"
	"github.com/devicelab-dev/appium-pilot/pkg/testdata"
)

func init() {
	harness.Register(harness.Case{
		Name:     "login_with_valid_credentials",
		Feature:  "Authentication",
		Story:    "Login",
		Severity: "blocker",
		Markers:  []string{"smoke", "regression"},
		Fn:       loginWithValidCredentials,
	})
	harness.Register(harness.Case{
		Name:     "login_with_invalid_password",
		Feature:  "Authentication",
		Story:    "Login",
		Severity: "critical",
		Markers:  []string{"regression"},
		Fn:       loginWithInvalidPassword,
	})
	harness.Register(harness.Case{
		Name:     "forgot_password_link_opens",
		Feature:  "Authentication",
		Story:    "Password recovery",
		Severity: "normal",
		Markers:  []string{"regression"},
		Fn:       forgotPasswordLinkOpens,
	})
}

// loginCredentials reads the credentials block for a case from the login
// fixture, with fallbacks so the case still runs without a data file.
func loginCredentials(t *harness.T, caseName string) (string, string) {
	store := testdata.NewStore(t.Harness().Config())
	block, err := store.CaseData("login.json", caseName)
	if err != nil {
		t.Logf("no fixture data, using defaults: %v", err)
		return "testuser", "testpass123"
	}
	username, _ := block["username"].(string)
	password, _ := block["password"].(string)
	return username, password
}

func loginWithValidCredentials(t *harness.T) {
	username, password := loginCredentials(t, "valid")
	login := page.NewLoginPage(t.Page())

	t.Step("wait for login screen", func() {
		if !login.WaitForLoad(0) {
			t.Failf("login screen did not load")
		}
	})

	t.Step("submit credentials", func() {
		if !login.Login(username, password) {
			t.Failf("could not submit login form")
		}
	})

	t.Step("verify no error shown", func() {
		if msg := login.ErrorMessage(0); msg != "" {
			t.Failf("unexpected login error: %s", msg)
		}
	})
}

func loginWithInvalidPassword(t *harness.T) {
	username, _ := loginCredentials(t, "valid")
	login := page.NewLoginPage(t.Page())

	t.Step("wait for login screen", func() {
		if !login.WaitForLoad(0) {
			t.Failf("login screen did not load")
		}
	})

	t.Step("submit wrong password", func() {
		if !login.Login(username, "wrong-password") {
			t.Failf("could not submit login form")
		}
	})

	t.Step("verify error message", func() {
		msg := login.ErrorMessage(0)
		t.Harness().AssertTextContains(t, "Invalid", msg, "login error message")
	})
}

func forgotPasswordLinkOpens(t *harness.T) {
	login := page.NewLoginPage(t.Page())

	t.Step("wait for login screen", func() {
		if !login.WaitForLoad(0) {
			t.Failf("login screen did not load")
		}
	})

	t.Step("tap forgot password", func() {
		if !login.TapForgotPassword() {
			t.Failf("forgot password link not clickable")
		}
		t.Screenshot("forgot password screen")
	})
}
