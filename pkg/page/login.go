package page

import "time"

// LoginPage is the page object for the example app's login screen.
type LoginPage struct {
	*Page
}

// Login screen locators.
var (
	locUsernameInput  = ByID("com.example.app:id/username")
	locPasswordInput  = ByID("com.example.app:id/password")
	locLoginButton    = ByID("com.example.app:id/login_btn")
	locForgotPassword = ByID("com.example.app:id/forgot_password")
	locErrorMessage   = ByID("com.example.app:id/error_message")
	locLoginTitle     = ByXPath(`//android.widget.TextView[@text='Login']`)
)

// NewLoginPage creates the login page object.
func NewLoginPage(base *Page) *LoginPage {
	return &LoginPage{Page: base}
}

// WaitForLoad waits for the login screen title to be visible.
func (p *LoginPage) WaitForLoad(timeout time.Duration) bool {
	return p.WaitVisible(locLoginTitle, timeout)
}

// EnterUsername types the username, clearing any previous input.
func (p *LoginPage) EnterUsername(username string) bool {
	return p.SendKeys(locUsernameInput, username, true, 0)
}

// EnterPassword types the password.
func (p *LoginPage) EnterPassword(password string) bool {
	return p.SendKeys(locPasswordInput, password, true, 0)
}

// TapLogin taps the login button.
func (p *LoginPage) TapLogin() bool {
	return p.Click(locLoginButton, 0)
}

// TapForgotPassword opens the password recovery flow.
func (p *LoginPage) TapForgotPassword() bool {
	return p.Click(locForgotPassword, 0)
}

// Login performs the full login flow. False when any step failed.
func (p *LoginPage) Login(username, password string) bool {
	if !p.EnterUsername(username) {
		return false
	}
	if !p.EnterPassword(password) {
		return false
	}
	p.HideKeyboard()
	return p.TapLogin()
}

// ErrorMessage returns the login error text, or "" when none is shown.
func (p *LoginPage) ErrorMessage(timeout time.Duration) string {
	return p.Text(locErrorMessage, timeout)
}
