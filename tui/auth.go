package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"

	"talknbook-cli/model"
)

var validate = validator.New()

const (
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldPassword = "password"
)

type authForm struct {
	fields []string
	inputs []textinput.Model
	focus  int
	err    string
}

func newLoginForm() authForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return authForm{
		fields: []string{fieldEmail, fieldPassword},
		inputs: []textinput.Model{email, password},
	}
}

func newSignupForm() authForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 120

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return authForm{
		fields: []string{fieldUsername, fieldEmail, fieldPassword},
		inputs: []textinput.Model{username, email, password},
	}
}

func (f *authForm) focusCmd() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focus = 0
	return f.inputs[0].Focus()
}

func (f *authForm) cycle(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *authForm) value(field string) string {
	for i, name := range f.fields {
		if name == field {
			return strings.TrimSpace(f.inputs[i].Value())
		}
	}
	return ""
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := &m.loginForm
	if m.state == stateSignup {
		form = &m.signupForm
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.state == stateSignup {
			m.state = stateLogin
			return m, m.loginForm.focusCmd()
		}
		return m, tea.Quit
	case "tab", "down":
		return m, form.cycle(1)
	case "shift+tab", "up":
		return m, form.cycle(-1)
	case "ctrl+s":
		if m.state == stateLogin {
			m.state = stateSignup
			return m, m.signupForm.focusCmd()
		}
		m.state = stateLogin
		return m, m.loginForm.focusCmd()
	case "enter":
		if m.state == stateSignup {
			return m.submitSignup()
		}
		return m.submitLogin()
	}

	return m, form.update(msg)
}

func (m appModel) submitLogin() (tea.Model, tea.Cmd) {
	req := model.LoginRequest{
		Email:    m.loginForm.value(fieldEmail),
		Password: m.loginForm.value(fieldPassword),
	}
	if err := validate.Struct(req); err != nil {
		m.loginForm.err = validationMessage(err)
		return m, nil
	}
	m.loginForm.err = ""
	m.state = stateAuthenticating
	return m, tea.Batch(m.loginCmd(req.Email, req.Password), m.spinner.Tick)
}

func (m appModel) submitSignup() (tea.Model, tea.Cmd) {
	req := model.SignupRequest{
		Username: m.signupForm.value(fieldUsername),
		Email:    m.signupForm.value(fieldEmail),
		Password: m.signupForm.value(fieldPassword),
	}
	if err := validate.Struct(req); err != nil {
		m.signupForm.err = validationMessage(err)
		return m, nil
	}
	m.signupForm.err = ""
	m.state = stateAuthenticating
	return m, tea.Batch(m.signupCmd(req.Username, req.Email, req.Password), m.spinner.Tick)
}

// validationMessage turns the first failed rule into something a person
// can act on.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid input"
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
