package credential

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// TerminalPrompter implements Prompter with interactive huh forms.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a terminal-backed Prompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// validateRequired returns a validator rejecting blank input.
func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// AskPAN prompts for the Bankwest PAN.
func (*TerminalPrompter) AskPAN() (string, error) {
	var pan string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bankwest PAN").
				Description("Your online banking login identifier").
				Value(&pan).
				Validate(validateRequired("PAN")),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading PAN: %w", err)
	}

	return strings.TrimSpace(pan), nil
}

// AskPassword prompts for the online banking password without echoing,
// and loops until the user confirms what they typed.
func (*TerminalPrompter) AskPassword() (string, error) {
	for {
		var password string
		var happy bool

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Bankwest online banking password").
					EchoMode(huh.EchoModePassword).
					Value(&password).
					Validate(validateRequired("Password")),
				huh.NewConfirm().
					Title("Are you happy with the password you entered?").
					Affirmative("Yes").
					Negative("No").
					Value(&happy),
			),
		)

		if err := form.Run(); err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}

		if happy {
			return password, nil
		}
	}
}
