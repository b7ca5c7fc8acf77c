package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/atmcli/internal/session"
	"github.com/charmbracelet/huh"
)

// Console asks questions with huh forms and prints alerts to a writer.
type Console struct {
	out        io.Writer
	accessible bool
}

// NewConsole creates a console writing to out. Setting ACCESSIBLE in the
// environment switches huh to plain line prompts.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, accessible: os.Getenv("ACCESSIBLE") != ""}
}

// Prompt asks for one line of input. Dismissing the prompt returns an error
// wrapping session.ErrCancelled.
func (c *Console) Prompt(ctx context.Context, message string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(message).
				Value(&value),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithAccessible(c.accessible)

	if err := form.RunWithContext(ctx); err != nil {
		return "", promptErr(err)
	}
	return strings.TrimSpace(value), nil
}

// Confirm asks a yes/no question. Returns false when dismissed.
func (c *Console) Confirm(ctx context.Context, title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeCatppuccin()).WithAccessible(c.accessible)

	if err := form.RunWithContext(ctx); err != nil {
		if err = promptErr(err); errors.Is(err, session.ErrCancelled) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// Alert prints message in a box. It returns once written, which is as
// blocking as a terminal gets.
func (c *Console) Alert(message string) {
	fmt.Fprintln(c.out, StyleAlert.Render(message))
}

// Notice prints an informational line.
func (c *Console) Notice(message string) {
	fmt.Fprintln(c.out, Info(message))
}

func promptErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", session.ErrCancelled, err)
	}
	return fmt.Errorf("prompt: %w", err)
}
