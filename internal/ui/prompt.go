// Package ui holds the terminal prompts and console output of okta-assume.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

// bellSkipper implements an io.WriteCloser that skips the terminal bell character.
type bellSkipper struct {
	w io.Writer
}

func (bs *bellSkipper) Write(b []byte) (int, error) {
	const charBell = 7 // bell control character
	if len(b) == 1 && b[0] == charBell {
		return 0, nil
	}
	return bs.w.Write(b)
}

func (bs *bellSkipper) Close() error {
	return nil
}

// Prompter reads answers from a terminal. It satisfies the prompter and
// chooser interfaces of the config, okta, mfa and roles packages.
type Prompter struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
}

// NewPrompter returns a prompter reading stdin and drawing on out. Callers
// pass stderr so that stdout stays free for output meant for other programs.
func NewPrompter(stdin io.ReadCloser, out io.Writer) *Prompter {
	return &Prompter{Stdin: stdin, Stdout: out}
}

func (p *Prompter) run(prompt promptui.Prompt) (string, error) {
	prompt.Stdin = p.Stdin
	prompt.Stdout = &bellSkipper{p.Stdout}

	result, err := prompt.Run()
	if err != nil {
		return "", mapPromptError(err)
	}
	return result, nil
}

// Input asks for a visible value.
func (p *Prompter) Input(label string) (string, error) {
	return p.run(promptui.Prompt{Label: label})
}

// Password asks for a value without echoing it.
func (p *Prompter) Password(label string) (string, error) {
	return p.run(promptui.Prompt{Label: label, Mask: '*'})
}

// Choose asks for an index in [0, count). Invalid answers are rejected by
// the prompt itself until a valid one is entered.
func (p *Prompter) Choose(label string, count int) (int, error) {
	answer, err := p.run(promptui.Prompt{
		Label:    label,
		Validate: indexValidator(count),
	})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

func indexValidator(count int) promptui.ValidateFunc {
	return func(input string) error {
		index, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if index < 0 || index >= count {
			return fmt.Errorf("enter a number between 0 and %d", count-1)
		}
		return nil
	}
}

// mapPromptError turns Ctrl-C and end of input into ErrInterrupted.
func mapPromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errUtils.ErrInterrupted, err)
	}
	return fmt.Errorf("%w: prompt failed: %w", errUtils.ErrIO, err)
}
