package ui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

func TestBellSkipper(t *testing.T) {
	var buf bytes.Buffer
	bs := &bellSkipper{&buf}

	n, err := bs.Write([]byte{7})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = bs.Write([]byte("hello\a"))
	require.NoError(t, err)
	assert.Equal(t, "hello\a", buf.String())
	assert.NoError(t, bs.Close())
}

func TestNewPrompter(t *testing.T) {
	stdin := io.NopCloser(strings.NewReader("jane\n"))
	var out bytes.Buffer

	p := NewPrompter(stdin, &out)
	assert.Equal(t, stdin, p.Stdin)
	assert.Equal(t, &out, p.Stdout)
}

func TestIndexValidator(t *testing.T) {
	validate := indexValidator(3)

	for _, input := range []string{"0", "2", " 1 "} {
		assert.NoError(t, validate(input), input)
	}
	for _, input := range []string{"", "x", "-1", "3", "1.5"} {
		assert.Error(t, validate(input), input)
	}
	assert.EqualError(t, validate("7"), "enter a number between 0 and 2")
}

func TestMapPromptError(t *testing.T) {
	for _, err := range []error{promptui.ErrInterrupt, promptui.ErrEOF, io.EOF} {
		mapped := mapPromptError(err)
		assert.ErrorIs(t, mapped, errUtils.ErrInterrupted)
		assert.Equal(t, 1, errUtils.ExitCode(mapped))
	}

	mapped := mapPromptError(errors.New("terminal gone"))
	assert.ErrorIs(t, mapped, errUtils.ErrIO)
	assert.NotErrorIs(t, mapped, errUtils.ErrInterrupted)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, Console(&buf, false))
	assert.Equal(t, io.Discard, Console(&buf, true))
}

func TestSetupColor(t *testing.T) {
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })

	color.NoColor = false
	SetupColor(true)
	assert.True(t, color.NoColor)
}

func TestDisplaySelectedRole(t *testing.T) {
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })
	color.NoColor = true

	var buf bytes.Buffer
	expiration := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	DisplaySelectedRole(&buf, "work", "/home/jane/.aws/credentials", expiration)

	out := buf.String()
	assert.Contains(t, out, "Generated profile 'work' in /home/jane/.aws/credentials.")
	assert.Contains(t, out, "aws --profile 'work' sts get-caller-identity")
	assert.Contains(t, out, "export AWS_PROFILE='work'")
	assert.Contains(t, out, "Credentials are valid until 2026-10-19 12:00:00 UTC (")
	assert.True(t, strings.HasSuffix(out, ").\n"))
}

func TestFormatExpiration(t *testing.T) {
	expiration := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	zone := time.FixedZone("CEST", 2*60*60)

	assert.Equal(t, "2026-10-19 12:00:00 UTC", FormatExpiration(expiration, time.UTC))
	assert.Equal(t, "2026-10-19 14:00:00 CEST", FormatExpiration(expiration, zone))
}
