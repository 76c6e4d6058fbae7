package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console returns the writer for user-facing messages: w, or io.Discard when
// quiet is set.
func Console(w io.Writer, quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return w
}

// SetupColor enables or disables colored output globally.
func SetupColor(noColor bool) {
	color.NoColor = noColor || color.NoColor
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DisplaySelectedRole tells the user where the credentials went and how long
// they are valid.
func DisplaySelectedRole(w io.Writer, profile, credentialsFile string, expiration time.Time) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "\nGenerated profile '%s' in %s.\n", bold(profile), credentialsFile)
	fmt.Fprintln(w, "\nUse profile to authenticate to AWS:")
	fmt.Fprintf(w, "\taws --profile '%s' sts get-caller-identity\n", profile)
	fmt.Fprintln(w, "OR")
	fmt.Fprintf(w, "\texport AWS_PROFILE='%s'\n\n", profile)
	fmt.Fprintf(w, "Credentials are valid until %s (%s).\n", FormatExpiration(expiration, time.UTC), FormatExpiration(expiration, time.Local))
}

// FormatExpiration renders t in loc with its zone abbreviation.
func FormatExpiration(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}
