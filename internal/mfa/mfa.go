// Package mfa describes the second factors Okta offers and lets the user
// pick one.
package mfa

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

// NotPresented is shown when a factor carries no displayable detail.
const NotPresented = "Not Presented"

// Link is a HAL link of an Okta resource.
type Link struct {
	Href string `json:"href"`
}

// Links are the HAL links attached to a factor.
type Links struct {
	Verify *Link `json:"verify,omitempty"`
}

// Profile holds the factor type specific details of an option.
type Profile struct {
	CredentialID      string `json:"credentialId,omitempty"`
	Name              string `json:"name,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	AuthenticatorName string `json:"authenticatorName,omitempty"`
	Question          string `json:"question,omitempty"`
	QuestionText      string `json:"questionText,omitempty"`
	Email             string `json:"email,omitempty"`
}

// Option is one enrolled factor as returned by the Okta authn API.
type Option struct {
	ID         string   `json:"id"`
	FactorType string   `json:"factorType"`
	Provider   string   `json:"provider"`
	VendorName string   `json:"vendorName,omitempty"`
	Profile    *Profile `json:"profile,omitempty"`
	Links      Links    `json:"_links"`
}

// Describe returns the detail that identifies an option to the user. It
// never fails; unknown factor types and missing fields yield NotPresented.
func Describe(o Option) string {
	var info string
	p := o.Profile
	if p == nil {
		p = &Profile{}
	}

	switch o.FactorType {
	case "token", "token:software:totp", "token:hardware":
		info = p.CredentialID
	case "push":
		info = p.Name
	case "sms", "call":
		info = p.PhoneNumber
	case "webauthn":
		info = p.AuthenticatorName
	case "web", "u2f", "token:hotp":
		info = o.VendorName
	case "question":
		info = lo.CoalesceOrEmpty(p.QuestionText, p.Question)
	case "email":
		info = p.Email
	}

	if info == "" {
		return NotPresented
	}
	return info
}

// Chooser asks the user for an index in [0, count).
type Chooser interface {
	Choose(label string, count int) (int, error)
}

// Render writes options as a table whose columns are as wide as their
// widest value.
func Render(w io.Writer, options []Option) {
	infos := lo.Map(options, func(o Option, _ int) string { return Describe(o) })

	longestIndex := len(strconv.Itoa(len(options)))
	longestProvider := lo.Max(lo.Map(options, func(o Option, _ int) int { return len(o.Provider) }))
	longestType := lo.Max(lo.Map(options, func(o Option, _ int) int { return len(o.FactorType) }))
	longestInfo := lo.Max(lo.Map(infos, func(s string, _ int) int { return len(s) }))

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	blue := color.New(color.FgBlue)
	magenta := color.New(color.FgMagenta)

	fmt.Fprintln(w)
	color.New(color.FgGreen).Fprintln(w, "Select your preferred MFA method and press Enter:")
	for i, o := range options {
		bold.Fprintf(w, "[%*d]", longestIndex, i)
		fmt.Fprint(w, "  ")
		cyan.Fprintf(w, "%-*s", longestProvider, o.Provider)
		fmt.Fprint(w, "  ")
		blue.Fprintf(w, "%-*s", longestType, o.FactorType)
		fmt.Fprint(w, " ")
		blue.Fprintf(w, "%-*s", longestInfo, infos[i])
		fmt.Fprint(w, " ")
		magenta.Fprintf(w, "Id: %s\n", o.ID)
	}
}

// Select renders options and returns the chosen index.
func Select(w io.Writer, chooser Chooser, options []Option) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%w: no MFA factors are enrolled", errUtils.ErrConfiguration)
	}
	if chooser == nil {
		return 0, fmt.Errorf("%w: MFA method not configured and no terminal to select one", errUtils.ErrConfiguration)
	}

	Render(w, options)
	choice, err := chooser.Choose("Enter your selection", len(options))
	if err != nil {
		return 0, err
	}
	if choice < 0 || choice >= len(options) {
		return 0, fmt.Errorf("%w: selection %d is out of range", errUtils.ErrValidation, choice)
	}
	return choice, nil
}

// Preselect returns the index of the first option whose factor type or id
// equals method, compared case-insensitively.
func Preselect(options []Option, method string) (int, bool) {
	if method == "" {
		return 0, false
	}
	_, index, ok := lo.FindIndexOf(options, func(o Option) bool {
		return strings.EqualFold(o.FactorType, method) || o.ID == method
	})
	return index, ok
}
