package config

import (
	"fmt"
	"io"
	"strings"
)

const (
	orgURLPrompt   = "Okta Org URL. E.g. https://acme.okta.com/"
	appURLPrompt   = "Okta App URL. E.g. https://acme.okta.com/home/amazon_aws/b07384d113edec49eaa6/123"
	usernamePrompt = "Organization username. E.g. jane.doe@acme.com"
	passwordPrompt = "Password"
)

// interactive asks for the required settings that are still missing in cfg.
func (r *Resolver) interactive(cfg *Config) (Values, error) {
	values := Values{}

	org, app, username, err := r.AskIdentity(cfg.Okta.Org, cfg.Okta.AppURL, cfg.Okta.Username)
	if err != nil {
		return nil, err
	}
	if org != cfg.Okta.Org {
		values.Set(NamespaceOkta, "org", org)
	}
	if app != cfg.Okta.AppURL {
		values.Set(NamespaceOkta, "app_url", app)
	}
	if username != cfg.Okta.Username {
		values.Set(NamespaceOkta, "username", username)
	}

	if cfg.Okta.Password == "" {
		r.Logger.Debug("No password set, will try to get one interactively")
		password, err := r.askPassword()
		if err != nil {
			return nil, err
		}
		r.Registry.Add(password)
		values.Set(NamespaceOkta, "password", password)
	}

	return values, nil
}

// AskIdentity prompts for an org or app URL while both are empty, and for a
// username while it is empty. Values already set are returned unchanged.
func (r *Resolver) AskIdentity(org, app, username string) (string, string, string, error) {
	var err error

	for org == "" && app == "" {
		fmt.Fprintln(r.out(), "\nPlease enter either your Organization URL, a tile (app) URL, or both.")
		if org, err = r.askURL(orgURLPrompt, ValidateOrgURL); err != nil {
			return "", "", "", err
		}
		if app, err = r.askURL(appURLPrompt, ValidateAppURL); err != nil {
			return "", "", "", err
		}
	}

	for username == "" {
		input, err := r.Prompter.Input(usernamePrompt)
		if err != nil {
			return "", "", "", err
		}
		username = strings.TrimSpace(input)
		if username == "" {
			fmt.Fprintln(r.out(), "Invalid input, try again.")
		}
	}

	return org, app, username, nil
}

// askURL re-prompts until valid input is given. Empty input stops asking and
// returns the empty string so the caller can fall back to the other URL kind.
func (r *Resolver) askURL(label string, valid func(string) bool) (string, error) {
	for {
		input, err := r.Prompter.Input(label)
		if err != nil {
			return "", err
		}
		input = NormalizeURL(input)
		if input == "" {
			return "", nil
		}
		if valid(input) {
			r.Logger.Debug("URL accepted", "url", input)
			return input, nil
		}
		fmt.Fprintln(r.out(), "Invalid input, try again.")
	}
}

func (r *Resolver) askPassword() (string, error) {
	for {
		password, err := r.Prompter.Password(passwordPrompt)
		if err != nil {
			return "", err
		}
		if password != "" {
			return password, nil
		}
	}
}

func (r *Resolver) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}
