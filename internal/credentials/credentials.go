// Package credentials runs the login pipeline: Okta authentication, role
// selection, role assumption and credential persistence.
package credentials

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/fitbeard/okta-assume/internal/config"
	"github.com/fitbeard/okta-assume/internal/okta"
	"github.com/fitbeard/okta-assume/internal/profile"
	"github.com/fitbeard/okta-assume/internal/roles"
	"github.com/fitbeard/okta-assume/internal/saml"
	"github.com/fitbeard/okta-assume/internal/sts"
	"github.com/fitbeard/okta-assume/internal/ui"
	"github.com/fitbeard/okta-assume/pkg/duration"
)

// DefaultAppLabel names a configured app tile whose label is unknown.
const DefaultAppLabel = "AWS"

// IdentityProvider authenticates the user and serves the SAML pages of
// their AWS apps.
type IdentityProvider interface {
	Authenticate(ctx context.Context, creds okta.Credentials) (string, error)
	CreateSession(ctx context.Context, sessionToken string) error
	DiscoverApps(ctx context.Context) ([]okta.AppLink, error)
	FetchSAMLPage(ctx context.Context, appURL string) (string, error)
}

// RoleSelector picks exactly one role out of the bindings of every app.
type RoleSelector interface {
	Select(ctx context.Context, apps []roles.App, profileAlias, roleARN string) (roles.Selection, error)
}

// RoleAssumer exchanges a SAML assertion for temporary credentials.
type RoleAssumer interface {
	AssumeRoleWithSAML(ctx context.Context, req sts.Request) (*config.ResolvedCredential, error)
}

// Persister stores credentials in the AWS credentials and config files.
type Persister interface {
	Persist(cred *config.ResolvedCredential, credentialsFile, configFile string) error
}

// Pipeline wires the stages of one login together.
type Pipeline struct {
	Okta     IdentityProvider
	Roles    RoleSelector
	STS      RoleAssumer
	Profiles Persister
	// Out receives the summary shown to the user.
	Out    io.Writer
	Logger *log.Logger
}

// Run authenticates, selects a role, assumes it and writes the credentials.
// It stops at the first failing stage.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (*config.ResolvedCredential, error) {
	sessionToken, err := p.Okta.Authenticate(ctx, okta.Credentials{
		Username:    cfg.Okta.Username,
		Password:    cfg.Okta.Password,
		MFA:         cfg.Okta.MFA,
		MFAResponse: cfg.Okta.MFAResponse,
	})
	if err != nil {
		return nil, err
	}
	if err := p.Okta.CreateSession(ctx, sessionToken); err != nil {
		return nil, err
	}

	links, err := p.appLinks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	apps := make([]roles.App, 0, len(links))
	for _, link := range links {
		app, err := p.loadApp(ctx, link)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	profileName := profile.Name(cfg.AWS)
	selection, err := p.Roles.Select(ctx, apps, cfg.AWS.Profile, cfg.AWS.RoleARN)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("Selected role", "role", selection.Binding.RoleARN(), "app", selection.App.URL)

	sessionDuration := cfg.AWS.Duration()
	p.Logger.Debug("Assuming role", "role", selection.Binding.RoleARN(),
		"provider", selection.Binding.ProviderARN(), "region", cfg.AWS.Region,
		"duration", duration.Format(sessionDuration))

	cred, err := p.STS.AssumeRoleWithSAML(ctx, sts.Request{
		Region:        cfg.AWS.Region,
		RoleARN:       selection.Binding.RoleARN(),
		PrincipalARN:  selection.Binding.ProviderARN(),
		SAMLAssertion: selection.App.Assertion.Encoded,
		Duration:      sessionDuration,
	})
	if err != nil {
		return nil, err
	}
	cred.ProfileName = profileName
	cred.Region = cfg.AWS.Region
	cred.Output = cfg.AWS.Output

	if err := p.Profiles.Persist(cred, cfg.AWS.SharedCredentialsFile, cfg.AWS.ConfigFile); err != nil {
		return nil, err
	}
	p.Logger.Debug("Credentials written", "profile", profileName,
		"credentials_file", cfg.AWS.SharedCredentialsFile, "config_file", cfg.AWS.ConfigFile)

	ui.DisplaySelectedRole(p.out(), profileName, cfg.AWS.SharedCredentialsFile, cred.Expiration)
	return cred, nil
}

// appLinks returns the configured app tile, or every AWS tile on the
// user's dashboard when none is configured.
func (p *Pipeline) appLinks(ctx context.Context, cfg *config.Config) ([]okta.AppLink, error) {
	if cfg.Okta.AppURL != "" {
		return []okta.AppLink{{URL: cfg.Okta.AppURL, Label: DefaultAppLabel}}, nil
	}
	return p.Okta.DiscoverApps(ctx)
}

func (p *Pipeline) loadApp(ctx context.Context, link okta.AppLink) (roles.App, error) {
	page, err := p.Okta.FetchSAMLPage(ctx, link.URL)
	if err != nil {
		return roles.App{}, err
	}

	assertion, err := saml.ExtractAssertion(page)
	if err != nil {
		p.Logger.Error("Could not find a SAML response; check the app URL and that the app is assigned to you", "url", link.URL)
		p.Logger.Debug("Received page", "url", link.URL, "body", page)
		return roles.App{}, fmt.Errorf("app %s: %w", link.URL, err)
	}

	bindings, err := roles.ExtractBindings(assertion.XML)
	if err != nil {
		return roles.App{}, fmt.Errorf("app %s: %w", link.URL, err)
	}
	p.Logger.Debug("Found roles", "url", link.URL, "count", len(bindings))

	return roles.App{
		URL:       link.URL,
		Label:     link.Label,
		Page:      page,
		Assertion: assertion,
		Bindings:  bindings,
	}, nil
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}
