package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

func TestValidateOrgURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.okta.com", true},
		{"https://acme.okta.com/", true},
		{"http://acme.okta.com", false},
		{"https://acme.okta.com/foo", false},
		{"https://acme.okta.com/?q=1", false},
		{"https://acme.okta.com/#frag", false},
		{"https://", false},
		{"acme.okta.com", false},
		{"https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateOrgURL(tt.url))
		})
	}
}

func TestValidateAppURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123", true},
		{"https://login.acme.com/home/amazon_aws/b07384d113edec49eaa6/272", true},
		{"http://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123", false},
		{"https://acme.okta.com/home/amazon_aws/AAAA/123", false},
		{"https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/1234", false},
		{"https://acme.okta.com/foo", false},
		{"https://acme.okta.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAppURL(tt.url))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://acme.okta.com", NormalizeURL("  acme.okta.com "))
	assert.Equal(t, "https://acme.okta.com", NormalizeURL("https://acme.okta.com"))
	assert.Equal(t, "", NormalizeURL("   "))
	assert.Equal(t, "https://acme.okta.com", BaseURL("https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123"))
}

func validConfig() Config {
	cfg := Defaults()
	cfg.Okta.Username = "jane"
	cfg.Okta.Password = "hunter2"
	cfg.Okta.Org = "https://acme.okta.com"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid org only",
			mutate: func(*Config) {},
		},
		{
			name: "valid app only",
			mutate: func(c *Config) {
				c.Okta.Org = ""
				c.Okta.AppURL = "https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123"
			},
		},
		{
			name: "same origin",
			mutate: func(c *Config) {
				c.Okta.AppURL = "https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123"
			},
		},
		{
			name:    "missing username",
			mutate:  func(c *Config) { c.Okta.Username = "" },
			wantErr: errUtils.ErrConfiguration,
		},
		{
			name:    "missing password",
			mutate:  func(c *Config) { c.Okta.Password = "" },
			wantErr: errUtils.ErrConfiguration,
		},
		{
			name:    "missing urls",
			mutate:  func(c *Config) { c.Okta.Org = "" },
			wantErr: errUtils.ErrConfiguration,
		},
		{
			name:    "invalid org url",
			mutate:  func(c *Config) { c.Okta.Org = "https://acme.okta.com/foo" },
			wantErr: errUtils.ErrValidation,
		},
		{
			name: "invalid app url",
			mutate: func(c *Config) {
				c.Okta.AppURL = "https://acme.okta.com/foo"
			},
			wantErr: errUtils.ErrValidation,
		},
		{
			name: "different origins",
			mutate: func(c *Config) {
				c.Okta.AppURL = "https://other.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123"
			},
			wantErr: errUtils.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, errUtils.ExitUsage, errUtils.ExitCode(err))
		})
	}
}

func TestSanitize(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	cfg := validConfig()
	cfg.Okta.AppURL = "https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123"
	cfg.Okta.Org = ""
	cfg.AWS.Output = "xml"
	cfg.AWS.Region = "moon-north-1"
	cfg.AWS.SessionDuration = "5m"
	cfg.User.Loglevel = "chatty"

	Sanitize(&cfg, logger)

	assert.Equal(t, "https://acme.okta.com", cfg.Okta.Org)
	assert.Equal(t, DefaultOutput, cfg.AWS.Output)
	assert.Equal(t, DefaultRegion, cfg.AWS.Region)
	assert.Equal(t, DefaultSessionDuration, cfg.AWS.SessionDuration)
	assert.Equal(t, DefaultLoglevel, cfg.User.Loglevel)
	assert.Contains(t, buf.String(), "AWS region reset")
	assert.Contains(t, buf.String(), "AWS output reset")
}

func TestSanitizeKeepsValidValues(t *testing.T) {
	var buf bytes.Buffer
	cfg := validConfig()
	cfg.AWS.Output = "yaml-stream"
	cfg.AWS.Region = "eu-central-1"
	cfg.AWS.SessionDuration = "2h"
	cfg.User.Loglevel = "debug"

	Sanitize(&cfg, log.New(&buf))

	assert.Equal(t, "yaml-stream", cfg.AWS.Output)
	assert.Equal(t, "eu-central-1", cfg.AWS.Region)
	assert.Equal(t, 2*time.Hour, cfg.AWS.Duration())
	assert.Equal(t, "debug", cfg.User.Loglevel)
	assert.Empty(t, buf.String())
}
