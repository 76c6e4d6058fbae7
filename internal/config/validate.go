package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/logging"
	"github.com/fitbeard/okta-assume/pkg/duration"
)

var validate = validator.New()

// Validate checks the required identity provider settings. Missing values
// are configuration errors; malformed URLs are validation errors.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Okta.Username == "" {
		errs = append(errs, fmt.Errorf("%w: username not set", errUtils.ErrConfiguration))
	}
	if cfg.Okta.Password == "" {
		errs = append(errs, fmt.Errorf("%w: password not set", errUtils.ErrConfiguration))
	}
	if cfg.Okta.Org == "" && cfg.Okta.AppURL == "" {
		errs = append(errs, fmt.Errorf("%w: either Okta Org or App URL must be defined", errUtils.ErrConfiguration))
	}

	appOK := cfg.Okta.AppURL != "" && ValidateAppURL(cfg.Okta.AppURL)
	orgOK := cfg.Okta.Org != "" && ValidateOrgURL(cfg.Okta.Org)
	if cfg.Okta.AppURL != "" && !appOK {
		errs = append(errs, fmt.Errorf("%w: tile URL %s is not valid", errUtils.ErrValidation, cfg.Okta.AppURL))
	}
	if cfg.Okta.Org != "" && !orgOK {
		errs = append(errs, fmt.Errorf("%w: org URL %s is not valid", errUtils.ErrValidation, cfg.Okta.Org))
	}
	if appOK && orgOK && BaseURL(cfg.Okta.Org) != BaseURL(cfg.Okta.AppURL) {
		errs = append(errs, fmt.Errorf("%w: org URL %s and tile URL %s must be in the same domain",
			errUtils.ErrValidation, cfg.Okta.Org, cfg.Okta.AppURL))
	}

	return errors.Join(errs...)
}

// Sanitize corrects low-stakes settings in place. The org URL is derived
// from the app URL when one is set; invalid output, region, session duration
// and log level are reset to their defaults with a warning.
func Sanitize(cfg *Config, logger *log.Logger) {
	if cfg.Okta.AppURL != "" {
		cfg.Okta.Org = BaseURL(cfg.Okta.AppURL)
	}

	if err := validate.Var(cfg.AWS.Output, "oneof="+strings.Join(OutputTypes, " ")); err != nil {
		logger.Warn("AWS output reset", "invalid", cfg.AWS.Output, "output", DefaultOutput)
		cfg.AWS.Output = DefaultOutput
	}

	if err := validate.Var(cfg.AWS.Region, "oneof="+strings.Join(Regions, " ")); err != nil {
		logger.Warn("AWS region reset", "invalid", cfg.AWS.Region, "region", DefaultRegion)
		cfg.AWS.Region = DefaultRegion
	}

	if _, err := parseSessionDuration(cfg.AWS.SessionDuration); err != nil {
		logger.Warn("AWS session duration reset", "error", err, "duration", DefaultSessionDuration)
		cfg.AWS.SessionDuration = DefaultSessionDuration
	}

	if _, err := logging.ParseLevel(cfg.User.Loglevel); err != nil {
		logger.Warn("Log level reset", "error", err, "level", DefaultLoglevel)
		cfg.User.Loglevel = DefaultLoglevel
	}
}

// Duration returns the configured STS session duration.
func (a AWSConfig) Duration() time.Duration {
	d, err := parseSessionDuration(a.SessionDuration)
	if err != nil {
		return time.Hour
	}
	return d
}

func parseSessionDuration(value string) (time.Duration, error) {
	d, err := duration.Parse(value)
	if err != nil {
		return 0, err
	}
	if err := duration.Validate(d); err != nil {
		return 0, err
	}
	return d, nil
}
