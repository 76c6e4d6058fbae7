package config

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-viper/mapstructure/v2"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/redact"
)

// Prompter asks the user for a single value.
type Prompter interface {
	Input(label string) (string, error)
	Password(label string) (string, error)
}

// Resolver merges configuration sources into one Config.
type Resolver struct {
	// Prompter is nil when no interactive fallback is possible.
	Prompter Prompter
	Registry *redact.Registry
	Logger   *log.Logger
	// Out receives interactive instructions.
	Out io.Writer
}

// Resolve merges defaults < file < environment < arguments < interactive
// input, then validates and sanitizes the result. Sources are merged key by
// key before decoding, so a present value always beats a lower source, even
// when it is false or zero.
func (r *Resolver) Resolve(src Sources) (*Config, error) {
	layers := []struct {
		name   string
		values Values
		class  error
	}{
		{name: "configuration file", values: src.File, class: errUtils.ErrConfiguration},
		{name: "environment", values: src.Environment, class: errUtils.ErrConfiguration},
		{name: "command line arguments", values: src.Arguments},
	}

	merged := Values{}
	for _, layer := range layers {
		if _, err := Decode(layer.values); err != nil {
			if layer.class != nil {
				return nil, fmt.Errorf("%w: the %s is incorrect: %w", layer.class, layer.name, err)
			}
			return nil, fmt.Errorf("the %s are not correct: %w", layer.name, err)
		}
		if err := merged.Overlay(layer.values); err != nil {
			return nil, err
		}
		r.Logger.Debug("Merged configuration source", "source", layer.name, "namespaces", len(layer.values))
	}

	cfg, err := decodeDefaults(merged)
	if err != nil {
		return nil, err
	}

	if r.Prompter != nil {
		interactive, err := r.interactive(&cfg)
		if err != nil {
			return nil, err
		}
		if _, err := Decode(interactive); err != nil {
			return nil, fmt.Errorf("%w: interactive input is not correct: %w", errUtils.ErrConfiguration, err)
		}
		if err := merged.Overlay(interactive); err != nil {
			return nil, err
		}
		if cfg, err = decodeDefaults(merged); err != nil {
			return nil, err
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	Sanitize(&cfg, r.Logger)

	r.Logger.Debug("Final configuration", "org", cfg.Okta.Org, "app_url", cfg.Okta.AppURL,
		"username", cfg.Okta.Username, "profile", cfg.AWS.Profile, "region", cfg.AWS.Region,
		"output", cfg.AWS.Output, "role_arn", cfg.AWS.RoleARN)

	return &cfg, nil
}

// Decode maps a source onto the declared schema. Unknown namespaces or keys
// are reported as errors.
func Decode(values Values) (Config, error) {
	var cfg Config
	err := decodeInto(&cfg, values)
	return cfg, err
}

// decodeDefaults decodes values over the defaults.
func decodeDefaults(values Values) (Config, error) {
	cfg := Defaults()
	if err := decodeInto(&cfg, values); err != nil {
		return cfg, fmt.Errorf("%w: %w", errUtils.ErrConfiguration, err)
	}
	return cfg, nil
}

// decodeInto sets the fields of cfg named by values. Fields without a key
// keep their current value.
func decodeInto(cfg *Config, values Values) error {
	input := make(map[string]any, len(values))
	for namespace, keys := range values {
		section := make(map[string]any, len(keys))
		for key, value := range keys {
			section[key] = value
		}
		input[namespace] = section
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
