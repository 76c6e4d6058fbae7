package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/redact"
)

// Sources holds every non-interactive configuration source of one invocation.
type Sources struct {
	File        Values
	Environment Values
	Arguments   Values
}

// LoadFile reads the configuration profile from an ini file. Keys are named
// <namespace>_<key>; keys in [default] are inherited by every other profile.
// A missing file is an empty source for the default profile only.
func LoadFile(fsys afero.Fs, path, profile, charset string, reg *redact.Registry) (Values, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if profile == DefaultProfile {
				return Values{}, nil
			}
			return nil, fmt.Errorf("%w: could not load profile '%s': %s does not exist", errUtils.ErrConfiguration, profile, path)
		}
		return nil, fmt.Errorf("%w: could not read %s: %w", errUtils.ErrConfiguration, path, err)
	}

	text, err := DecodeText(data, charset)
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode %s: %w", errUtils.ErrConfiguration, path, err)
	}

	file, err := LoadINI(text)
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse %s: %w", errUtils.ErrConfiguration, path, err)
	}

	values := Values{}
	readSection := func(section *ini.Section) {
		for _, key := range section.Keys() {
			namespace, name, ok := strings.Cut(strings.ToLower(key.Name()), "_")
			if !ok || namespace == "" || name == "" {
				continue
			}
			reg.AddKey(name, key.Value())
			values.Set(namespace, name, key.Value())
		}
	}

	readSection(file.Section(ini.DefaultSection))
	if section, err := file.GetSection(DefaultProfile); err == nil {
		readSection(section)
	}
	if profile != DefaultProfile {
		section, err := file.GetSection(profile)
		if err != nil {
			return nil, fmt.Errorf("%w: could not load profile '%s' from %s. Available profiles: %v",
				errUtils.ErrConfiguration, profile, path, Profiles(file))
		}
		readSection(section)
	}

	return values, nil
}

// LoadINI parses ini data. Values are taken verbatim: a '#' or ';' inside a
// value does not start a comment, so URLs with fragments and shell commands
// survive a rewrite.
func LoadINI(data []byte) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
	}, data)
}

// Profiles lists the configuration profiles defined in an ini file.
func Profiles(file *ini.File) []string {
	var profiles []string
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		profiles = append(profiles, section.Name())
	}
	return profiles
}

// FromEnvironment maps <EnvPrefix>_<NAMESPACE>_<KEY> variables into a source.
// The variable name is matched case-insensitively and empty values are skipped.
func FromEnvironment(environ []string, reg *redact.Registry) Values {
	values := Values{}
	prefix := EnvPrefix + "_"

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" {
			continue
		}
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		namespace, key, ok := strings.Cut(strings.TrimPrefix(lower, prefix), "_")
		if !ok || namespace == "" || key == "" {
			continue
		}
		reg.AddKey(key, value)
		values.Set(namespace, key, value)
	}

	return values
}

// FromFlags maps explicitly set command-line flags into a source.
func FromFlags(flags *pflag.FlagSet, reg *redact.Registry) Values {
	values := Values{}
	if flags == nil {
		return values
	}

	for _, binding := range FlagBindings {
		flag := flags.Lookup(binding.Flag)
		if flag == nil || !flag.Changed {
			continue
		}
		value := flag.Value.String()
		if value == "" {
			continue
		}
		reg.AddKey(binding.Key, value)
		values.Set(binding.Namespace, binding.Key, value)
	}

	return values
}

// Location names the user config file, the profile to read from it and its
// charset. Arguments win over the environment, which wins over the defaults.
type Location struct {
	Path     string
	Profile  string
	Encoding string
}

// Locate picks the config file location from the environment and argument sources.
func Locate(env, args Values) Location {
	defaults := Defaults()

	pick := func(key, fallback string) string {
		if v, ok := args.Get(NamespaceUser, key); ok {
			return v
		}
		if v, ok := env.Get(NamespaceUser, key); ok {
			return v
		}
		return fallback
	}

	return Location{
		Path:     pick("config_file", defaults.User.ConfigFile),
		Profile:  pick("config_profile", defaults.User.ConfigProfile),
		Encoding: pick("encoding", defaults.User.Encoding),
	}
}

// LoadSources adds the config file named by Locate to the environment and
// argument sources.
func LoadSources(fsys afero.Fs, env, args Values, reg *redact.Registry) (Sources, error) {
	loc := Locate(env, args)

	file, err := LoadFile(fsys, loc.Path, loc.Profile, loc.Encoding, reg)
	if err != nil {
		return Sources{}, err
	}

	return Sources{File: file, Environment: env, Arguments: args}, nil
}
