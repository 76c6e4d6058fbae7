// Package profile writes credentials and settings into ini files such as the
// AWS shared credentials and config files.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/fitbeard/okta-assume/internal/config"
	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

const (
	dirPerm  os.FileMode = 0o700
	filePerm os.FileMode = 0o600
)

// Store updates ini files on a filesystem. Files are read and written in
// Encoding; an empty Encoding means UTF-8.
type Store struct {
	Fs       afero.Fs
	Encoding string
}

// NewStore returns a store on fsys, or on the OS filesystem when fsys is nil.
func NewStore(fsys afero.Fs, encoding string) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Store{Fs: fsys, Encoding: encoding}
}

// UpdateSection sets kv in section of the ini file at path. The file, its
// parent directories and the section are created as needed; other sections
// and keys are kept as they are.
func (s *Store) UpdateSection(path, section string, kv map[string]string) error {
	if err := s.Fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("%w: could not create directory for %s: %w", errUtils.ErrIO, path, err)
	}

	file, err := s.load(path)
	if err != nil {
		return err
	}

	sec, err := file.GetSection(section)
	if err != nil {
		sec, err = file.NewSection(section)
		if err != nil {
			return fmt.Errorf("%w: could not create section [%s] in %s: %w", errUtils.ErrIO, section, path, err)
		}
	}
	for key, value := range kv {
		sec.Key(key).SetValue(value)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: could not serialize %s: %w", errUtils.ErrIO, path, err)
	}
	data, err := config.EncodeText(buf.Bytes(), s.Encoding)
	if err != nil {
		return fmt.Errorf("%w: could not encode %s: %w", errUtils.ErrIO, path, err)
	}
	if err := afero.WriteFile(s.Fs, path, data, filePerm); err != nil {
		return fmt.Errorf("%w: could not write %s: %w", errUtils.ErrIO, path, err)
	}
	return nil
}

func (s *Store) load(path string) (*ini.File, error) {
	data, err := afero.ReadFile(s.Fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return ini.Empty(ini.LoadOptions{IgnoreInlineComment: true}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s: %w", errUtils.ErrIO, path, err)
	}

	text, err := config.DecodeText(data, s.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: could not decode %s: %w", errUtils.ErrIO, path, err)
	}
	file, err := config.LoadINI(text)
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse %s: %w", errUtils.ErrIO, path, err)
	}
	return file, nil
}

// Name returns the AWS profile the credentials are written to.
func Name(cfg config.AWSConfig) string {
	if cfg.Profile == "" {
		return config.DefaultProfile
	}
	return cfg.Profile
}

// Persist writes cred under [<profile>] in the shared credentials file and
// its region and output under [profile <profile>] in the AWS config file.
func (s *Store) Persist(cred *config.ResolvedCredential, credentialsFile, configFile string) error {
	err := s.UpdateSection(credentialsFile, cred.ProfileName, map[string]string{
		"aws_access_key_id":     cred.AccessKeyID,
		"aws_secret_access_key": cred.SecretAccessKey,
		"aws_session_token":     cred.SessionToken,
	})
	if err != nil {
		return err
	}

	return s.UpdateSection(configFile, "profile "+cred.ProfileName, map[string]string{
		"region": cred.Region,
		"output": cred.Output,
	})
}

// SaveIdentity stores the Okta identity settings in a configuration profile
// of the user config file.
func (s *Store) SaveIdentity(path, profile string, okta config.OktaConfig) error {
	if profile == "" {
		profile = config.DefaultProfile
	}
	return s.UpdateSection(path, profile, map[string]string{
		"okta_org":      okta.Org,
		"okta_app_url":  okta.AppURL,
		"okta_username": okta.Username,
	})
}
