package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppName is used for the config directory and file names.
	AppName = "okta-assume"
	// EnvPrefix prefixes every environment variable read as a configuration source.
	EnvPrefix = "okta_assume"
	// DefaultProfile is the configuration profile used when none is given.
	DefaultProfile = "default"

	DefaultEncoding        = "utf-8"
	DefaultLoglevel        = "WARN"
	DefaultOutput          = "json"
	DefaultRegion          = "us-east-1"
	DefaultSessionDuration = "1h"
)

// Defaults returns the lowest precedence configuration layer.
func Defaults() Config {
	configDir := filepath.Join(xdg.ConfigHome, AppName)

	return Config{
		User: UserConfig{
			ConfigDir:     configDir,
			ConfigFile:    filepath.Join(configDir, AppName+".ini"),
			ConfigProfile: DefaultProfile,
			Encoding:      DefaultEncoding,
			Loglevel:      DefaultLoglevel,
		},
		AWS: AWSConfig{
			ConfigFile:            awsFile("AWS_CONFIG_FILE", "config"),
			SharedCredentialsFile: awsFile("AWS_SHARED_CREDENTIALS_FILE", "credentials"),
			Output:                DefaultOutput,
			Region:                DefaultRegion,
			SessionDuration:       DefaultSessionDuration,
		},
	}
}

// awsFile honours the AWS CLI environment override before falling back to ~/.aws.
func awsFile(envName, name string) string {
	if path := os.Getenv(envName); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", name)
	}
	return filepath.Join(homeDir, ".aws", name)
}
