package config

import (
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Namespaces of the configuration schema.
const (
	NamespaceUser = "user"
	NamespaceOkta = "okta"
	NamespaceAWS  = "aws"
)

// Config is the resolved configuration of one invocation.
type Config struct {
	User UserConfig `mapstructure:"user"`
	Okta OktaConfig `mapstructure:"okta"`
	AWS  AWSConfig  `mapstructure:"aws"`
}

// UserConfig holds settings about the local user experience.
type UserConfig struct {
	ConfigDir     string `mapstructure:"config_dir"`
	ConfigFile    string `mapstructure:"config_file"`
	ConfigProfile string `mapstructure:"config_profile"`
	Encoding      string `mapstructure:"encoding"`
	Loglevel      string `mapstructure:"loglevel"`
	LogOutputFile string `mapstructure:"log_output_file"`
	NoColor       bool   `mapstructure:"no_color"`
	Quiet         bool   `mapstructure:"quiet"`
}

// OktaConfig holds identity provider settings.
type OktaConfig struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Org         string `mapstructure:"org"`
	AppURL      string `mapstructure:"app_url"`
	MFA         string `mapstructure:"mfa"`
	MFAResponse string `mapstructure:"mfa_response"`
}

// AWSConfig holds the role target and where credentials are written.
type AWSConfig struct {
	ConfigFile            string `mapstructure:"config_file"`
	SharedCredentialsFile string `mapstructure:"shared_credentials_file"`
	Output                string `mapstructure:"output"`
	Profile               string `mapstructure:"profile"`
	Region                string `mapstructure:"region"`
	RoleARN               string `mapstructure:"role_arn"`
	SessionDuration       string `mapstructure:"session_duration"`
}

// ResolvedCredential contains the result of a successful role assumption.
type ResolvedCredential struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
	AssumedRoleARN  string
	ProfileName     string
	Region          string
	Output          string
}

// Values is one configuration source mapped to namespace -> key -> value.
type Values map[string]map[string]string

// Set stores value under namespace and key.
func (v Values) Set(namespace, key, value string) {
	if v[namespace] == nil {
		v[namespace] = make(map[string]string)
	}
	v[namespace][key] = value
}

// Get returns the value stored under namespace and key.
func (v Values) Get(namespace, key string) (string, bool) {
	val, ok := v[namespace][key]
	return val, ok
}

// Overlay copies every key of src over v, namespace by namespace.
func (v Values) Overlay(src Values) error {
	for namespace, keys := range src {
		if v[namespace] == nil {
			v[namespace] = make(map[string]string, len(keys))
		}
		dst := v[namespace]
		if err := mergo.Merge(&dst, keys, mergo.WithOverride); err != nil {
			return fmt.Errorf("failed to merge configuration: %w", err)
		}
	}
	return nil
}
