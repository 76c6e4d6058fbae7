package config

// Command-line flag names.
const (
	FlagVersion   = "version"
	FlagConfigure = "configure"

	FlagUsername      = "username"
	FlagPassword      = "password"
	FlagProfile       = "profile"
	FlagConfigFile    = "config-file"
	FlagLoglevel      = "loglevel"
	FlagLogOutputFile = "log-output-file"
	FlagNoColor       = "no-color"
	FlagQuiet         = "quiet"

	FlagAWSConfigFile            = "aws-config-file"
	FlagAWSOutput                = "aws-output"
	FlagAWSProfile               = "aws-profile"
	FlagAWSRegion                = "aws-region"
	FlagAWSRoleARN               = "aws-role-arn"
	FlagAWSSharedCredentialsFile = "aws-shared-credentials-file"
	FlagAWSSessionDuration       = "aws-session-duration"

	FlagOktaOrgURL      = "okta-org-url"
	FlagOktaAppURL      = "okta-app-url"
	FlagOktaMFAMethod   = "okta-mfa-method"
	FlagOktaMFAResponse = "okta-mfa-response"
)

// FlagBinding routes one command-line flag to a configuration key.
type FlagBinding struct {
	Flag      string
	Namespace string
	Key       string
}

// FlagBindings is the complete flag routing table.
var FlagBindings = []FlagBinding{
	{Flag: FlagUsername, Namespace: NamespaceOkta, Key: "username"},
	{Flag: FlagPassword, Namespace: NamespaceOkta, Key: "password"},
	{Flag: FlagOktaOrgURL, Namespace: NamespaceOkta, Key: "org"},
	{Flag: FlagOktaAppURL, Namespace: NamespaceOkta, Key: "app_url"},
	{Flag: FlagOktaMFAMethod, Namespace: NamespaceOkta, Key: "mfa"},
	{Flag: FlagOktaMFAResponse, Namespace: NamespaceOkta, Key: "mfa_response"},

	{Flag: FlagProfile, Namespace: NamespaceUser, Key: "config_profile"},
	{Flag: FlagConfigFile, Namespace: NamespaceUser, Key: "config_file"},
	{Flag: FlagLoglevel, Namespace: NamespaceUser, Key: "loglevel"},
	{Flag: FlagLogOutputFile, Namespace: NamespaceUser, Key: "log_output_file"},
	{Flag: FlagNoColor, Namespace: NamespaceUser, Key: "no_color"},
	{Flag: FlagQuiet, Namespace: NamespaceUser, Key: "quiet"},

	{Flag: FlagAWSConfigFile, Namespace: NamespaceAWS, Key: "config_file"},
	{Flag: FlagAWSOutput, Namespace: NamespaceAWS, Key: "output"},
	{Flag: FlagAWSProfile, Namespace: NamespaceAWS, Key: "profile"},
	{Flag: FlagAWSRegion, Namespace: NamespaceAWS, Key: "region"},
	{Flag: FlagAWSRoleARN, Namespace: NamespaceAWS, Key: "role_arn"},
	{Flag: FlagAWSSharedCredentialsFile, Namespace: NamespaceAWS, Key: "shared_credentials_file"},
	{Flag: FlagAWSSessionDuration, Namespace: NamespaceAWS, Key: "session_duration"},
}
