package sts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/fitbeard/okta-assume/internal/config"
	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/redact"
	"github.com/fitbeard/okta-assume/pkg/duration"
)

// Request describes one AssumeRoleWithSAML call.
type Request struct {
	Region       string
	RoleARN      string
	PrincipalARN string
	// SAMLAssertion is the base64 encoded SAML response.
	SAMLAssertion string
	Duration      time.Duration
}

// Client assumes roles through AWS STS.
type Client struct {
	// HTTPClient overrides the SDK transport when set.
	HTTPClient aws.HTTPClient
	// BaseEndpoint overrides the regional STS endpoint when set.
	BaseEndpoint string
	Registry     *redact.Registry
}

// AssumeRoleWithSAML exchanges a SAML assertion for temporary credentials.
// The call is unsigned; the assertion is the only proof of identity.
func (c *Client) AssumeRoleWithSAML(ctx context.Context, req Request) (*config.ResolvedCredential, error) {
	// Create STS client with anonymous credentials
	cfg := aws.Config{
		Credentials: aws.AnonymousCredentials{},
		Region:      req.Region,
	}
	if c.HTTPClient != nil {
		cfg.HTTPClient = c.HTTPClient
	}

	stsClient := sts.NewFromConfig(cfg, func(o *sts.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
	})

	input := &sts.AssumeRoleWithSAMLInput{
		RoleArn:       aws.String(req.RoleARN),
		PrincipalArn:  aws.String(req.PrincipalARN),
		SAMLAssertion: aws.String(req.SAMLAssertion),
	}
	if req.Duration > 0 {
		input.DurationSeconds = aws.Int32(duration.Seconds(req.Duration))
	}

	result, err := stsClient.AssumeRoleWithSAML(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrIO, formatSTSError(err, req.Region, req.RoleARN))
	}
	if result.Credentials == nil {
		return nil, fmt.Errorf("%w: STS returned no credentials for '%s'", errUtils.ErrIO, req.RoleARN)
	}

	creds := result.Credentials
	if c.Registry != nil {
		c.Registry.Add(aws.ToString(creds.SecretAccessKey))
		c.Registry.Add(aws.ToString(creds.SessionToken))
	}

	// Extract assumed role user ARN (contains session name)
	var assumedRoleARN string
	if result.AssumedRoleUser != nil {
		assumedRoleARN = aws.ToString(result.AssumedRoleUser.Arn)
	}

	return &config.ResolvedCredential{
		AccessKeyID:     aws.ToString(creds.AccessKeyId),
		SecretAccessKey: aws.ToString(creds.SecretAccessKey),
		SessionToken:    aws.ToString(creds.SessionToken),
		Expiration:      aws.ToTime(creds.Expiration),
		AssumedRoleARN:  assumedRoleARN,
		Region:          req.Region,
	}, nil
}

// formatSTSError converts AWS SDK errors into user-friendly error messages
func formatSTSError(err error, region, roleARN string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		message := apiErr.ErrorMessage()

		switch code {
		case "AccessDenied":
			return fmt.Errorf("access denied: cannot assume role '%s' - "+
				"the role trust policy does not allow this SAML provider or user", roleARN)
		case "InvalidIdentityToken":
			return fmt.Errorf("invalid identity token: the SAML provider metadata does not match the assertion signature")
		case "ExpiredTokenException":
			return fmt.Errorf("expired assertion: the SAML assertion is no longer valid - run the command again")
		case "IDPRejectedClaim":
			return fmt.Errorf("claim rejected: the identity provider rejected the assertion for role '%s'", roleARN)
		case "ValidationError":
			if strings.Contains(message, "DurationSeconds") {
				return fmt.Errorf("invalid session duration: %s - lower the session duration or raise the role's maximum", message)
			}
			return fmt.Errorf("invalid request: %s", message)
		case "PackedPolicyTooLarge":
			return fmt.Errorf("policy too large: the session policy exceeds the maximum allowed size")
		case "MalformedPolicyDocument":
			return fmt.Errorf("malformed policy: the role '%s' has an invalid trust policy document", roleARN)
		case "RegionDisabledException":
			return fmt.Errorf("region disabled: STS is not activated in region '%s' for this account", region)
		default:
			if message != "" {
				return fmt.Errorf("STS error [%s]: %s", code, message)
			}
			return fmt.Errorf("STS error [%s]: assume role failed for '%s'", code, roleARN)
		}
	}

	// Check for connection/network errors
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return fmt.Errorf("connection refused: cannot connect to STS in region '%s'", region)
	}
	if strings.Contains(errStr, "no such host") {
		return fmt.Errorf("unknown host: cannot resolve the STS endpoint for region '%s'", region)
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return fmt.Errorf("connection timeout: STS in region '%s' did not respond in time - check network connectivity", region)
	}

	return fmt.Errorf("failed to assume role '%s' in region '%s': %w", roleARN, region, err)
}
