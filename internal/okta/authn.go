package okta

import (
	"context"
	"fmt"
	"strings"
	"time"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/mfa"
)

// Transaction states and factor results of the authn API.
const (
	StatusSuccess       = "SUCCESS"
	StatusMFARequired   = "MFA_REQUIRED"
	StatusMFAChallenge  = "MFA_CHALLENGE"
	FactorResultWaiting = "WAITING"
)

// Credentials are the primary and second factor inputs of one login.
type Credentials struct {
	Username string
	Password string
	// MFA is the preferred factor type or factor id.
	MFA string
	// MFAResponse answers the chosen factor without prompting.
	MFAResponse string
}

type transaction struct {
	Status       string `json:"status"`
	StateToken   string `json:"stateToken,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
	FactorResult string `json:"factorResult,omitempty"`
	Embedded     struct {
		Factors []mfa.Option `json:"factors,omitempty"`
	} `json:"_embedded"`
	Links struct {
		Next *mfa.Link `json:"next,omitempty"`
	} `json:"_links"`
}

// Authenticate performs primary authentication and, when required, MFA
// verification. It returns the session token of a successful transaction.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	c.Logger.Debug("Authenticating", "org", c.BaseURL, "username", creds.Username)

	var tx transaction
	payload := map[string]string{"username": creds.Username, "password": creds.Password}
	if err := c.postJSON(ctx, c.endpoint("/api/v1/authn"), payload, &tx); err != nil {
		return "", err
	}
	c.track(&tx)

	switch tx.Status {
	case StatusSuccess:
		return c.sessionToken(&tx)
	case StatusMFARequired:
		return c.verifyFactor(ctx, &tx, creds)
	default:
		return "", fmt.Errorf("%w: authentication ended with status %s", errUtils.ErrIO, tx.Status)
	}
}

// track registers the tokens of tx as secrets.
func (c *Client) track(tx *transaction) {
	c.Registry.Add(tx.StateToken)
	c.Registry.Add(tx.SessionToken)
}

func (c *Client) sessionToken(tx *transaction) (string, error) {
	if tx.SessionToken == "" {
		return "", fmt.Errorf("%w: authentication succeeded without a session token", errUtils.ErrIO)
	}
	return tx.SessionToken, nil
}

func (c *Client) chooseFactor(tx *transaction, method string) (mfa.Option, error) {
	options := tx.Embedded.Factors

	if index, ok := mfa.Preselect(options, method); ok {
		c.Logger.Debug("Using configured MFA method", "method", method, "id", options[index].ID)
		return options[index], nil
	}
	if method != "" {
		c.Logger.Warn("Configured MFA method is not enrolled", "method", method)
	}

	index, err := mfa.Select(c.out(), c.Chooser, options)
	if err != nil {
		return mfa.Option{}, err
	}
	return options[index], nil
}

func (c *Client) verifyFactor(ctx context.Context, tx *transaction, creds Credentials) (string, error) {
	factor, err := c.chooseFactor(tx, creds.MFA)
	if err != nil {
		return "", err
	}
	if factor.Links.Verify == nil || factor.Links.Verify.Href == "" {
		return "", fmt.Errorf("%w: factor %s has no verify link", errUtils.ErrIO, factor.ID)
	}
	verifyURL := factor.Links.Verify.Href
	stateToken := tx.StateToken

	var result transaction
	switch factor.FactorType {
	case "token", "token:software:totp", "token:hardware", "token:hotp":
		code, err := c.response(creds.MFAResponse, "Enter your one-time code", false)
		if err != nil {
			return "", err
		}
		err = c.postJSON(ctx, verifyURL, map[string]string{"stateToken": stateToken, "passCode": code}, &result)
		if err != nil {
			return "", err
		}

	case "sms", "call", "email":
		var challenge transaction
		if err := c.postJSON(ctx, verifyURL, map[string]string{"stateToken": stateToken}, &challenge); err != nil {
			return "", err
		}
		c.track(&challenge)
		code, err := c.response(creds.MFAResponse, fmt.Sprintf("Enter the code sent via %s to %s", factor.FactorType, mfa.Describe(factor)), false)
		if err != nil {
			return "", err
		}
		err = c.postJSON(ctx, verifyURL, map[string]string{"stateToken": stateToken, "passCode": code}, &result)
		if err != nil {
			return "", err
		}

	case "question":
		answer, err := c.response(creds.MFAResponse, mfa.Describe(factor), true)
		if err != nil {
			return "", err
		}
		err = c.postJSON(ctx, verifyURL, map[string]string{"stateToken": stateToken, "answer": answer}, &result)
		if err != nil {
			return "", err
		}

	case "push":
		pushed, err := c.waitForPush(ctx, verifyURL, stateToken)
		if err != nil {
			return "", err
		}
		result = *pushed

	default:
		return "", fmt.Errorf("%w: MFA factor type '%s' is not supported", errUtils.ErrConfiguration, factor.FactorType)
	}

	c.track(&result)
	if result.Status != StatusSuccess {
		return "", fmt.Errorf("%w: MFA verification ended with status %s", errUtils.ErrIO, result.Status)
	}
	return c.sessionToken(&result)
}

// response returns configured, or asks the user when it is empty. The value
// is registered as a secret either way.
func (c *Client) response(configured, label string, secret bool) (string, error) {
	value := strings.TrimSpace(configured)
	for value == "" {
		if c.Prompter == nil {
			return "", fmt.Errorf("%w: MFA response not configured and no terminal to ask for one", errUtils.ErrConfiguration)
		}
		var err error
		if secret {
			value, err = c.Prompter.Password(label)
		} else {
			value, err = c.Prompter.Input(label)
		}
		if err != nil {
			return "", err
		}
		value = strings.TrimSpace(value)
	}
	c.Registry.Add(value)
	return value, nil
}

// waitForPush sends a push notification and polls until it is answered.
func (c *Client) waitForPush(ctx context.Context, verifyURL, stateToken string) (*transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.PushTimeout)
	defer cancel()

	var tx transaction
	if err := c.postJSON(ctx, verifyURL, map[string]string{"stateToken": stateToken}, &tx); err != nil {
		return nil, err
	}

	fmt.Fprintln(c.out(), "Waiting for push notification to be approved...")
	progress := NewProgressIndicator(c.out(), ProgressInterval)
	defer progress.Stop()

	for tx.Status != StatusSuccess {
		switch tx.FactorResult {
		case FactorResultWaiting:
		case "REJECTED":
			return nil, fmt.Errorf("%w: push notification was rejected", errUtils.ErrIO)
		case "TIMEOUT":
			return nil, fmt.Errorf("%w: push notification timed out", errUtils.ErrIO)
		default:
			return nil, fmt.Errorf("%w: unexpected push result '%s' with status %s", errUtils.ErrIO, tx.FactorResult, tx.Status)
		}
		if tx.Links.Next == nil || tx.Links.Next.Href == "" {
			return nil, fmt.Errorf("%w: push verification has no poll link", errUtils.ErrIO)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: gave up waiting for push approval: %w", errUtils.ErrIO, ctx.Err())
		case <-time.After(c.PollInterval):
		}

		next := tx.Links.Next.Href
		tx = transaction{}
		if err := c.postJSON(ctx, next, map[string]string{"stateToken": stateToken}, &tx); err != nil {
			return nil, err
		}
	}

	return &tx, nil
}
