// Package roles turns the role attributes of a SAML assertion into typed
// role bindings and picks the one to assume.
package roles

import (
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/saml"
)

var bindingPattern = regexp.MustCompile(`>(arn:aws:iam::.*?,arn:aws:iam::.*?)<`)

const (
	roleResourcePrefix     = "role/"
	providerResourcePrefix = "saml-provider/"
)

// Binding is one assumable role together with the SAML provider that
// vouches for it.
type Binding struct {
	Role     arn.ARN
	Provider arn.ARN
}

// RoleARN returns the role ARN as a string.
func (b Binding) RoleARN() string { return b.Role.String() }

// ProviderARN returns the SAML provider ARN as a string.
func (b Binding) ProviderARN() string { return b.Provider.String() }

// AccountID returns the account that owns the role.
func (b Binding) AccountID() string { return b.Role.AccountID }

// Name returns the last path segment of the role, e.g. "Admin" for
// arn:aws:iam::123456789012:role/path/Admin.
func (b Binding) Name() string {
	resource := b.Role.Resource
	if i := strings.LastIndex(resource, "/"); i >= 0 {
		return resource[i+1:]
	}
	return resource
}

// App is one AWS app tile and everything read from its SAML page.
type App struct {
	URL       string
	Label     string
	Page      string
	Assertion *saml.Assertion
	Bindings  []Binding
}

// ExtractBindings finds the comma-joined role/provider ARN pairs in an
// assertion. The two ARNs of a pair are told apart by resource type, so
// either order is accepted. Duplicate roles collapse onto their first
// occurrence.
func ExtractBindings(assertionXML string) ([]Binding, error) {
	var bindings []Binding
	seen := make(map[string]struct{})

	for _, match := range bindingPattern.FindAllStringSubmatch(assertionXML, -1) {
		binding, ok := parsePair(match[1])
		if !ok {
			continue
		}
		if _, dup := seen[binding.RoleARN()]; dup {
			continue
		}
		seen[binding.RoleARN()] = struct{}{}
		bindings = append(bindings, binding)
	}

	if len(bindings) == 0 {
		return nil, errUtils.ErrNoRolesFound
	}
	return bindings, nil
}

func parsePair(pair string) (Binding, bool) {
	parts := strings.Split(pair, ",")
	if len(parts) != 2 {
		return Binding{}, false
	}

	var (
		b                      Binding
		haveRole, haveProvider bool
	)
	for _, part := range parts {
		parsed, err := arn.Parse(strings.TrimSpace(part))
		if err != nil {
			return Binding{}, false
		}
		switch {
		case strings.HasPrefix(parsed.Resource, roleResourcePrefix):
			b.Role, haveRole = parsed, true
		case strings.HasPrefix(parsed.Resource, providerResourcePrefix):
			b.Provider, haveProvider = parsed, true
		}
	}
	return b, haveRole && haveProvider
}
