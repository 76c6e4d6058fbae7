package roles

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
	"github.com/fitbeard/okta-assume/internal/saml"
)

const (
	roleA     = "arn:aws:iam::111111111111:role/Admin"
	providerX = "arn:aws:iam::111111111111:saml-provider/OktaX"
	roleB     = "arn:aws:iam::222222222222:role/ReadOnly"
	providerY = "arn:aws:iam::222222222222:saml-provider/OktaY"
	roleC     = "arn:aws:iam::333333333333:role/team/Admin"
	providerZ = "arn:aws:iam::333333333333:saml-provider/OktaZ"
)

func attribute(pairs ...string) string {
	xml := `<saml2:Attribute Name="https://aws.amazon.com/SAML/Attributes/Role">`
	for _, p := range pairs {
		xml += "<saml2:AttributeValue>" + p + "</saml2:AttributeValue>"
	}
	return xml + "</saml2:Attribute>"
}

func mustBinding(t *testing.T, role, provider string) Binding {
	t.Helper()
	r, err := arn.Parse(role)
	require.NoError(t, err)
	p, err := arn.Parse(provider)
	require.NoError(t, err)
	return Binding{Role: r, Provider: p}
}

func TestExtractBindings(t *testing.T) {
	xml := attribute(
		providerX+","+roleA,
		roleB+","+providerY, // role first
		providerX+","+roleA, // duplicate
	)

	got, err := ExtractBindings(xml)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, roleA, got[0].RoleARN())
	assert.Equal(t, providerX, got[0].ProviderARN())
	assert.Equal(t, "Admin", got[0].Name())
	assert.Equal(t, "111111111111", got[0].AccountID())

	assert.Equal(t, roleB, got[1].RoleARN())
	assert.Equal(t, providerY, got[1].ProviderARN())
}

func TestExtractBindingsNone(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{name: "empty", xml: ""},
		{name: "no pairs", xml: "<saml2:Assertion/>"},
		{name: "two roles", xml: attribute(roleA + "," + roleB)},
		{name: "malformed", xml: attribute("arn:aws:iam::nope,arn:aws:iam::")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractBindings(tt.xml)
			require.ErrorIs(t, err, errUtils.ErrNoRolesFound)
			assert.Equal(t, errUtils.ExitUsage, errUtils.ExitCode(err))
		})
	}
}

func TestBindingNameWithPath(t *testing.T) {
	b := mustBinding(t, roleC, providerZ)
	assert.Equal(t, "Admin", b.Name())
}

func TestParseAliases(t *testing.T) {
	labels := []string{
		"\n  Account: prod-account (111111111111)\n  ",
		"Account: 222222222222",
	}

	got := ParseAliases(labels)
	assert.Equal(t, map[string]string{
		"111111111111": "prod-account",
		"222222222222": "222222222222",
	}, got)

	assert.Nil(t, ParseAliases([]string{"Sign in to AWS"}))
	assert.Nil(t, ParseAliases(nil))
}

func TestResolveAliases(t *testing.T) {
	var gotSAML string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotSAML = r.PostForm.Get("SAMLResponse")
		fmt.Fprint(w, `<html><body><fieldset>
<div class="saml-account-name">Account: prod-account (111111111111)</div>
<div class="saml-role">Admin</div>
<div class="saml-account-name">Account: dev-account (222222222222)</div>
</fieldset></body></html>`)
	}))
	defer server.Close()

	app := App{
		URL:       "https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/123",
		Page:      `<form method="POST" action="` + server.URL + `/saml"><input name="SAMLResponse" value="x"/></form>`,
		Assertion: &saml.Assertion{Encoded: "PHhtbC8+", XML: "<xml/>"},
	}

	lookup := &AliasLookup{Client: server.Client(), Logger: log.New(io.Discard)}
	got, err := lookup.ResolveAliases(context.Background(), app)
	require.NoError(t, err)

	assert.Equal(t, "PHhtbC8+", gotSAML)
	assert.Equal(t, map[string]string{
		"111111111111": "prod-account",
		"222222222222": "dev-account",
	}, got)
}

func TestResolveAliasesSingleLineMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div>Account: prod (111111111111)</div><div>Account: dev (222222222222)</div></body></html>`)
	}))
	defer server.Close()

	lookup := &AliasLookup{Client: server.Client(), Logger: log.New(io.Discard)}
	got, err := lookup.ResolveAliases(context.Background(), App{
		Page:      `<form action="` + server.URL + `"></form>`,
		Assertion: &saml.Assertion{Encoded: "PHhtbC8+"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"111111111111": "prod",
		"222222222222": "dev",
	}, got)
}

func TestResolveAliasesDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Something else entirely</body></html>`)
	}))
	defer server.Close()

	lookup := &AliasLookup{Client: server.Client(), Logger: log.New(io.Discard)}

	got, err := lookup.ResolveAliases(context.Background(), App{
		Page:      `<form action="` + server.URL + `"></form>`,
		Assertion: &saml.Assertion{Encoded: "PHhtbC8+"},
	})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = lookup.ResolveAliases(context.Background(), App{Page: "<html>no form</html>"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveAliasesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	lookup := &AliasLookup{Logger: log.New(io.Discard)}
	_, err := lookup.ResolveAliases(context.Background(), App{
		Page:      `<form action="` + url + `"></form>`,
		Assertion: &saml.Assertion{Encoded: "PHhtbC8+"},
	})
	require.ErrorIs(t, err, errUtils.ErrIO)
	assert.Equal(t, errUtils.ExitInternal, errUtils.ExitCode(err))
}

type fixedChooser struct {
	choice int
	calls  int
	count  int
}

func (c *fixedChooser) Choose(_ string, count int) (int, error) {
	c.calls++
	c.count = count
	return c.choice, nil
}

type staticAliases map[string]map[string]string

func (s staticAliases) ResolveAliases(_ context.Context, app App) (map[string]string, error) {
	return s[app.URL], nil
}

func testApps(t *testing.T) []App {
	return []App{
		{
			URL:      "https://acme.okta.com/home/amazon_aws/BBBBBBBBBBBBBBBBBBBB/222",
			Label:    "AWS Prod",
			Bindings: []Binding{mustBinding(t, roleB, providerY), mustBinding(t, roleC, providerZ)},
		},
		{
			URL:      "https://acme.okta.com/home/amazon_aws/AAAAAAAAAAAAAAAAAAAA/111",
			Label:    "AWS Dev",
			Bindings: []Binding{mustBinding(t, roleA, providerX)},
		},
	}
}

func newSelector(c Chooser, aliases AliasResolver) *Selector {
	return &Selector{Aliases: aliases, Chooser: c, Out: io.Discard, Logger: log.New(io.Discard)}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		alias    string
		roleARN  string
		wantRole string
		wantErr  error
	}{
		{name: "unique alias", alias: "ReadOnly", wantRole: roleB},
		{name: "ambiguous alias", alias: "Admin", wantErr: errUtils.ErrAmbiguousRole},
		{name: "ambiguous alias with role arn", alias: "Admin", roleARN: roleA, wantErr: errUtils.ErrAmbiguity},
		{name: "role arn", roleARN: roleB, wantRole: roleB},
		{name: "alias misses, role arn hits", alias: "default", roleARN: roleA, wantRole: roleA},
		{name: "unknown role arn", roleARN: "arn:aws:iam::999999999999:role/Nope", wantErr: errUtils.ErrRoleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chooser := &fixedChooser{}
			got, err := newSelector(chooser, nil).Select(context.Background(), testApps(t), tt.alias, tt.roleARN)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, errUtils.ExitUsage, errUtils.ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Binding.RoleARN())
			assert.Zero(t, chooser.calls)
		})
	}
}

func TestSelectDeterministic(t *testing.T) {
	s := newSelector(nil, nil)
	first, err := s.Select(context.Background(), testApps(t), "ReadOnly", "")
	require.NoError(t, err)
	for range 5 {
		again, err := s.Select(context.Background(), testApps(t), "ReadOnly", "")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSelectSameRoleThroughTwoApps(t *testing.T) {
	apps := testApps(t)
	apps[1].Bindings = append(apps[1].Bindings, mustBinding(t, roleB, providerY))

	got, err := newSelector(nil, nil).Select(context.Background(), apps, "ReadOnly", "")
	require.NoError(t, err)
	assert.Equal(t, roleB, got.Binding.RoleARN())
}

func TestSelectInteractive(t *testing.T) {
	aliases := staticAliases{
		"https://acme.okta.com/home/amazon_aws/BBBBBBBBBBBBBBBBBBBB/222": {"222222222222": "prod"},
	}
	var out bytes.Buffer
	chooser := &fixedChooser{choice: 1}
	s := newSelector(chooser, aliases)
	s.Out = &out

	got, err := s.Select(context.Background(), testApps(t), "", "")
	require.NoError(t, err)

	// Sorted rows: AWS Dev/111111111111, AWS Prod/333333333333, AWS Prod/prod
	assert.Equal(t, roleC, got.Binding.RoleARN())
	assert.Equal(t, "AWS Prod", got.App.Label)
	assert.Equal(t, 3, chooser.count)
	assert.Contains(t, out.String(), "AWS Dev:")
	assert.Contains(t, out.String(), "[2]")
}

func TestSelectInteractiveWithoutTerminal(t *testing.T) {
	_, err := newSelector(nil, nil).Select(context.Background(), testApps(t), "", "")
	require.ErrorIs(t, err, errUtils.ErrConfiguration)
}

func TestRows(t *testing.T) {
	rows := Rows(testApps(t), nil)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"AWS Dev", "AWS Prod", "AWS Prod"}, []string{rows[0].Label, rows[1].Label, rows[2].Label})
	assert.Equal(t, []string{"111111111111", "222222222222", "333333333333"},
		[]string{rows[0].Account, rows[1].Account, rows[2].Account})
}

func TestRenderRowsNumbersGlobally(t *testing.T) {
	var out bytes.Buffer
	RenderRows(&out, Rows(testApps(t), nil))

	text := out.String()
	assert.Contains(t, text, "[0]")
	assert.Contains(t, text, "[1]")
	assert.Contains(t, text, "[2]")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("AWS Prod:")))
}
