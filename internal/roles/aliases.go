package roles

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

const accountMarker = "Account:"

// AliasLookup reads account aliases from the AWS sign-in role picker.
type AliasLookup struct {
	Client *http.Client
	Logger *log.Logger
}

// ResolveAliases posts the assertion of app to the form target of its SAML
// page and maps account ids to the aliases listed on the result. It returns
// nil when the page carries no account labels; only transport failures are
// errors.
func (l *AliasLookup) ResolveAliases(ctx context.Context, app App) (map[string]string, error) {
	action, ok := formAction(app.Page)
	if !ok || app.Assertion == nil {
		l.Logger.Debug("No SAML form target, using account ids", "app", app.URL)
		return nil, nil
	}

	form := url.Values{"SAMLResponse": {app.Assertion.Encoded}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: could not build account alias request: %w", errUtils.ErrIO, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := l.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error retrieving the AWS SAML page: %w", errUtils.ErrIO, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read the AWS SAML page: %w", errUtils.ErrIO, err)
	}

	aliases := ParseAliases(accountLabels(doc))
	if aliases == nil {
		l.Logger.Debug("No labels found", "status", resp.StatusCode)
	}
	return aliases, nil
}

func (l *AliasLookup) client() *http.Client {
	if l.Client == nil {
		return http.DefaultClient
	}
	return l.Client
}

// accountLabels returns the text nodes of doc that carry the account marker.
// Each node is kept apart so labels rendered on one line stay separate.
func accountLabels(doc *goquery.Document) []string {
	var labels []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		if node.Type == html.TextNode && strings.Contains(node.Data, accountMarker) {
			labels = append(labels, node.Data)
		}
	})
	return labels
}

// ParseAliases reads "Account: <alias> (<id>)" entries from labels. It
// returns nil when no label carries the marker.
func ParseAliases(labels []string) map[string]string {
	var aliases map[string]string

	for _, label := range labels {
		for _, entry := range strings.Split(label, accountMarker)[1:] {
			fields := strings.Fields(entry)
			if len(fields) == 0 {
				continue
			}
			id := strings.Trim(fields[len(fields)-1], "()")
			alias := fields[0]
			if len(fields) == 1 {
				alias = id
			}
			if aliases == nil {
				aliases = make(map[string]string)
			}
			aliases[id] = alias
		}
	}

	return aliases
}

// formAction returns the action of the first form on page.
func formAction(page string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	action, ok := doc.Find("form").First().Attr("action")
	if !ok || action == "" {
		return "", false
	}
	return action, true
}
