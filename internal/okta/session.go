package okta

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/samber/lo"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

// AppLink is an AWS app tile assigned to the user.
type AppLink struct {
	URL   string
	Label string
}

type session struct {
	ID string `json:"id"`
}

type homeTab struct {
	Embedded struct {
		Items []struct {
			Embedded struct {
				Resource struct {
					LinkURL string `json:"linkUrl"`
					Label   string `json:"label"`
				} `json:"resource"`
			} `json:"_embedded"`
		} `json:"items"`
	} `json:"_embedded"`
}

// CreateSession exchanges a session token for an Okta session. The session
// id is kept as the sid cookie for later requests.
func (c *Client) CreateSession(ctx context.Context, sessionToken string) error {
	var s session
	if err := c.postJSON(ctx, c.endpoint("/api/v1/sessions"), map[string]string{"sessionToken": sessionToken}, &s); err != nil {
		return err
	}
	if s.ID == "" {
		return fmt.Errorf("%w: session response carries no id", errUtils.ErrIO)
	}
	c.Registry.Add(s.ID)

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid org URL %s: %w", errUtils.ErrConfiguration, c.BaseURL, err)
	}
	if c.HTTP.Jar == nil {
		c.HTTP.Jar, _ = cookiejar.New(nil)
	}
	c.HTTP.Jar.SetCookies(base, []*http.Cookie{{Name: "sid", Value: s.ID, Path: "/"}})

	c.Logger.Debug("Session created")
	return nil
}

// DiscoverApps lists the AWS app tiles on the user's dashboard.
func (c *Client) DiscoverApps(ctx context.Context) ([]AppLink, error) {
	query := url.Values{
		"type":   {"all"},
		"expand": {"items", "items.resource"},
	}
	c.Logger.Debug("Performing auto-discovery", "url", c.endpoint("/api/v1/users/me/home/tabs"))

	var tabs []homeTab
	if err := c.getJSON(ctx, c.endpoint("/api/v1/users/me/home/tabs"), query, &tabs); err != nil {
		return nil, err
	}

	var apps []AppLink
	for _, tab := range tabs {
		for _, item := range tab.Embedded.Items {
			resource := item.Embedded.Resource
			if strings.Contains(resource.LinkURL, "amazon_aws") {
				apps = append(apps, AppLink{URL: resource.LinkURL, Label: resource.Label})
			}
		}
	}
	apps = lo.UniqBy(apps, func(a AppLink) string { return a.URL })

	if len(apps) == 0 {
		return nil, fmt.Errorf("%w: please set the app URL and try again", errUtils.ErrAppURLNotFound)
	}
	c.Logger.Debug("Discovered AWS apps", "count", len(apps))
	return apps, nil
}

// FetchSAMLPage loads an app tile with the session cookies and returns the
// HTML page that carries its SAML response.
func (c *Client) FetchSAMLPage(ctx context.Context, appURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, appURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: could not build request for %s: %w", errUtils.ErrIO, appURL, err)
	}
	req.Header.Set("Accept", "text/html")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
