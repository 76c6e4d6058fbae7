// Package saml extracts the SAML assertion Okta embeds in the HTML page of
// an AWS app tile.
package saml

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	errUtils "github.com/fitbeard/okta-assume/internal/errors"
)

const responseSelector = `input[name="SAMLResponse"]`

// Assertion is a decoded SAML response.
type Assertion struct {
	// Encoded is the base64 value as posted by the page, with whitespace removed.
	Encoded string
	// XML is the decoded assertion document.
	XML string
}

// ExtractAssertion finds every SAMLResponse input in page and returns the
// last one. Providers sometimes render template fields before the real one.
func ExtractAssertion(page string) (*Assertion, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse SAML page: %w", errUtils.ErrAssertion, err)
	}

	var (
		found     *Assertion
		decodeErr error
	)
	doc.Find(responseSelector).Each(func(_ int, s *goquery.Selection) {
		value, ok := s.Attr("value")
		if !ok {
			return
		}
		assertion, err := Decode(value)
		if err != nil {
			decodeErr = err
			found = nil
			return
		}
		decodeErr = nil
		found = assertion
	})

	if decodeErr != nil {
		return nil, decodeErr
	}
	if found == nil {
		return nil, errUtils.ErrAssertionNotFound
	}
	return found, nil
}

// Decode base64-decodes a SAMLResponse value into UTF-8 XML. Embedded line
// breaks and spaces are ignored.
func Decode(value string) (*Assertion, error) {
	encoded := strings.Join(strings.Fields(value), "")

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: SAMLResponse is not valid base64: %w", errUtils.ErrAssertion, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: SAMLResponse is not valid UTF-8", errUtils.ErrAssertion)
	}

	return &Assertion{Encoded: encoded, XML: string(raw)}, nil
}

// Encode returns the base64 form of an assertion document.
func Encode(xml string) string {
	return base64.StdEncoding.EncodeToString([]byte(xml))
}
