package session

import (
	"errors"
	"io"

	"golang.org/x/net/html"
)

// ExtractCSRFToken scans an HTML document for the first
// <meta name="csrf-token" data-token="..."> tag and returns its token.
// It returns "" when no such tag exists.
func ExtractCSRFToken(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", nil
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "meta" {
				continue
			}
			if token, ok := csrfToken(tok.Attr); ok {
				return token, nil
			}
		}
	}
}

func csrfToken(attrs []html.Attribute) (string, bool) {
	var isCSRF bool
	var token string
	var hasToken bool
	for _, a := range attrs {
		switch a.Key {
		case "name":
			isCSRF = a.Val == "csrf-token"
		case "data-token":
			token, hasToken = a.Val, true
		}
	}
	return token, isCSRF && hasToken
}
