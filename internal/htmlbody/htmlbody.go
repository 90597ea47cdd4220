// Package htmlbody isolates the inner markup of an HTML document's <body>.
//
// Markdown editors usually export complete documents (doctype, head, styles).
// Only the body content is embedded into the site's base layout, so the
// document is parsed with the HTML5 tree construction algorithm, which
// recovers from malformed markup the way a browser does, and the children of
// <body> are rendered back to HTML.
package htmlbody

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Extract returns the serialized children of the first <body> element in doc.
// Bare fragments are wrapped in an implied body by the parser and come back
// unchanged. A document without any body element (a frameset) yields "".
func Extract(doc string) (string, error) {
	return ExtractReader(strings.NewReader(doc))
}

// ExtractReader is the streaming form of Extract.
func ExtractReader(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	body := FindBody(doc)
	if body == nil {
		return "", nil
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render body content: %w", err)
		}
	}
	return buf.String(), nil
}

// FindBody returns the first <body> element in document order, or nil.
func FindBody(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindBody(c); found != nil {
			return found
		}
	}
	return nil
}
