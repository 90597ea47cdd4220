// Package compose fills the base layout's placeholder tokens.
package compose

import "strings"

// Placeholder tokens recognised in a base layout.
const (
	Header = "{{ header }}"
	Footer = "{{ footer }}"
	Body   = "{{ body }}"
)

// Compose replaces every occurrence of the header, footer and body tokens in
// base, in that order. Substitution is literal: values are not escaped and a
// token absent from base simply drops its value. Because the replacements run
// one after another, a token introduced by the header or footer is filled by
// a later pass.
func Compose(base, header, footer, body string) string {
	out := strings.ReplaceAll(base, Header, header)
	out = strings.ReplaceAll(out, Footer, footer)
	return strings.ReplaceAll(out, Body, body)
}

// Parts is the raw template triple loaded for a single build.
type Parts struct {
	Base   string
	Header string
	Footer string
}

// Compose renders body into the layout.
func (p Parts) Compose(body string) string {
	return Compose(p.Base, p.Header, p.Footer, body)
}
