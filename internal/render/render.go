// Package render substitutes {{placeholder}} tokens in stored email
// templates with caller-supplied values.
//
// Substitution is literal string replacement, not expression
// evaluation. Tokens with no matching key in the input map are left
// verbatim, and values are inserted without HTML escaping. Both
// behaviors are intentional and preserved from the admin screens that
// author the templates; callers injecting user-supplied values into an
// HTML body are responsible for pre-escaping them.
package render

import (
	"strings"

	"github.com/billgix/billgix/internal/db/models"
)

// Render replaces every {{name}} occurrence in subject and body with
// the matching value from vars. Output is deterministic: the same
// inputs always produce byte-identical output.
func Render(subject, body string, vars map[string]string) (string, string) {
	return expand(subject, vars), expand(body, vars)
}

// expand walks the input left to right, replacing each {{name}} token
// whose name appears in vars. Inserted values are not rescanned, so a
// value containing a token is emitted as-is. The single pass keeps the
// result independent of map iteration order.
func expand(s string, vars map[string]string) string {
	var out strings.Builder

	for {
		open := strings.Index(s, "{{")
		if open < 0 {
			break
		}

		end := strings.Index(s[open:], "}}")
		if end < 0 {
			break
		}

		value, ok := vars[s[open+2:open+end]]
		if !ok {
			// No matching variable. Step one character past the
			// opening brace so overlapping candidates like
			// "{{{name}}" are still found.
			out.WriteString(s[:open+1])
			s = s[open+1:]
			continue
		}

		out.WriteString(s[:open])
		out.WriteString(value)
		s = s[open+end+2:]
	}

	out.WriteString(s)

	return out.String()
}

// Template renders a stored template record with the given variables.
func Template(tmpl *models.EmailTemplate, vars map[string]string) (string, string) {
	return Render(tmpl.Subject, tmpl.Body, vars)
}
