// Package names converts declared Go identifiers into GraphQL names.
package names

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hanpama/fieldgraph/internal/field"
)

// Converter derives public names. Explicit public names are always kept.
type Converter struct {
	AutoCamelCase bool
}

// Default converts names to camel case.
var Default = Converter{AutoCamelCase: true}

// Field returns the GraphQL name of f.
func (c Converter) Field(f *field.Field) string {
	if f.PublicName != "" {
		return f.PublicName
	}
	return c.Apply(f.Name)
}

// Argument returns the GraphQL name of an argument.
func (c Converter) Argument(a *field.Argument) string {
	return c.Apply(a.Name)
}

// Apply converts name when auto camel case is enabled.
func (c Converter) Apply(name string) string {
	if !c.AutoCamelCase {
		return name
	}
	return ToCamelCase(name)
}

// ToCamelCase turns Go and snake case identifiers into lower camel case:
// "Title" becomes "title", "URLPath" becomes "urlPath" and "created_at"
// becomes "createdAt". Leading underscores are kept.
func ToCamelCase(name string) string {
	trimmed := strings.TrimLeft(name, "_")
	prefix := name[:len(name)-len(trimmed)]

	parts := strings.Split(trimmed, "_")
	var b strings.Builder
	b.WriteString(prefix)
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(lowerInitialism(p))
			first = false
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(p[size:])
	}
	return b.String()
}

// lowerInitialism lowercases the leading run of upper case letters. When
// the run is followed by a lower case letter its last letter starts the
// next word and stays upper case.
func lowerInitialism(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
