/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: naming.go
Description: Identifier normalization for generated proto schemas. Converts arbitrary JSON
keys into proto-legal field names (snake_case) and message names (PascalCase), and derives
singular element names and default JSON names.
*/

package naming

import (
	"strings"
	"sync"

	"github.com/gertd/go-pluralize"
)

var (
	pluralizer     *pluralize.Client
	pluralizerOnce sync.Once
)

// ToSnakeCase converts a JSON key to a proto field identifier.
// Characters outside [A-Za-z0-9] become underscores, word boundaries
// (lower->Upper, ACRONYMWord) are split, runs of underscores collapse and
// a leading digit is guarded with an underscore.
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if !isAlnum(r) {
			b.WriteByte('_')
			continue
		}
		if isUpper(r) && i > 0 {
			prev := runes[i-1]
			switch {
			case isLower(prev) || isDigit(prev):
				b.WriteByte('_')
			case isUpper(prev) && i+1 < len(runes) && isLower(runes[i+1]):
				b.WriteByte('_')
			}
		}
		if isUpper(r) {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	result := collapseUnderscores(b.String())
	if result != "" && isDigit(rune(result[0])) {
		result = "_" + result
	}
	return result
}

// ToPascalCase converts a name to a proto message identifier.
// Characters outside [A-Za-z0-9_ ] are dropped; underscores and whitespace
// separate segments whose first letter is upper-cased.
func ToPascalCase(s string) string {
	var kept strings.Builder
	for _, r := range s {
		if isAlnum(r) || r == '_' || isSpace(r) {
			kept.WriteRune(r)
		}
	}

	segments := strings.FieldsFunc(kept.String(), func(r rune) bool {
		return r == '_' || isSpace(r)
	})

	var b strings.Builder
	for _, seg := range segments {
		first := rune(seg[0])
		if isLower(first) {
			first -= 'a' - 'A'
		}
		b.WriteRune(first)
		b.WriteString(seg[1:])
	}
	return b.String()
}

// Singular returns the singular form of a snake_case name, used to name the
// element message of a repeated field ("users" -> "user").
func Singular(name string) string {
	if name == "" {
		return name
	}
	pluralizerOnce.Do(func() {
		pluralizer = pluralize.NewClient()
	})
	if singular := pluralizer.Singular(name); singular != "" {
		return singular
	}
	return name
}

// JSONName returns the JSON name protoc derives for a field name: underscores
// are removed and the letter following each one is upper-cased.
func JSONName(field string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range field {
		if r == '_' {
			upperNext = true
			continue
		}
		if upperNext && isLower(r) {
			r -= 'a' - 'A'
		}
		upperNext = false
		b.WriteRune(r)
	}
	return b.String()
}

// MapEntryName returns the name of the implicit entry message protoc
// generates for a map field.
func MapEntryName(field string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range field {
		switch {
		case r == '_':
			upperNext = true
		case upperNext:
			if isLower(r) {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String() + "Entry"
}

// IsIdentifier reports whether s is a legal proto identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || isUpper(r) || isLower(r) {
			continue
		}
		if i > 0 && isDigit(r) {
			continue
		}
		return false
	}
	return true
}

func collapseUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteByte(c)
	}
	return strings.TrimRight(b.String(), "_")
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlnum(r rune) bool { return isUpper(r) || isLower(r) || isDigit(r) }
func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
