package xref

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tryGetArrayPattern recognizes the TryGet*Array method naming convention
// whose array-by-reference return types the demangler renders ambiguously.
var tryGetArrayPattern = regexp.MustCompile(`TryGet.*Array`)

// arrayRefPlaceholder temporarily protects already-disambiguated markers
// so re-normalizing a canonical name is a no-op. The byte never occurs in
// demangled symbols.
const arrayRefPlaceholder = "\x00"

// Normalize turns a demangled symbol into its canonical form:
//
//  1. Drop a leading return type: everything up to and including the last
//     whitespace before the first "::" is removed, leaving the namespace
//     path intact.
//  2. Disambiguate array-by-reference returns for TryGet*Array methods by
//     rewriting "&" as "[]&".
//  3. Remove all remaining whitespace.
//
// Normalize is deterministic and idempotent, and its output contains no
// whitespace. Empty and short inputs pass through the same steps safely.
func Normalize(name string) string {
	if colon := strings.Index(name, "::"); colon != -1 {
		prefix := name[:colon]
		if space := strings.LastIndexFunc(prefix, unicode.IsSpace); space != -1 {
			_, size := utf8.DecodeRuneInString(name[space:])
			name = name[space+size:]
		}
	}

	if tryGetArrayPattern.MatchString(name) {
		name = strings.ReplaceAll(name, "[]&", arrayRefPlaceholder)
		name = strings.ReplaceAll(name, "&", "[]&")
		name = strings.ReplaceAll(name, arrayRefPlaceholder, "[]&")
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}
