package xref

import (
	"strings"

	"github.com/smith-xyz/binary-xref-generator/pkg/config"
)

// Filter decides whether a canonical name belongs to application code.
// Two independent rejection rules: a configured set of framework/runtime
// namespace prefixes, and a configured set of compiler-artifact substring
// markers. A name is accepted only when neither rule fires. The same
// filter is applied to target functions and to every caller.
type Filter struct {
	prefixes []string
	markers  []string
}

// NewFilter builds a filter from the configured rejection lists.
func NewFilter(filters config.FilterConfig) *Filter {
	return &Filter{
		prefixes: filters.NamespacePrefixes,
		markers:  filters.SubstringMarkers,
	}
}

// IsApplicationCode reports whether the canonical name survives both
// rejection rules.
func (f *Filter) IsApplicationCode(name string) bool {
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	for _, marker := range f.markers {
		if strings.Contains(name, marker) {
			return false
		}
	}
	return true
}
