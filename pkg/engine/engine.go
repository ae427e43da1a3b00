// Package engine defines the narrow capability interface the xref builder
// needs from a binary analysis backend. Keeping the surface this small lets
// the core pipeline run against a fake engine in tests and keeps backends
// (ELF today, other container formats later) interchangeable.
package engine

import "fmt"

// Engine exposes read-only queries over one static snapshot of one
// binary's analysis database. Implementations are not required to be
// safe for concurrent use; the builder runs a single sequential pass.
type Engine interface {
	// Functions returns the entry addresses of all function entities in
	// the binary, in the backend's native enumeration order.
	Functions() []uint64

	// IsCode reports whether the address lies inside executable code.
	IsCode(addr uint64) bool

	// RawSymbol returns the raw (mangled) symbol at the address, if any.
	RawSymbol(addr uint64) (string, bool)

	// Demangle recovers a human-readable signature from a raw symbol.
	// The demangling convention is fixed per run at engine construction.
	// Not every symbol is demangleable; absence is not an error.
	Demangle(raw string) (string, bool)

	// CodeReferencesTo returns the origin addresses of all references to
	// the target address, code and data origins alike. Callers are
	// expected to filter with IsCode.
	CodeReferencesTo(addr uint64) []uint64

	// EnclosingSymbol returns the raw symbol of the function containing
	// the address, if the address falls inside a known function.
	EnclosingSymbol(addr uint64) (string, bool)
}

// ABI selects the demangling convention applied to raw symbols.
type ABI string

// Supported demangling conventions.
const (
	// ABIItanium demangles Itanium C++ ABI symbols (_Z...).
	ABIItanium ABI = "itanium"

	// ABIRust demangles Rust symbols (_R... and legacy _ZN...$ forms).
	ABIRust ABI = "rust"

	// ABIAuto tries the conventions above in order.
	ABIAuto ABI = "auto"
)

// ParseABI validates an ABI selector string from configuration.
func ParseABI(s string) (ABI, error) {
	switch ABI(s) {
	case ABIItanium, ABIRust, ABIAuto:
		return ABI(s), nil
	default:
		return "", fmt.Errorf("unsupported demangler ABI: %q (supported: itanium, rust, auto)", s)
	}
}
