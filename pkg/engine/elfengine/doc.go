// Package elfengine is the ELF-backed implementation of the analysis
// engine interface. It parses the binary once with debug/elf, indexes
// function symbols by address range, scans executable sections for
// statically resolvable call sites with golang.org/x/arch, and demangles
// raw symbols with github.com/ianlancetaylor/demangle. Indirect and
// virtual calls are not resolved.
package elfengine
