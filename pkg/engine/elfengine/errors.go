package elfengine

import "errors"

// Static errors for typed failure conditions.
var (
	// ErrNotELF indicates the file is not an ELF binary.
	ErrNotELF = errors.New("not an ELF binary")

	// ErrNoSymbols indicates the binary carries neither a symbol table
	// nor a dynamic symbol table, so no functions can be enumerated.
	ErrNoSymbols = errors.New("no symbol table in binary")

	// ErrUnsupportedMachine indicates the binary targets an architecture
	// the call-site scanner does not decode.
	ErrUnsupportedMachine = errors.New("unsupported machine architecture")
)
