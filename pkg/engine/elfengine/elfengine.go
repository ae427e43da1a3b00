package elfengine

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/smith-xyz/binary-xref-generator/pkg/engine"
)

// elfMagic is the ELF magic number bytes.
var elfMagic = []byte("\x7fELF")

// addrRange is a half-open virtual address range [Start, End).
type addrRange struct {
	Start uint64
	End   uint64
}

func (r addrRange) contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End
}

// StandardEngine implements engine.Engine for ELF binaries using Go's
// debug/elf package for container parsing and golang.org/x/arch for
// call-site scanning. The whole analysis snapshot is computed once in
// Open; all queries afterwards are in-memory lookups.
type StandardEngine struct {
	logger     *slog.Logger
	demangler  *demangler
	functions  []uint64
	symbols    map[uint64]string
	index      *symbolIndex
	codeRanges []addrRange
	refs       map[uint64][]uint64
}

// Open parses the ELF binary at path and builds the analysis snapshot.
// abi fixes the demangling convention for the run. A nil logger falls
// back to slog.Default().
func Open(path string, abi engine.ABI, logger *slog.Logger) (*StandardEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open binary %s: %w", path, err)
	}
	defer f.Close()

	magic := make([]byte, len(elfMagic))
	if _, err := io.ReadFull(f, magic); err != nil || !bytes.Equal(magic, elfMagic) {
		return nil, fmt.Errorf("%w: %s", ErrNotELF, path)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file %s: %w", path, err)
	}

	syms, err := loadSymbols(ef)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	eng := &StandardEngine{
		logger:    logger,
		demangler: newDemangler(abi),
		symbols:   make(map[uint64]string),
		refs:      make(map[uint64][]uint64),
	}

	var ranges []symbolRange
	for _, sym := range syms {
		if elf.ST_TYPE(sym.Info) != elf.STT_FUNC || sym.Name == "" || sym.Value == 0 {
			continue
		}
		if _, seen := eng.symbols[sym.Value]; !seen {
			eng.functions = append(eng.functions, sym.Value)
		}
		eng.symbols[sym.Value] = sym.Name
		ranges = append(ranges, symbolRange{
			Name:  sym.Name,
			Start: sym.Value,
			End:   sym.Value + sym.Size,
		})
	}
	sort.Slice(eng.functions, func(i, j int) bool { return eng.functions[i] < eng.functions[j] })
	eng.index = newSymbolIndex(ranges)

	if err := eng.scanSections(ef); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("ELF analysis snapshot built",
		"path", path,
		"functions", len(eng.functions),
		"codeRanges", len(eng.codeRanges),
		"referencedTargets", len(eng.refs))

	return eng, nil
}

// loadSymbols returns the symbol table, falling back to the dynamic
// symbol table for stripped binaries.
func loadSymbols(ef *elf.File) ([]elf.Symbol, error) {
	syms, err := ef.Symbols()
	if err == nil {
		return syms, nil
	}
	if !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("failed to read symbol table: %w", err)
	}

	dynsyms, dynErr := ef.DynamicSymbols()
	if dynErr != nil {
		return nil, ErrNoSymbols
	}
	return dynsyms, nil
}

// scanSections decodes every executable section and records the
// statically resolvable call references.
func (e *StandardEngine) scanSections(ef *elf.File) error {
	for _, sec := range ef.Sections {
		if sec.Flags&elf.SHF_EXECINSTR == 0 || sec.Addr == 0 || sec.Size == 0 {
			continue
		}
		e.codeRanges = append(e.codeRanges, addrRange{Start: sec.Addr, End: sec.Addr + sec.Size})

		if sec.Type != elf.SHT_PROGBITS {
			continue
		}
		code, err := sec.Data()
		if err != nil && err != io.EOF {
			e.logger.Warn("failed to read section, skipping", "section", sec.Name, "error", err)
			continue
		}

		sites, err := scanCallSites(code, sec.Addr, ef.Machine)
		if err != nil {
			return err
		}
		for _, site := range sites {
			e.refs[site.Target] = append(e.refs[site.Target], site.Origin)
		}
	}
	return nil
}

// Functions returns the function entry addresses in ascending order.
func (e *StandardEngine) Functions() []uint64 {
	return e.functions
}

// IsCode reports whether addr falls inside an executable section.
func (e *StandardEngine) IsCode(addr uint64) bool {
	for _, r := range e.codeRanges {
		if r.contains(addr) {
			return true
		}
	}
	return false
}

// RawSymbol returns the raw symbol at a function entry address.
func (e *StandardEngine) RawSymbol(addr uint64) (string, bool) {
	sym, ok := e.symbols[addr]
	return sym, ok
}

// Demangle recovers a signature from a raw symbol under the run's ABI.
func (e *StandardEngine) Demangle(raw string) (string, bool) {
	return e.demangler.Demangle(raw)
}

// CodeReferencesTo returns the origins of all statically resolved call
// references to the target address.
func (e *StandardEngine) CodeReferencesTo(addr uint64) []uint64 {
	return e.refs[addr]
}

// EnclosingSymbol returns the raw symbol of the function containing addr.
func (e *StandardEngine) EnclosingSymbol(addr uint64) (string, bool) {
	return e.index.Resolve(addr)
}
