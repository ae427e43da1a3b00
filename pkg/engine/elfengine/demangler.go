package elfengine

import (
	"strings"

	"github.com/ianlancetaylor/demangle"

	"github.com/smith-xyz/binary-xref-generator/pkg/engine"
)

// demangler wraps github.com/ianlancetaylor/demangle behind the per-run
// ABI selection. Not every symbol is a demangleable compiled identifier;
// failure is reported as absence, never as an error.
type demangler struct {
	abi engine.ABI
}

func newDemangler(abi engine.ABI) *demangler {
	return &demangler{abi: abi}
}

// Demangle recovers a human-readable signature from a raw symbol under
// the configured convention.
func (d *demangler) Demangle(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	switch d.abi {
	case engine.ABIItanium:
		if !strings.HasPrefix(raw, "_Z") && !strings.HasPrefix(raw, "__Z") {
			return "", false
		}
	case engine.ABIRust:
		if !strings.HasPrefix(raw, "_R") {
			return "", false
		}
	}

	out, err := demangle.ToString(raw)
	if err != nil {
		return "", false
	}
	return out, true
}
