package elfengine

import (
	"debug/elf"
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// x86_64BitMode is the bit width for 64-bit mode decoding.
const x86_64BitMode = 64

// callSite is one statically resolved call or tail-call reference:
// the instruction at Origin transfers control to Target.
type callSite struct {
	Origin uint64
	Target uint64
}

// scanCallSites decodes raw machine code and returns the statically
// resolvable call sites (CALL instructions plus unconditional jumps,
// which may be tail calls). baseAddr is the virtual address of the first
// byte of code. Register-indirect targets cannot be resolved statically
// and are omitted.
func scanCallSites(code []byte, baseAddr uint64, machine elf.Machine) ([]callSite, error) {
	switch machine {
	case elf.EM_X86_64:
		return scanCallSitesAMD64(code, baseAddr), nil
	case elf.EM_AARCH64:
		return scanCallSitesARM64(code, baseAddr), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMachine, machine)
	}
}

func scanCallSitesAMD64(code []byte, baseAddr uint64) []callSite {
	var sites []callSite

	offset := 0
	addr := baseAddr

	for offset < len(code) {
		// Skip ENDBR64 (f3 0f 1e fa) and ENDBR32 (f3 0f 1e fb) which
		// golang.org/x/arch/x86/x86asm does not recognise. These CET
		// instructions appear at function entries on binaries compiled
		// with -fcf-protection and are transparent to call site detection.
		if offset+4 <= len(code) &&
			code[offset] == 0xf3 && code[offset+1] == 0x0f &&
			code[offset+2] == 0x1e && (code[offset+3] == 0xfa || code[offset+3] == 0xfb) {
			offset += 4
			addr += 4
			continue
		}

		inst, err := x86asm.Decode(code[offset:], x86_64BitMode)
		if err != nil {
			offset++
			addr++
			continue
		}

		switch inst.Op {
		case x86asm.CALL, x86asm.JMP:
			// x86asm uses distinct Op values for conditional jumps
			// (JNE, JE, ...), so Op == JMP is always unconditional.
			if target, ok := resolveTargetAMD64(inst, addr); ok {
				sites = append(sites, callSite{Origin: addr, Target: target})
			}
		}

		offset += inst.Len
		addr += uint64(inst.Len)
	}

	return sites
}

// resolveTargetAMD64 computes the target address of a CALL or JMP
// instruction when it is statically resolvable: PC-relative (rel8/rel32)
// and absolute-displacement forms. Register and memory-indirect forms
// return ok=false.
func resolveTargetAMD64(inst x86asm.Inst, addr uint64) (uint64, bool) {
	switch arg := inst.Args[0].(type) {
	case x86asm.Rel:
		return addr + uint64(inst.Len) + uint64(int64(arg)), true
	case x86asm.Mem:
		// call/jmp [mem]: the operand names the slot holding the target
		// (GOT/PLT or a vtable), not a function entry.
		return 0, false
	default:
		// Register-indirect transfers cannot be resolved statically.
		return 0, false
	}
}

func scanCallSitesARM64(code []byte, baseAddr uint64) []callSite {
	var sites []callSite

	const insnLen = 4

	for offset := 0; offset+insnLen <= len(code); offset += insnLen {
		inst, err := arm64asm.Decode(code[offset : offset+insnLen])
		if err != nil {
			continue
		}
		addr := baseAddr + uint64(offset)

		switch inst.Op {
		case arm64asm.BL:
			if target, ok := resolveTargetARM64(inst, addr); ok {
				sites = append(sites, callSite{Origin: addr, Target: target})
			}
		case arm64asm.B:
			// Unconditional B may be a tail call. B.cond carries a Cond
			// argument and is an intra-function branch - skip those.
			conditional := false
			for _, arg := range inst.Args {
				if _, ok := arg.(arm64asm.Cond); ok {
					conditional = true
					break
				}
			}
			if conditional {
				continue
			}
			if target, ok := resolveTargetARM64(inst, addr); ok {
				sites = append(sites, callSite{Origin: addr, Target: target})
			}
		}
	}

	return sites
}

// resolveTargetARM64 extracts the PC-relative branch target from an ARM64
// BL or B instruction.
func resolveTargetARM64(inst arm64asm.Inst, addr uint64) (uint64, bool) {
	pcrel, ok := inst.Args[0].(arm64asm.PCRel)
	if !ok {
		return 0, false
	}
	return addr + uint64(int64(pcrel)), true
}
