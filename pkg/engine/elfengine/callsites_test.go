package elfengine

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCallSitesAMD64(t *testing.T) {
	// AMD64 instruction encodings:
	// call rel32               = 0xE8 <4 bytes rel32>
	// call rax                 = 0xFF 0xD0
	// jmp rel8                 = 0xEB <1 byte rel8>
	// jne rel8                 = 0x75 <1 byte rel8>
	// endbr64                  = 0xF3 0x0F 0x1E 0xFA
	// nop                      = 0x90

	tests := []struct {
		name     string
		code     []byte
		baseAddr uint64
		want     []callSite
	}{
		{
			name: "pc-relative call",
			// call $+0x10 (rel32 = 0x0B, instruction length = 5)
			code:     []byte{0xE8, 0x0B, 0x00, 0x00, 0x00},
			baseAddr: 0,
			want:     []callSite{{Origin: 0, Target: 0x10}},
		},
		{
			name: "pc-relative call negative offset",
			// call $-0x20 at 0x100: target = 0x100 + 5 - 32 = 0xE5
			code:     []byte{0xE8, 0xE0, 0xFF, 0xFF, 0xFF},
			baseAddr: 0x100,
			want:     []callSite{{Origin: 0x100, Target: 0xE5}},
		},
		{
			name: "register-indirect call omitted",
			// call rax cannot be resolved statically
			code:     []byte{0xFF, 0xD0, 0x90},
			baseAddr: 0x200,
			want:     nil,
		},
		{
			name: "unconditional jmp is a tail call",
			// jmp $+0x10 (rel8 = 0x0E, instruction length = 2)
			code:     []byte{0xEB, 0x0E},
			baseAddr: 0,
			want:     []callSite{{Origin: 0, Target: 0x10}},
		},
		{
			name: "conditional jump excluded",
			// jne $+7
			code:     []byte{0x75, 0x05, 0x90},
			baseAddr: 0,
			want:     nil,
		},
		{
			name: "endbr64 prologue skipped",
			// endbr64; call $+0x10
			code:     []byte{0xF3, 0x0F, 0x1E, 0xFA, 0xE8, 0x0B, 0x00, 0x00, 0x00},
			baseAddr: 0x1000,
			want:     []callSite{{Origin: 0x1004, Target: 0x1014}},
		},
		{
			name: "multiple calls",
			// nop; call $+0x0F; call $-6
			code:     []byte{0x90, 0xE8, 0x09, 0x00, 0x00, 0x00, 0xE8, 0xF5, 0xFF, 0xFF, 0xFF},
			baseAddr: 0,
			want: []callSite{
				{Origin: 0x1, Target: 0x0F},
				{Origin: 0x6, Target: 0x0},
			},
		},
		{
			name:     "empty code",
			code:     nil,
			baseAddr: 0,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanCallSitesAMD64(tt.code, tt.baseAddr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanCallSitesARM64(t *testing.T) {
	// ARM64 instruction encodings (little-endian):
	// bl #imm26*4              = 0x94000000 | imm26
	// b  #imm26*4              = 0x14000000 | imm26
	// b.ne #imm19*4            = 0x54000000 | imm19<<5 | 0x1
	// nop                      = 0xD503201F

	tests := []struct {
		name     string
		code     []byte
		baseAddr uint64
		want     []callSite
	}{
		{
			name: "bl forward",
			// bl #+8
			code:     []byte{0x02, 0x00, 0x00, 0x94},
			baseAddr: 0x1000,
			want:     []callSite{{Origin: 0x1000, Target: 0x1008}},
		},
		{
			name: "unconditional b is a tail call",
			// b #+16
			code:     []byte{0x04, 0x00, 0x00, 0x14},
			baseAddr: 0x2000,
			want:     []callSite{{Origin: 0x2000, Target: 0x2010}},
		},
		{
			name: "conditional branch excluded",
			// b.ne #+8
			code:     []byte{0x41, 0x00, 0x00, 0x54},
			baseAddr: 0,
			want:     nil,
		},
		{
			name: "nop then bl",
			// nop; bl #+8
			code:     []byte{0x1F, 0x20, 0x03, 0xD5, 0x02, 0x00, 0x00, 0x94},
			baseAddr: 0x100,
			want:     []callSite{{Origin: 0x104, Target: 0x10C}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanCallSitesARM64(tt.code, tt.baseAddr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanCallSitesMachineDispatch(t *testing.T) {
	code := []byte{0xE8, 0x0B, 0x00, 0x00, 0x00}

	sites, err := scanCallSites(code, 0, elf.EM_X86_64)
	require.NoError(t, err)
	assert.Len(t, sites, 1)

	_, err = scanCallSites(code, 0, elf.EM_RISCV)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedMachine)
}
