package disassembler_test

import (
	"strings"
	"testing"

	"github.com/Urethramancer/asm816/assembler"
	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/disassembler"
	"github.com/Urethramancer/asm816/expr"
	"github.com/Urethramancer/asm816/parser"
	"github.com/nalgeon/be"
)

func TestSimpleInstructions(t *testing.T) {
	tests := []struct {
		op   byte
		want string
	}{
		{cpu.OPNOP, "nop"},
		{cpu.OPRTS, "rts"},
		{cpu.OPRTL, "rtl"},
		{cpu.OPRTI, "rti"},
		{cpu.OPSTP, "stp"},
		{0x0A, "asl a"},
		{0xFB, "xce"},
	}
	for _, tt := range tests {
		inst, err := disassembler.Decode([]byte{tt.op}, 0, disassembler.Options{})
		be.Err(t, err, nil)
		be.Equal(t, inst.String(), tt.want)
	}
}

func TestOperands(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		opts disassembler.Options
		want string
	}{
		{"Immediate8", []byte{0xA9, 0x12}, disassembler.Options{}, "lda #$12"},
		{"Immediate16", []byte{0xA9, 0x34, 0x12}, disassembler.Options{WideA: true}, "lda #$1234"},
		{"IndexImmediate", []byte{0xA2, 0x34, 0x12}, disassembler.Options{WideXY: true}, "ldx #$1234"},
		{"RepIsAlwaysByte", []byte{0xC2, 0x30}, disassembler.Options{WideA: true}, "rep #$30"},
		{"Direct", []byte{0xA5, 0x10}, disassembler.Options{}, "lda $10"},
		{"AbsoluteX", []byte{0xBD, 0x00, 0x20}, disassembler.Options{}, "lda $2000,x"},
		{"LongX", []byte{0xBF, 0x56, 0x34, 0x12}, disassembler.Options{}, "lda $123456,x"},
		{"IndirectY", []byte{0xB1, 0x20}, disassembler.Options{}, "lda ($20),y"},
		{"IndirectLongY", []byte{0xB7, 0x20}, disassembler.Options{}, "lda [$20],y"},
		{"StackIndirectY", []byte{0xB3, 0x03}, disassembler.Options{}, "lda ($03,s),y"},
		{"JmpIndirectX", []byte{0x7C, 0x00, 0x80}, disassembler.Options{}, "jmp ($8000,x)"},
		{"Jsl", []byte{0x22, 0x00, 0x80, 0xC0}, disassembler.Options{}, "jsl $C08000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := disassembler.Decode(tt.code, 0, tt.opts)
			be.Err(t, err, nil)
			be.Equal(t, inst.String(), tt.want)
			be.Equal(t, inst.Size(), len(tt.code))
		})
	}
}

func TestBranches(t *testing.T) {
	inst, err := disassembler.Decode([]byte{0xD0, 0xFD}, 0x10, disassembler.Options{})
	be.Err(t, err, nil)
	be.Equal(t, inst.String(), "bne $000F")

	inst, err = disassembler.Decode([]byte{0x82, 0x00, 0x01}, 0, disassembler.Options{})
	be.Err(t, err, nil)
	be.Equal(t, inst.String(), "brl $0103")
}

func TestTruncated(t *testing.T) {
	_, err := disassembler.Decode([]byte{0xAD, 0x00}, 0, disassembler.Options{})
	be.Err(t, err, disassembler.ErrTruncated)

	_, err = disassembler.Decode(nil, 0, disassembler.Options{})
	be.Err(t, err, disassembler.ErrTruncated)
}

func TestWidthTracking(t *testing.T) {
	// rep #$20 widens the accumulator, sep #$20 narrows it again.
	code := []byte{0xC2, 0x20, 0xA9, 0x34, 0x12, 0xE2, 0x20, 0xA9, 0x01}
	insts, err := disassembler.Decoder(code, disassembler.Options{})
	be.Err(t, err, nil)
	be.Equal(t, len(insts), 4)
	be.Equal(t, insts[1].String(), "lda #$1234")
	be.Equal(t, insts[3].String(), "lda #$01")
}

func TestListing(t *testing.T) {
	text, err := disassembler.Disassemble([]byte{0xA9, 0x01, 0x60}, disassembler.Options{})
	be.Err(t, err, nil)
	be.Equal(t, text, "0000  A9 01        lda #$01\n0002  60           rts\n")
}

// Assembles a chunk and decodes it back.
func TestRoundTrip(t *testing.T) {
	src := `
main:
    sei
    clc
    xce
    rep #$30
    ldx #$1FFF
    txs
-   lda $2100,x
    sta [$10],y
    dex
    bpl -
    jml $C08000
`
	labels := expr.NewLabels()
	units := assembler.Compile(parser.New(strings.NewReader(src), "rt.s", labels), labels, assembler.Options{})
	be.Equal(t, len(units), 2)
	c := units[1].(assembler.ChunkUnit).Chunk

	insts, err := disassembler.Decoder(c.Bytes(), disassembler.Options{})
	be.Err(t, err, nil)

	var got []string
	for _, inst := range insts {
		got = append(got, inst.String())
	}
	be.Equal(t, got, []string{
		"sei", "clc", "xce", "rep #$30", "ldx #$1FFF", "txs",
		"lda $2100,x", "sta [$10],y", "dex", "bpl $0009", "jml $C08000",
	})
}

// Long displacements in an unlinked chunk count from the operand's last byte
// rather than the end of the instruction, so the CPU target is one further on.
func TestLongRelativeTarget(t *testing.T) {
	labels := expr.NewLabels()
	src := "brl +\nnop\n+ rts\n"
	units := assembler.Compile(parser.New(strings.NewReader(src), "brl.s", labels), labels, assembler.Options{})
	be.Equal(t, len(units), 1)
	c := units[0].(assembler.ChunkUnit).Chunk
	be.Equal(t, c.Bytes(), []byte{cpu.OPBRL, 0x02, 0x00, cpu.OPNOP, cpu.OPRTS})

	insts, err := disassembler.Decoder(c.Bytes(), disassembler.Options{})
	be.Err(t, err, nil)
	be.Equal(t, insts[0].String(), "brl $0005")

	short := []byte{cpu.OPBRA, 0x01, cpu.OPNOP, cpu.OPRTS}
	insts, err = disassembler.Decoder(short, disassembler.Options{})
	be.Err(t, err, nil)
	be.Equal(t, insts[0].String(), "bra $0003")
}
