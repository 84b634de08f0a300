package assembler

import "github.com/Urethramancer/asm816/expr"

// Fixup is a deferred patch of the bytes at Offset.
type Fixup struct {
	Offset int
	Expr   expr.Expression
	// SameBank requires the referenced symbol to live in the instruction's own bank.
	SameBank bool
}

// BankPin optionally pins a chunk to a memory bank.
type BankPin struct {
	Bank   uint8
	Pinned bool
}

// Pin returns a BankPin for bank.
func Pin(bank uint8) BankPin {
	return BankPin{Bank: bank, Pinned: true}
}

// Chunk is the encoded bytes of one top-level label plus the fixups left for the linker.
// The diverging flag and bank pin are fixed once the compiler emits the chunk.
type Chunk struct {
	data      []byte
	fixups    []Fixup
	attrs     []Attribute
	diverging bool
	bank      BankPin
}

// Padding returns a zero-filled chunk of n bytes. Padding is never executed.
func Padding(n int, bank BankPin) *Chunk {
	return &Chunk{
		data:      make([]byte, n),
		diverging: true,
		bank:      bank,
	}
}

// Bytes returns the chunk's encoded bytes.
func (c *Chunk) Bytes() []byte { return c.data }

// Size returns the number of encoded bytes.
func (c *Chunk) Size() int { return len(c.data) }

// Fixups returns the references the compiler could not resolve locally.
func (c *Chunk) Fixups() []Fixup { return c.fixups }

// Attrs returns the attributes of the label that started the chunk.
func (c *Chunk) Attrs() []Attribute { return c.attrs }

// Diverging reports whether the linker may place the next chunk anywhere.
func (c *Chunk) Diverging() bool { return c.diverging }

// Bank returns the bank pin.
func (c *Chunk) Bank() BankPin { return c.bank }

// Unit is one item of compiler output: a ChunkUnit, DefineUnit or ErrorUnit.
type Unit interface {
	isUnit()
}

// ChunkUnit carries a finished chunk.
type ChunkUnit struct {
	Label string
	Chunk *Chunk
}

// DefineUnit carries a define for the linker's symbol table.
type DefineUnit struct {
	Label string
	Expr  expr.Expression
}

// ErrorUnit reports a failure. The compiler keeps producing units after it
// unless the source could not recover.
type ErrorUnit struct {
	Err error
}

func (ChunkUnit) isUnit()  {}
func (DefineUnit) isUnit() {}
func (ErrorUnit) isUnit()  {}
