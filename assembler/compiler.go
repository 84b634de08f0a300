// Package assembler turns a stream of parsed 65816 statements into relocatable
// chunks, one per top-level label, resolving what it can inside each chunk and
// leaving the rest as fixups for the linker.
package assembler

import (
	"fmt"
	"iter"

	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
)

// RootLabel names the chunk holding code before the first top-level label.
const RootLabel = "*root"

// Options configures a Compiler.
type Options struct {
	// RootLabel overrides the name of the implicit first chunk.
	RootLabel string
}

// Compiler pulls statements from a Source and produces Units on demand.
type Compiler struct {
	src    Source
	labels *expr.Labels

	// Name and attributes of the label that opened the chunk being accumulated.
	// They are used when the next boundary finalizes that chunk.
	pendingLabel string
	pendingAttrs []Attribute

	chunk  *Chunk
	locals map[expr.Ident]int
	fixups []Fixup
	errs   []error

	// Units produced while handling one statement, drained before the next pull.
	queue []Unit
	done  bool
}

// New returns a Compiler reading from src. labels must be the same allocator the
// source uses for references.
func New(src Source, labels *expr.Labels, opts Options) *Compiler {
	root := opts.RootLabel
	if root == "" {
		root = RootLabel
	}
	c := &Compiler{
		src:          src,
		labels:       labels,
		pendingLabel: root,
	}
	c.reset()
	return c
}

func (c *Compiler) reset() {
	c.chunk = &Chunk{}
	c.locals = make(map[expr.Ident]int)
	c.fixups = nil
	c.errs = nil
}

// Next returns the next compiled unit. It returns false once the stream is exhausted,
// and keeps returning false after that.
func (c *Compiler) Next() (Unit, bool) {
	for {
		if len(c.queue) > 0 {
			u := c.queue[0]
			c.queue = c.queue[1:]
			return u, true
		}
		if c.done {
			return nil, false
		}

		st, ok := c.src.Next()
		if !ok {
			c.finish()
			c.done = true
			continue
		}
		c.handle(st)
	}
}

// All iterates over the remaining units.
func (c *Compiler) All() iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		for {
			u, ok := c.Next()
			if !ok || !yield(u) {
				return
			}
		}
	}
}

// Compile drains src and returns every unit.
func Compile(src Source, labels *expr.Labels, opts Options) []Unit {
	var units []Unit
	for u := range New(src, labels, opts).All() {
		units = append(units, u)
	}
	return units
}

func (c *Compiler) handle(st Statement) {
	switch st := st.(type) {
	case Define:
		c.queue = append(c.queue, DefineUnit{Label: st.Name, Expr: st.Expr})

	case TopLevelLabel:
		c.finish()
		c.pendingLabel = st.Name
		c.pendingAttrs = st.Attrs
		c.labels.EnterScope()

	case BackwardLabel:
		c.locals[c.labels.DefineBackward(st.Count)] = len(c.chunk.data)

	case ForwardLabel:
		// Control can now arrive here by a jump as well as by falling through.
		c.chunk.diverging = false
		c.locals[c.labels.DefineForward(st.Count)] = len(c.chunk.data)

	case LocalLabel:
		c.chunk.diverging = false
		c.locals[c.labels.DefineLocal(st.Depth, st.Name)] = len(c.chunk.data)

	case RawData:
		c.rawData(st)

	case Instruction:
		if err := c.instruction(st); err != nil {
			c.errs = append(c.errs, err)
		}

	case SourceError:
		if st.Fatal {
			// The open chunk is abandoned but its statement errors still count.
			for _, err := range c.errs {
				c.queue = append(c.queue, ErrorUnit{Err: err})
			}
			c.reset()
			c.done = true
		}
		c.queue = append(c.queue, ErrorUnit{Err: &CompileError{
			Kind:  ErrParse,
			Label: c.pendingLabel,
			Pos:   st.Pos,
			Err:   st.Err,
		}})

	default:
		c.errs = append(c.errs, &CompileError{
			Kind:  ErrInternal,
			Label: c.pendingLabel,
			Err:   fmt.Errorf("unknown statement %T", st),
		})
	}
}

// finish resolves the open chunk and queues it under the pending label. A chunk
// with statement errors is replaced by its errors.
func (c *Compiler) finish() {
	errs := resolveFixups(c.pendingLabel, c.chunk, c.locals, c.fixups)
	errs = append(c.errs, errs...)

	if len(errs) > 0 {
		for _, err := range errs {
			c.queue = append(c.queue, ErrorUnit{Err: err})
		}
	} else {
		for _, a := range c.pendingAttrs {
			if b, ok := a.(BankAttr); ok {
				c.chunk.bank = Pin(uint8(b))
			}
		}
		c.chunk.attrs = c.pendingAttrs
		c.queue = append(c.queue, ChunkUnit{Label: c.pendingLabel, Chunk: c.chunk})
	}
	c.reset()
}

func (c *Compiler) rawData(st RawData) {
	// Data is not meant to be executed.
	c.chunk.diverging = true

	base := len(c.chunk.data)
	for _, r := range st.Refs {
		if r.Offset < 0 || r.Offset+r.Expr.Size.Width() > len(st.Data) {
			c.errs = append(c.errs, &CompileError{
				Kind:  ErrInternal,
				Label: c.pendingLabel,
				Pos:   st.Pos,
				Expr:  r.Expr.String(),
				Want:  fmt.Sprintf("reference within %d data bytes", len(st.Data)),
				Got:   fmt.Sprintf("offset %d width %d", r.Offset, r.Expr.Size.Width()),
			})
			continue
		}
		c.fixups = append(c.fixups, Fixup{Offset: base + r.Offset, Expr: r.Expr.Clone(), SameBank: false})
	}
	c.chunk.data = append(c.chunk.data, st.Data...)
}

func (c *Compiler) instruction(st Instruction) error {
	arg := st.Arg
	fail := func(kind error, want, got string, err error) error {
		return &CompileError{
			Kind:     kind,
			Label:    c.pendingLabel,
			Pos:      st.Pos,
			Mnemonic: st.Mnemonic,
			Expr:     arg.String(),
			Want:     want,
			Got:      got,
			Err:      err,
		}
	}

	if !cpu.Known(st.Mnemonic) {
		return fail(ErrAddressingMode, "", "", fmt.Errorf("%w: %s", cpu.ErrUnknownMnemonic, st.Mnemonic))
	}

	hint := cpu.MnemonicSize(st.Mnemonic)
	constOnly := hint == cpu.SizeImplicit || arg.Expr.IsEmpty()
	if !constOnly && arg.Expr.IsConstant() {
		// Only constants left, so no later substitution can make it fold.
		if _, ok := arg.Expr.Value(); !ok {
			return fail(ErrFieldOverflow, "constant operand", arg.Expr.String(), errUnfoldable)
		}
		constOnly = true
	}

	size, ok := hint.And(arg.Expr.Size)
	if ok {
		size, ok = size.And(st.Size)
	}
	if !ok {
		return fail(ErrAddressingMode, hint.String(), fmt.Sprintf("%s/%s", arg.Expr.Size, st.Size), nil)
	}
	if size == cpu.SizeAny && arg.Form != FormNone && arg.Form != FormAccumulator {
		size = narrowSize(st.Mnemonic, arg)
	}

	mode, err := ResolveMode(arg, size)
	if err != nil {
		return fail(ErrAddressingMode, size.String(), arg.Form.Size().String(), err)
	}
	enc, err := Encode(st.Mnemonic, mode, arg.Expr)
	if err != nil {
		kind := ErrAddressingMode
		if isOverflow(err) {
			kind = ErrFieldOverflow
		}
		return fail(kind, fmt.Sprintf("%d-byte operand", mode.OperandWidth()), arg.Expr.String(), err)
	}

	if !constOnly {
		e := arg.Expr.Clone()
		e.Size = mode.Size()
		// Byte 0 is the opcode.
		c.fixups = append(c.fixups, Fixup{Offset: len(c.chunk.data) + 1, Expr: e, SameBank: true})
	}
	c.chunk.data = append(c.chunk.data, enc.Bytes...)
	if enc.Diverging {
		c.chunk.diverging = true
	}
	return nil
}
