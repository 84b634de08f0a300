package assembler

import (
	"fmt"

	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
)

// resolveFixups substitutes chunk-local label offsets into each queued fixup and
// patches data for the ones that fold away. Fixups that still need the linker are
// stored on the chunk. Errors are returned in queue order.
func resolveFixups(label string, c *Chunk, locals map[expr.Ident]int, queued []Fixup) []error {
	var errs []error
	var outgoing []Fixup

	for _, f := range queued {
		written := f.Expr.String()
		f.Expr.EachMut(func(n expr.Node) expr.Node {
			r, ok := n.(expr.Ref)
			if !ok {
				return n
			}
			off, ok := locals[r.ID]
			if !ok {
				return n
			}
			return expr.Offset(off)
		})
		f.Expr.Reduce()

		fail := func(kind error, want, got string, err error) {
			errs = append(errs, &CompileError{
				Kind:  kind,
				Label: label,
				Expr:  written,
				Want:  want,
				Got:   got,
				Err:   err,
			})
		}

		size := f.Expr.Size
		if f.Offset < 0 || f.Offset+size.Width() > len(c.data) {
			fail(ErrInternal, fmt.Sprintf("offset within %d bytes", len(c.data)),
				fmt.Sprintf("offset %d width %d", f.Offset, size.Width()), nil)
			continue
		}

		switch root := f.Expr.Root.(type) {
		case nil, expr.Empty:
			// Nothing to patch.

		case expr.Constant:
			if size.IsRelative() || size.Width() == 0 {
				fail(ErrInternal, "byte, word or long field", fmt.Sprintf("%s field for a constant", size), nil)
				continue
			}
			if err := cpu.PutField(c.data[f.Offset:], size, int64(root)); err != nil {
				fail(ErrFieldOverflow, fmt.Sprintf("%d-byte value", size.Width()),
					fmt.Sprintf("%d", int64(root)), err)
			}

		case expr.Offset:
			if !size.IsRelative() {
				// Only chunk-relative; the linker knows where the chunk ends up.
				outgoing = append(outgoing, f)
				continue
			}
			disp := int64(root) - int64(f.Offset) - 1
			if err := cpu.PutRel(c.data[f.Offset:], size, disp); err != nil {
				fail(ErrFieldOverflow, fmt.Sprintf("signed %d-byte displacement", size.Width()),
					fmt.Sprintf("%d", disp), err)
			}

		default:
			outgoing = append(outgoing, f)
		}
	}

	c.fixups = outgoing
	return errs
}
