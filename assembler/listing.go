package assembler

import (
	"fmt"
	"strings"
)

// FormatUnit returns the listing lines for one unit, newline-terminated:
//
//	chunk main size=4 bank=1 diverging
//	  bytes A9 01 80 FE
//	  fixup 1 word samebank target
//	define width = $20
//	error in main: field overflow ...
func FormatUnit(u Unit) string {
	var sb strings.Builder
	switch u := u.(type) {
	case ChunkUnit:
		c := u.Chunk
		fmt.Fprintf(&sb, "chunk %s size=%d", u.Label, c.Size())
		if c.bank.Pinned {
			fmt.Fprintf(&sb, " bank=%d", c.bank.Bank)
		}
		if c.diverging {
			sb.WriteString(" diverging")
		}
		sb.WriteByte('\n')
		if c.Size() > 0 {
			fmt.Fprintf(&sb, "  bytes % X\n", c.data)
		}
		for _, f := range c.fixups {
			fmt.Fprintf(&sb, "  fixup %d %s", f.Offset, f.Expr.Size)
			if f.SameBank {
				sb.WriteString(" samebank")
			}
			fmt.Fprintf(&sb, " %s\n", f.Expr)
		}

	case DefineUnit:
		fmt.Fprintf(&sb, "define %s = %s\n", u.Label, u.Expr)

	case ErrorUnit:
		fmt.Fprintf(&sb, "error %v\n", u.Err)
	}
	return sb.String()
}
