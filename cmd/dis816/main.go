package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Urethramancer/asm816/disassembler"
	"github.com/grimdork/climate/arg"
)

func main() {
	opt := arg.New("dis816")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "m", "wide-a", "Decode accumulator immediates as 16 bits.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "x", "wide-xy", "Decode index immediates as 16 bits.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "o", "output", "Write the listing to this file instead of stdout.", "", false, arg.VarString, nil)
	opt.SetPositional("FILE", "Raw binary to disassemble.", "", true, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	code, err := os.ReadFile(opt.GetPosString("FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	text, err := disassembler.Disassemble(code, disassembler.Options{
		WideA:  opt.GetBool("wide-a"),
		WideXY: opt.GetBool("wide-xy"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Disassembly error: %v\n", err)
	}

	out := opt.GetString("output")
	if out == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Disassembly written to %s\n", out)
}
