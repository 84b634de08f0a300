package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Urethramancer/asm816/assembler"
	"github.com/Urethramancer/asm816/expr"
	"github.com/Urethramancer/asm816/parser"
	"github.com/grimdork/climate/arg"
)

func main() {
	opt := arg.New("asm816")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "v", "verbose", "Print progress for every unit to stderr.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "r", "root", "Name of the chunk holding code before the first label.", assembler.RootLabel, false, arg.VarString, nil)
	opt.SetPositional("FILE", "Source file to compile, or - for stdin.", "", true, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	os.Exit(run(opt.GetPosString("FILE"), opt.GetString("root"), opt.GetBool("verbose")))
}

// run compiles the named source and returns the exit code.
func run(name, root string, verbose bool) int {
	rc, err := readSource(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		return 1
	}
	defer rc.Close()

	labels := expr.NewLabels()
	src := parser.New(rc, name, labels)
	c := assembler.New(src, labels, assembler.Options{RootLabel: root})

	failed := 0
	for u := range c.All() {
		if e, ok := u.(assembler.ErrorUnit); ok {
			failed++
			fmt.Fprintf(os.Stderr, "%v\n", e.Err)
			continue
		}
		if verbose {
			logUnit(u)
		}
		fmt.Print(assembler.FormatUnit(u))
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d error(s)\n", failed)
		return 1
	}
	return 0
}

func readSource(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func logUnit(u assembler.Unit) {
	switch u := u.(type) {
	case assembler.ChunkUnit:
		fmt.Fprintf(os.Stderr, "compiled %s: %d bytes, %d fixups\n", u.Label, u.Chunk.Size(), len(u.Chunk.Fixups()))
	case assembler.DefineUnit:
		fmt.Fprintf(os.Stderr, "defined %s\n", u.Label)
	}
}
