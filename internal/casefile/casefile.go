// Package casefile extracts assembler scenarios from Markdown documents.
//
// A scenario starts at a heading of the form "Test: name" and collects the
// fenced code blocks that follow it, keyed by their info string.
package casefile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence kinds understood inside a scenario.
const (
	FenceSource = "asm"
	FenceChunks = "chunks"
	FenceErrors = "errors"
)

// Case is one scenario.
type Case struct {
	Name   string
	Line   int
	Source string
	Chunks string
	Errors string
}

func known(lang string) bool {
	switch lang {
	case FenceSource, FenceChunks, FenceErrors:
		return true
	}
	return false
}

// Extract parses a Markdown document and returns its scenarios in order.
func Extract(src []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cases []Case
	var cur *Case
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, src)
			if !strings.HasPrefix(title, "Test: ") {
				return ast.WalkContinue, nil
			}
			if cur != nil {
				cases = append(cases, *cur)
			}
			cur = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(title, "Test: ")),
				Line: lineOf(n, src),
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := string(n.Language(src))
			if lang == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, src)
			if !known(lang) {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s'", line, lang)
			}
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test", line, lang)
			}

			body := strings.TrimRight(blockText(n, src), "\n")
			var slot *string
			switch lang {
			case FenceSource:
				slot = &cur.Source
			case FenceChunks:
				slot = &cur.Chunks
			case FenceErrors:
				slot = &cur.Errors
			}
			if *slot != "" {
				return ast.WalkStop, fmt.Errorf("line %d: duplicate %s fence in test '%s'", line, lang, cur.Name)
			}
			*slot = body
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if cur != nil {
		cases = append(cases, *cur)
	}
	for _, c := range cases {
		if c.Source == "" {
			return nil, fmt.Errorf("line %d: test '%s' has no %s fence", c.Line, c.Name, FenceSource)
		}
	}
	return cases, nil
}

// Load reads and extracts a scenario file.
func Load(path string) ([]Case, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cases, err := Extract(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		}
	}
	return buf.String()
}

func blockText(n *ast.FencedCodeBlock, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

func lineOf(n ast.Node, src []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	return bytes.Count(src[:start], []byte("\n")) + 1
}
