// Copyright © 2018 The ELPS authors

// Package parser is the entry point for reading java sources.  The work is
// done by the recursive descent parser in package rdparser.
package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/subcheck/ast"
	"github.com/luthersystems/subcheck/parser/rdparser"
)

// Parse parses src, naming it name in positions and errors.
func Parse(name string, src []byte) (*ast.File, error) {
	return rdparser.ParseSource(name, src)
}

// ParseReader reads r in full and parses it.
func ParseReader(name string, r io.Reader) (*ast.File, error) {
	return rdparser.ParseFile(name, r)
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*ast.File, error) {
	src, err := os.ReadFile(path) //nolint:gosec // reads user-specified source files
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return Parse(path, src)
}
