// Package main implements the C+ compiler entry point.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Leorevoir/CPLUS-Compiler/internal/compiler"
	"github.com/Leorevoir/CPLUS-Compiler/internal/diag"
	"github.com/Leorevoir/CPLUS-Compiler/internal/syntax"
)

// Version information
const version = "0.1.0"

// outputFlag is the -o/--output value. Setting the output path twice is an
// error, which a plain flag.StringVar cannot detect.
type outputFlag struct {
	path string
	set  bool
}

func (o *outputFlag) String() string {
	return o.path
}

func (o *outputFlag) Set(value string) error {
	if o.set {
		return fmt.Errorf("output file already set to %s", o.path)
	}
	o.path = value
	o.set = true
	return nil
}

// Compiler flags. Short and long spellings share one variable.
var (
	showVersion bool
	debug       bool
	showTokens  bool
	showAST     bool
	showIR      bool
	astFormat   string
	output      = outputFlag{path: "out.bin"}
)

func init() {
	flag.BoolVar(&showVersion, "v", false, "Show version information")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&debug, "d", false, "Enable debug mode")
	flag.BoolVar(&debug, "debug", false, "Enable debug mode")
	flag.BoolVar(&showTokens, "t", false, "Show tokens")
	flag.BoolVar(&showTokens, "show-tokens", false, "Show tokens")
	flag.BoolVar(&showAST, "a", false, "Show AST")
	flag.BoolVar(&showAST, "show-ast", false, "Show AST")
	flag.BoolVar(&showIR, "show-ir", false, "Print IR to stdout in addition to the output file")
	flag.StringVar(&astFormat, "ast-format", "text", "AST output format (text or json)")
	flag.Var(&output, "o", "Output file")
	flag.Var(&output, "output", "Output file")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "USAGE: cplus [options] <input.cp>\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("CPlus v.%s\n", version)
		fmt.Println("Not C, not C++, just C+")
		fmt.Println("Copyright (c) 2025-2026 CPlus Contributors")
		os.Exit(0)
	}

	os.Exit(run(flag.Args()))
}

// run compiles every input file and writes the IR to the output path.
func run(inputs []string) int {
	if len(inputs) == 0 {
		diag.Fprint(os.Stderr, diag.Errorf("args::parse", "No input files provided"))
		return 1
	}

	driver := compiler.New(compiler.Config{
		Debug:      debug,
		ShowTokens: showTokens,
		ShowAST:    showAST,
		ShowIR:     showIR,
		ASTFormat:  astFormat,
	})

	var out []byte
	for _, input := range inputs {
		source, err := readSource(input)
		if err != nil {
			diag.Fprint(os.Stderr, err)
			return 1
		}

		irText, err := driver.Compile(source)
		if err != nil {
			diag.Fprint(os.Stderr, err)
			return 1
		}
		out = append(out, irText...)
	}

	if err := os.WriteFile(output.path, out, 0o644); err != nil {
		diag.Fprint(os.Stderr, diag.Errorf("driver::output",
			"Failed to open output stream: %v", err))
		return 1
	}
	return 0
}

// readSource loads one input file, rejecting missing and non-regular
// paths.
func readSource(path string) (syntax.FileContent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return syntax.FileContent{}, diag.Errorf("args::input",
			"Input file does not exist: %s", path)
	}
	if !info.Mode().IsRegular() {
		return syntax.FileContent{}, diag.Errorf("args::input",
			"Input file is not a regular file: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return syntax.FileContent{}, diag.Errorf("args::input",
			"Failed to read input file %s: %v", path, err)
	}

	return syntax.FileContent{File: path, Content: string(content)}, nil
}
