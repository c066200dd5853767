// Package compiler wires the compilation passes into a pipeline:
// scanner -> parser -> semantic analysis -> IR generation -> codegen.
package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/Leorevoir/CPLUS-Compiler/internal/codegen"
	"github.com/Leorevoir/CPLUS-Compiler/internal/ir"
	"github.com/Leorevoir/CPLUS-Compiler/internal/sema"
	"github.com/Leorevoir/CPLUS-Compiler/internal/syntax"
)

// Config carries the per-run options, threaded into the pipeline instead
// of process-wide flag state.
type Config struct {
	Debug      bool   // log pass progress to Stderr
	ShowTokens bool   // dump the token stream to Stdout
	ShowAST    bool   // dump the AST to Stdout
	ShowIR     bool   // echo the IR to Stdout
	ASTFormat  string // "text" (default) or "json"

	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

// Driver runs the compilation pipeline for one module at a time.
type Driver struct {
	conf Config
	gen  *codegen.Generator
}

// New creates a driver with the given configuration.
func New(conf Config) *Driver {
	if conf.Stdout == nil {
		conf.Stdout = os.Stdout
	}
	if conf.Stderr == nil {
		conf.Stderr = os.Stderr
	}
	return &Driver{
		conf: conf,
		gen:  codegen.New("x86-64"),
	}
}

// Compile runs one source unit through the full pipeline and returns the
// generated IR text. Every pass short-circuits on its first error.
func (d *Driver) Compile(source syntax.FileContent) (string, error) {
	d.debugf("compiling module %s", source.File)

	tokens, err := syntax.Lex(source)
	if err != nil {
		return "", err
	}
	if d.conf.ShowTokens {
		syntax.FprintTokens(d.conf.Stdout, tokens)
	}

	module, err := syntax.Parse(tokens)
	if err != nil {
		return "", err
	}
	if d.conf.ShowAST {
		if d.conf.ASTFormat == "json" {
			if err := syntax.FprintJSON(d.conf.Stdout, module); err != nil {
				return "", err
			}
		} else {
			syntax.Fprint(d.conf.Stdout, module)
		}
	}

	if err := sema.Analyze(module); err != nil {
		return "", err
	}
	d.debugf("semantic analysis done for module %s", source.File)

	irText, err := ir.Emit(module)
	if err != nil {
		return "", err
	}
	if d.conf.Debug {
		if err := ir.Verify(irText); err != nil {
			return "", err
		}
	}
	if d.conf.ShowIR {
		fmt.Fprint(d.conf.Stdout, irText)
	}

	return d.gen.Run(irText)
}

// debugf logs a pass-progress line when debug mode is on.
func (d *Driver) debugf(format string, args ...interface{}) {
	if d.conf.Debug {
		fmt.Fprintf(d.conf.Stderr, "cplus: "+format+"\n", args...)
	}
}
