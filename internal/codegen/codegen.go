// Package codegen holds the target-specific code generator.
// The x86-64 backend is currently a stub that passes the IR text through
// unchanged; the assembler/linker shell-out lives outside the compiler
// core.
package codegen

// Generator lowers IR text for one target.
type Generator struct {
	target string
}

// New creates a generator for the given target triple.
func New(target string) *Generator {
	return &Generator{target: target}
}

// Target returns the generator's target name.
func (g *Generator) Target() string {
	return g.target
}

// Run lowers the IR text. The x86-64 backend is not implemented yet and
// returns its input unchanged.
func (g *Generator) Run(irText string) (string, error) {
	return irText, nil
}
