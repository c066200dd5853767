// Package diag defines the structured error type shared by all compiler
// passes and the banner rendering used for user-visible failures.
package diag

import (
	"fmt"
	"io"
	"strings"
)

// Error is a structured compiler diagnostic.
// Where is a component::operation tag; What is the human-readable message
// with the module name and source position embedded.
type Error struct {
	Where string
	What  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Where + ": " + e.What
}

// Errorf builds an Error with a formatted message.
func Errorf(where, format string, args ...interface{}) *Error {
	return &Error{Where: where, What: fmt.Sprintf(format, args...)}
}

// bannerWidth is the inner width of the error frame.
const bannerWidth = 68

// Fprint renders err as a framed banner on w.
// Unstructured errors render with an empty where tag.
func Fprint(w io.Writer, err error) {
	where, what := "", err.Error()
	if e, ok := err.(*Error); ok {
		where, what = e.Where, e.What
	}

	rule := "+" + strings.Repeat("-", bannerWidth) + "+"
	fmt.Fprintln(w, rule)
	if where != "" {
		fprintRow(w, "error in "+where)
	} else {
		fprintRow(w, "error")
	}
	for _, line := range strings.Split(what, "\n") {
		fprintRow(w, line)
	}
	fmt.Fprintln(w, rule)
}

// fprintRow prints one padded banner row, wrapping long lines.
func fprintRow(w io.Writer, line string) {
	for len(line) > bannerWidth-2 {
		fmt.Fprintf(w, "| %-*s|\n", bannerWidth-1, line[:bannerWidth-2])
		line = line[bannerWidth-2:]
	}
	fmt.Fprintf(w, "| %-*s|\n", bannerWidth-1, line)
}
