package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ui writes human-readable output. Color is dropped automatically when the
// output is not a terminal, and always with --no-color.
type ui struct {
	out io.Writer
}

func newUI(out io.Writer, noColor bool) *ui {
	if noColor {
		color.NoColor = true
	}
	return &ui{out: out}
}

// Success prints a confirmation line.
func (u *ui) Success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(u.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Heading prints a section title.
func (u *ui) Heading(title string) {
	color.New(color.FgCyan, color.Bold).Fprintln(u.out, title)
}

// Row prints one label/value pair under a heading.
func (u *ui) Row(label string, value interface{}) {
	fmt.Fprintf(u.out, "  %-12s %v\n", label, value)
}
