// Package ui renders gitcritic's human-facing console output.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indices.
const (
	colorRed       = "1"
	colorGreen     = "2"
	colorYellow    = "3"
	colorBrightRed = "9"
)

// Console writes semantically styled lines. Informational, success and
// result text go to out; failures go to errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer
	color  bool

	info    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	result  lipgloss.Style
}

// NewConsole returns a Console writing to out and errOut. With color false
// every line is written unstyled.
func NewConsole(out, errOut io.Writer, color bool) *Console {
	r := lipgloss.NewRenderer(out)
	er := lipgloss.NewRenderer(errOut)
	return &Console{
		out:     out,
		errOut:  errOut,
		color:   color,
		info:    r.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		success: r.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		failure: er.NewStyle().Foreground(lipgloss.Color(colorRed)),
		result:  r.NewStyle().Foreground(lipgloss.Color(colorBrightRed)),
	}
}

// Discard returns a Console that writes nothing.
func Discard() *Console {
	return NewConsole(io.Discard, io.Discard, false)
}

// Info prints an informational line.
func (c *Console) Info(format string, args ...interface{}) {
	c.print(c.out, c.info, fmt.Sprintf(format, args...))
}

// Success prints a progress or completion line.
func (c *Console) Success(format string, args ...interface{}) {
	c.print(c.out, c.success, fmt.Sprintf(format, args...))
}

// Error prints a failure diagnostic to the error stream. A non-nil err is
// appended after the message.
func (c *Console) Error(err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	c.print(c.errOut, c.failure, msg)
}

// Block prints multi-line text such as a diff with the informational style.
func (c *Console) Block(text string) {
	c.print(c.out, c.info, text)
}

// Result prints the review text.
func (c *Console) Result(text string) {
	c.print(c.out, c.result, text)
}

// print styles each line on its own so lipgloss does not pad lines of a
// multi-line block to a common width.
func (c *Console) print(w io.Writer, style lipgloss.Style, text string) {
	if !c.color {
		fmt.Fprintln(w, text)
		return
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
