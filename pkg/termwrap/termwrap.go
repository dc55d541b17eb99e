// Package termwrap formats help text and run summaries to fit the terminal.
package termwrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
)

type TermWrap struct {
	width  int
	height int
}

// Row is one labeled line of a summary.
type Row struct {
	Label string
	Value any
}

// maximum width of summary rules, regardless of the terminal
const maxRuleWidth = 60

func NewTermWrap(defaultWidth, defaultHeight int) *TermWrap {
	var err error
	tw := &TermWrap{}

	tw.width, tw.height, err = term.GetSize(int(os.Stdout.Fd()))
	if err != nil || tw.width <= 0 {
		tw.width = defaultWidth
		tw.height = defaultHeight
	}

	return tw
}

func (tw *TermWrap) Width() int {
	return tw.width
}

func (tw *TermWrap) Paragraph(content string) string {
	return wordwrap.WrapString(content, uint(tw.width))
}

// Rule is a horizontal line of ch.
func (tw *TermWrap) Rule(ch string) string {
	width := tw.width
	if width > maxRuleWidth {
		width = maxRuleWidth
	}
	return strings.Repeat(ch, width)
}

// Summary renders a titled block of rows between rules.
func (tw *TermWrap) Summary(title string, rows []Row) string {
	var sb strings.Builder

	rule := tw.Rule("=")
	sb.WriteString(rule + "\n")
	sb.WriteString(strings.ToUpper(title) + "\n")
	sb.WriteString(rule + "\n")

	for _, row := range rows {
		sb.WriteString(tw.Paragraph(fmt.Sprintf("%s: %v", row.Label, row.Value)))
		sb.WriteString("\n")
	}

	sb.WriteString(rule + "\n")
	return sb.String()
}
