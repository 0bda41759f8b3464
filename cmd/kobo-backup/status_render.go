package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"

	statusLabelWidth = 18
)

// statusPrinter writes aligned, optionally colored status lines.
type statusPrinter struct {
	out      io.Writer
	colorize bool
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *statusPrinter) section(title string) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	fmt.Fprintln(p.out, p.paint(ansiBlue, heading))
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	text := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", kind)
	if message != "" {
		text += " " + message
	}
	fmt.Fprintln(p.out, p.paint(kind.color(), text))
}

func (p *statusPrinter) check(label string, passed bool, detail string) {
	kind := statusOK
	if !passed {
		kind = statusError
	}
	p.line(label, kind, detail)
}

func (p *statusPrinter) paint(color, text string) string {
	if !p.colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func (k statusKind) String() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
