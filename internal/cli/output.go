package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"golang.org/x/term"
)

// Color modes accepted by --color.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useColor resolves a --color mode. NO_COLOR only affects auto.
func (a *app) useColor(mode string) (bool, error) {
	switch mode {
	case colorAlways:
		return true, nil
	case colorNever:
		return false, nil
	case colorAuto, "":
		return !a.cfg.Color.Disabled && a.isTerminal(a.stdout), nil
	default:
		return false, fmt.Errorf("invalid --color %q (want auto, always or never)", mode)
	}
}

// diffOutput returns the writer a colored diff goes to. Terminals that need
// ANSI translation get a colorable wrapper.
func (a *app) diffOutput(color bool) io.Writer {
	if f, ok := a.stdout.(*os.File); ok && color {
		return colorable.NewColorable(f)
	}
	return a.stdout
}
