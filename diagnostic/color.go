// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// ParseColorMode parses the values accepted by the --color flag.
func ParseColorMode(s string) (ColorMode, bool) {
	switch s {
	case "", "auto":
		return ColorAuto, true
	case "always":
		return ColorAlways, true
	case "never":
		return ColorNever, true
	}
	return ColorAuto, false
}

// palette holds the styles used for diagnostic output.
type palette struct {
	bold     *color.Color
	yellow   *color.Color
	boldRed  *color.Color
	boldBlue *color.Color
	boldCyan *color.Color
	green    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		bold:     color.New(color.Bold),
		yellow:   color.New(color.FgYellow, color.Bold),
		boldRed:  color.New(color.FgRed, color.Bold),
		boldBlue: color.New(color.FgBlue, color.Bold),
		boldCyan: color.New(color.FgCyan, color.Bold),
		green:    color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.bold, p.yellow, p.boldRed, p.boldBlue, p.boldCyan, p.green} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// choosePalette selects the appropriate color palette based on the mode
// and the output file descriptor.
func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return newPalette(true)
	case ColorNever:
		return newPalette(false)
	default: // ColorAuto
		if os.Getenv("NO_COLOR") != "" {
			return newPalette(false)
		}
		return newPalette(isTerminal(w))
	}
}

// isTerminal reports whether f is connected to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
