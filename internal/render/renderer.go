package render

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer writes grid output and status messages, adapting to whether
// stdout is a terminal.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	width  int
	styles *Styles
}

// NewRenderer creates a renderer, detecting a terminal when out is a file.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	tty := false
	width := 0
	if f, ok := out.(*os.File); ok {
		fd := int(f.Fd()) //nolint:gosec // file descriptors fit in int
		if term.IsTerminal(fd) {
			tty = true
			if w, _, err := term.GetSize(fd); err == nil {
				width = w
			}
		}
	}
	r := NewRendererWithTTY(out, errOut, mode, tty)
	r.width = width
	return r
}

// NewRendererWithTTY creates a renderer with an explicit terminal flag.
// Styles are colourless unless tty is set and NO_COLOR is unset.
func NewRendererWithTTY(out, errOut io.Writer, mode Mode, tty bool) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	lr := lipgloss.NewRenderer(out)
	if !tty || termenv.EnvNoColor() {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  tty,
		styles: newStyles(lr),
	}
}

// EffectiveMode resolves ModeAuto.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Width returns the terminal width, or 0 when unknown.
func (r *Renderer) Width() int { return r.width }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to the output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Warn writes a warning to the error output.
func (r *Renderer) Warn(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning:")+" "+msg)
}
