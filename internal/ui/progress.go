package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ytget/ydownloader/internal/model"
)

// ProgressRenderer draws download progress on a single console line. On a
// terminal the line is rewritten in place; otherwise each distinct update is
// printed on its own line.
type ProgressRenderer struct {
	mu          sync.Mutex
	out         io.Writer
	loc         *Localization
	interactive bool

	lastLine  string
	lastWidth int
	open      bool // a progress line is on screen without a trailing newline
}

// NewProgressRenderer creates a renderer writing to out
func NewProgressRenderer(out io.Writer, loc *Localization, interactive bool) *ProgressRenderer {
	if loc == nil {
		loc = NewLocalization()
	}
	return &ProgressRenderer{out: out, loc: loc, interactive: interactive}
}

// OnProgress renders downloading events and ignores every other status
func (r *ProgressRenderer) OnProgress(event model.ProgressEvent) {
	if event.Status != model.ProgressStatusDownloading {
		return
	}

	line := r.loc.Sprintf(KeyProgress, orPlaceholder(event.Percent), orPlaceholder(event.Speed), orPlaceholder(event.ETA))

	r.mu.Lock()
	defer r.mu.Unlock()

	if line == r.lastLine {
		return
	}

	if !r.interactive {
		fmt.Fprintln(r.out, line)
		r.lastLine = line
		return
	}

	width := utf8.RuneCountInString(line)
	padding := ""
	if width < r.lastWidth {
		padding = strings.Repeat(" ", r.lastWidth-width)
	}
	fmt.Fprint(r.out, CarriageReturn+line+padding)

	r.lastLine = line
	r.lastWidth = width
	r.open = true
}

// Break terminates an in-place progress line so the next message starts on
// a fresh line. It is a no-op when nothing is pending.
func (r *ProgressRenderer) Break() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		fmt.Fprint(r.out, LineBreak)
	}
	r.open = false
	r.lastLine = ""
	r.lastWidth = 0
}

func orPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlaceholderNA
	}
	return s
}
