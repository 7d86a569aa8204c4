package platform

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"golang.org/x/term"
)

// Streams bundles the process's console writers. They are configured once at
// startup and passed down explicitly.
type Streams struct {
	Out io.Writer
	Err io.Writer
	// Interactive is true when Out is a terminal that honours carriage returns
	Interactive bool
}

// NewConsoleStreams wraps stdout and stderr so UTF-8 text and ANSI sequences
// render on every platform, including legacy Windows consoles.
func NewConsoleStreams() Streams {
	return Streams{
		Out:         colorable.NewColorableStdout(),
		Err:         colorable.NewColorableStderr(),
		Interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewStreams builds Streams over arbitrary writers, e.g. buffers in tests
func NewStreams(out, errOut io.Writer, interactive bool) Streams {
	return Streams{Out: out, Err: errOut, Interactive: interactive}
}
