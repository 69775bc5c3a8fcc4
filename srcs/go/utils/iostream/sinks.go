package iostream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/muesli/termenv"
)

var (
	console = termenv.NewOutput(os.Stdout)

	palette = []termenv.ANSIColor{
		termenv.ANSIGreen,
		termenv.ANSIBlue,
		termenv.ANSIYellow,
		termenv.ANSICyan,
	}
)

func paint(text string, c termenv.ANSIColor) string {
	return console.String(text).Foreground(c).Bold().String()
}

type prefixWriter struct {
	prefix string
	w      io.Writer
}

func (p prefixWriter) Write(bs []byte) (int, error) {
	if _, err := fmt.Fprintf(p.w, "[%s] %s", p.prefix, bs); err != nil {
		return 0, err
	}
	return len(bs), nil
}

// Console tags each line with the process name, coloured by its index.
func Console(name string, i int) Sink {
	tag := paint(name, palette[i%len(palette)])
	return Sink{
		Stdout: prefixWriter{prefix: tag + "::stdout", w: os.Stdout},
		Stderr: prefixWriter{prefix: tag + "::" + paint("stderr", termenv.ANSIMagenta), w: os.Stderr},
	}
}

// LogFiles writes to <prefix>.stdout.log and <prefix>.stderr.log, created
// on first output.
func LogFiles(prefix string) Sink {
	return Sink{
		Stdout: NewLazyFile(prefix + ".stdout.log"),
		Stderr: NewLazyFile(prefix + ".stderr.log"),
	}
}

type lazyFile struct {
	name string
	once sync.Once
	f    *os.File
	err  error
}

// NewLazyFile returns a writer that creates name, and its directory, on
// the first Write.
func NewLazyFile(name string) io.WriteCloser { return &lazyFile{name: name} }

func (l *lazyFile) open() {
	if l.err = os.MkdirAll(filepath.Dir(l.name), 0o755); l.err != nil {
		return
	}
	l.f, l.err = os.Create(l.name)
}

func (l *lazyFile) Write(bs []byte) (int, error) {
	if l.once.Do(l.open); l.err != nil {
		fmt.Fprintf(os.Stderr, "can't open %s: %v\n", l.name, l.err)
		return 0, l.err
	}
	return l.f.Write(bs)
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
