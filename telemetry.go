package easel

import (
	"fmt"
	"os"
)

// Logger is the injectable logging collaborator. Subsystems receive one at
// construction instead of reaching for package-level state, so an embedding
// application can route messages wherever it wants (and tests can silence
// them with NopLogger).
type Logger interface {
	Logf(format string, args ...any)
}

// StderrLogger returns the default logger: one line per message on stderr
// with an "[easel]" prefix.
func StderrLogger() Logger {
	return stderrLogger{}
}

type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[easel] "+format+"\n", args...)
}

// NopLogger discards all messages.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}
