// Logrus hooks routing formatted entries to the console and to a log file

package hooks

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Writes warnings and errors to stderr and everything else to stdout
type Console struct {
	stdout io.Writer
	stderr io.Writer
}

func (hook *Console) Fire(entry *logrus.Entry) error {
	serialized, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	w := hook.stdout
	if entry.Level <= logrus.WarnLevel {
		w = hook.stderr
	}
	_, err = w.Write(serialized)
	return err
}

// Returns the log levels supported by this hook
func (hook *Console) Levels() []logrus.Level {
	return logrus.AllLevels
}

func NewConsoleHook() *Console {
	return NewConsoleHookWithWriters(os.Stdout, os.Stderr)
}

func NewConsoleHookWithWriters(stdout, stderr io.Writer) *Console {
	return &Console{
		stdout: stdout,
		stderr: stderr,
	}
}
