//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another process with the same
// executable name is alive.
var ErrAlreadyRunning = errors.New("another instance is already running")

// processLister matches ps.Processes.
type processLister func() ([]ps.Process, error)

// EnsureSingleInstance fails with ErrAlreadyRunning when another process runs
// the current executable.
func EnsureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("detect executable: %w", err)
	}

	return ensureSingleInstance(ps.Processes, os.Getpid(), filepath.Base(executable))
}

// ensureSingleInstance scans the process table for name, ignoring self.
func ensureSingleInstance(list processLister, self int, name string) error {
	processList, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if sameExecutable(process.Executable(), name) {
			return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
		}
	}

	return nil
}

// sameExecutable compares names the way the host filesystem does.
// Linux truncates process names to 15 bytes.
func sameExecutable(running, name string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(running, name)
	}

	const commLength = 15
	if len(name) > commLength && len(running) == commLength {
		return strings.HasPrefix(name, running)
	}

	return running == name
}
