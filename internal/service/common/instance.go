//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/redlight-sentinel/internal/logger"
)

// commLength is the length Linux truncates process names to.
const commLength = 15

// ErrAlreadyRunning is returned when another sentinel process is found.
var ErrAlreadyRunning = errors.New("another sentinel is already running")

// ExecutableName returns the base name of the running binary without extension.
func ExecutableName() string {
	name := filepath.Base(os.Args[0])

	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IsInstanceRunning reports whether a process other than this one runs an
// executable called name.
func IsInstanceRunning(ctx context.Context, name string) (bool, error) {
	processes, err := ps.Processes()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	self := os.Getpid()

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		if sameExecutable(process.Executable(), name) {
			logger.DebugKV(ctx, "Found running instance", "pid", process.Pid(), "executable", process.Executable())
			return true, nil
		}
	}

	return false, nil
}

// EnsureSingleInstance fails with ErrAlreadyRunning when another instance of name is running.
func EnsureSingleInstance(ctx context.Context, name string) error {
	running, err := IsInstanceRunning(ctx, name)
	if err != nil {
		return err
	}

	if running {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	return nil
}

// sameExecutable compares a process name with name, allowing for the
// kernel's truncated process names and the Windows .exe suffix.
func sameExecutable(processName, name string) bool {
	if processName == "" || name == "" {
		return false
	}

	processName = strings.TrimSuffix(strings.ToLower(processName), ".exe")
	name = strings.ToLower(name)

	if processName == name {
		return true
	}

	return len(processName) == commLength && strings.HasPrefix(name, processName)
}
