// Package runlock keeps two daily checks from running at the same time.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/concise/internal/constants"
	"github.com/julianstephens/concise/internal/logger"
)

// ErrLocked is returned when a live process holds the lock
var ErrLocked = errors.New("another daily check is already running")

var (
	findProcessFunc = ps.FindProcess
	newRunID        = uuid.NewString
)

// Lock is a held run lock. The lockfile holds "pid|run-id".
type Lock struct {
	path  string
	runID string
}

// Owner is the parsed content of a lockfile
type Owner struct {
	PID   int
	RunID string
}

// Acquire takes the lock in dir. A lockfile left by a process that is no
// longer running is replaced.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, constants.RunLockfileName)
	runID := newRunID()
	content := fmt.Sprintf("%d|%s", os.Getpid(), runID)

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			_, werr := f.WriteString(content)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			logger.Debug("Run lock acquired", "path", path, "run_id", runID)
			return &Lock{path: path, runID: runID}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		owner, err := ReadOwner(path)
		if err == nil && isRunning(owner.PID) {
			return nil, fmt.Errorf("%w (pid %d, run %s)", ErrLocked, owner.PID, owner.RunID)
		}
		logger.Warn("Removing stale run lock", "path", path, "error", err)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrLocked
}

// ReadOwner parses the lockfile at path
func ReadOwner(path string) (Owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Owner{}, err
	}

	pidStr, runID, ok := strings.Cut(strings.TrimSpace(string(content)), "|")
	if !ok {
		return Owner{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return Owner{}, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(runID) == "" {
		return Owner{}, errors.New("run id in lockfile is empty")
	}
	return Owner{PID: pid, RunID: runID}, nil
}

// isRunning reports whether pid is a live concise process
func isRunning(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}

// RunID identifies this run
func (l *Lock) RunID() string {
	return l.runID
}

// Release removes the lockfile if it still belongs to this run
func (l *Lock) Release() error {
	owner, err := ReadOwner(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lockfile: %w", err)
	}
	if owner.RunID != l.runID {
		logger.Warn("Run lock taken over by another run", "run_id", owner.RunID)
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
