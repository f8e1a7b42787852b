package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/concise/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (p *mockProcess) Pid() int           { return p.pid }
func (p *mockProcess) PPid() int          { return 0 }
func (p *mockProcess) Executable() string { return p.executable }

func mockProcesses(t *testing.T, fn func(pid int) (ps.Process, error)) {
	old := findProcessFunc
	findProcessFunc = fn
	t.Cleanup(func() { findProcessFunc = old })
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, constants.RunLockfileName)

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	owner, err := ReadOwner(path)
	if err != nil {
		t.Fatalf("ReadOwner failed: %v", err)
	}
	if owner.PID != os.Getpid() || owner.RunID != lock.RunID() {
		t.Errorf("unexpected owner %+v", owner)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected lockfile to be removed")
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
}

func TestAcquireHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	mockProcesses(t, func(pid int) (ps.Process, error) {
		return &mockProcess{pid: pid, executable: "concise-daily"}, nil
	})

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	_, err = Acquire(dir)
	if !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		process ps.Process
	}{
		{name: "process gone", content: "4242|old-run"},
		{name: "pid reused by another program", content: "4242|old-run", process: &mockProcess{pid: 4242, executable: "bash"}},
		{name: "malformed", content: "garbage"},
		{name: "empty run id", content: "4242|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, constants.RunLockfileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			mockProcesses(t, func(pid int) (ps.Process, error) {
				return tt.process, nil
			})

			lock, err := Acquire(dir)
			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			defer lock.Release()

			content, _ := os.ReadFile(path)
			if !strings.HasPrefix(string(content), strconv.Itoa(os.Getpid())+"|") {
				t.Errorf("lockfile not replaced: %q", content)
			}
		})
	}
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, constants.RunLockfileName)

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("4242|someone-else"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Release removed a lock owned by another run")
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	dir := t.TempDir()
	first, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	first.Release()

	second, err := Acquire(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Release()

	if first.RunID() == second.RunID() {
		t.Error("expected a fresh run id per acquisition")
	}
}
