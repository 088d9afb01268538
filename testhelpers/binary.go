package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	sharedBinaryPath string
	binaryOnce       sync.Once
	binaryErr        error
	binaryCleanup    = func() {}
)

// GetSharedBinaryPath returns the path of the gitsnap binary, building it on first use.
func GetSharedBinaryPath() string {
	binaryOnce.Do(func() {
		path, cleanup, err := buildBinary()
		if err != nil {
			binaryErr = err
			return
		}
		sharedBinaryPath, binaryCleanup = path, cleanup
	})
	return sharedBinaryPath
}

// GetBinaryError returns any error that occurred during binary building.
func GetBinaryError() error {
	return binaryErr
}

// GitsnapBinary returns the built binary or fails the test.
func GitsnapBinary(t *testing.T) string {
	t.Helper()
	binaryPath := GetSharedBinaryPath()
	if binaryPath == "" {
		if err := GetBinaryError(); err != nil {
			t.Fatalf("failed to build gitsnap binary: %v", err)
		}
		t.Fatal("gitsnap binary not built")
	}
	return binaryPath
}

// buildBinary builds ./cmd/gitsnap into a temp directory.
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "gitsnap-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(tmpDir) // Ignore cleanup errors
	}

	binaryPath := filepath.Join(tmpDir, "gitsnap")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gitsnap")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	return binaryPath, cleanup, nil
}

// findModuleRoot walks up the directory tree from startDir to find the directory holding go.mod.
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// TestMain builds the binary once before the package's tests run and removes it afterwards.
func TestMain(m *testing.M) {
	if GetSharedBinaryPath() == "" {
		fmt.Fprintf(os.Stderr, "Failed to build gitsnap binary: %v\n", GetBinaryError())
		os.Exit(1)
	}

	code := m.Run()
	binaryCleanup()
	os.Exit(code)
}
