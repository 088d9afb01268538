package main_test

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitsnap.dev/gitsnap/testhelpers"
)

func TestMain(m *testing.M) {
	testhelpers.TestMain(m)
}

func runBinary(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(testhelpers.GitsnapBinary(t), args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return stdout.String(), stderr.String(), exitErr.ExitCode()
	}
	require.NoError(t, err)
	return stdout.String(), stderr.String(), 0
}

func TestGitsnapBinary(t *testing.T) {
	t.Run("exits zero and prints only the commit id on stdout", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.CreateChange("hello", "first", true))

		stdout, _, code := runBinary(t, scene.Dir)
		require.Equal(t, 0, code)

		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, head+"\n", stdout)
	})

	t.Run("exits one when the identity is missing", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.UnsetConfig("user.name"))

		stdout, stderr, code := runBinary(t, scene.Dir)
		require.Equal(t, 1, code)
		require.Empty(t, stdout)
		require.True(t, strings.Contains(stderr, "please set user.name"), stderr)
	})
}
