package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitsnap.dev/gitsnap/internal/cli"
	"gitsnap.dev/gitsnap/internal/config"
	"gitsnap.dev/gitsnap/testhelpers"
)

// runGitsnap executes the root command in-process and returns stdout and stderr
func runGitsnap(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("1.2.3", "abc123", "2024-05-01")
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	t.Run("prints the new commit on stdout", func(t *testing.T) {
		scene := testhelpers.NewScene(t, nil)
		require.NoError(t, scene.Repo.CreateChange("hello", "first", true))

		stdout, _, err := runGitsnap(t)
		require.NoError(t, err)

		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, head+"\n", stdout)

		message, err := scene.Repo.GetCommitMessage("HEAD")
		require.NoError(t, err)
		require.Equal(t, "Initial Commit", message)
	})

	t.Run("uses the message flag for follow-up commits", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateChange("more", "second", true))

		_, _, err := runGitsnap(t, "-m", "Added new function")
		require.NoError(t, err)

		message, err := scene.Repo.GetCommitMessage("HEAD")
		require.NoError(t, err)
		require.Equal(t, "Added new function", message)
	})

	t.Run("reads messages from the repo config file", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, os.WriteFile(config.RepoConfigPath(scene.Dir),
			[]byte(`{"message": {"followup": "Checkpoint"}}`), 0600))

		_, _, err := runGitsnap(t)
		require.NoError(t, err)

		message, err := scene.Repo.GetCommitMessage("HEAD")
		require.NoError(t, err)
		require.Equal(t, "Checkpoint", message)
	})

	t.Run("snapshots the repository named by --dir", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.WriteFile("nested/deep/file.txt", "content", true))
		// Go 1.21-compatible equivalent of t.Chdir(t.TempDir()).
		prevDir, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(prevDir) })

		stdout, _, err := runGitsnap(t, "--dir", filepath.Join(scene.Dir, "nested"))
		require.NoError(t, err)

		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, head, strings.TrimSpace(stdout))
	})

	t.Run("pushes to a bare remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		bareDir, err := scene.Repo.CreateBareRemote("backup")
		require.NoError(t, err)

		stdout, stderr, err := runGitsnap(t, "--push", "--remote", "backup")
		require.NoError(t, err)
		require.Contains(t, stderr, "Pushed main to backup")

		remoteHead, err := testhelpers.GetRemoteRevision(bareDir, "main")
		require.NoError(t, err)
		require.Equal(t, remoteHead, strings.TrimSpace(stdout))
	})

	t.Run("missing identity fails without committing", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		before, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.UnsetConfig("user.email"))

		stdout, stderr, err := runGitsnap(t)
		require.Error(t, err)
		require.Equal(t, "email is not set in the git config; please set user.email", err.Error())
		require.Empty(t, stdout)
		require.Contains(t, stderr, "hint:")
		require.Contains(t, stderr, "user.email")

		after, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("push failure still reports the local commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		stdout, stderr, err := runGitsnap(t, "--push")
		require.Error(t, err)
		require.Contains(t, err.Error(), "remote origin does not exist")
		require.Contains(t, stderr, "was created locally but not pushed")

		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, head+"\n", stdout)
	})

	t.Run("fails outside a repository", func(t *testing.T) {
		testhelpers.NewScene(t, nil)

		_, _, err := runGitsnap(t, "--dir", t.TempDir())
		require.Error(t, err)
		require.Contains(t, err.Error(), "not a git repository")
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		testhelpers.NewScene(t, nil)

		_, _, err := runGitsnap(t, "extra")
		require.Error(t, err)
	})

	t.Run("prints build information", func(t *testing.T) {
		stdout, _, err := runGitsnap(t, "--version")
		require.NoError(t, err)
		require.Equal(t, "gitsnap version 1.2.3 (commit abc123, built 2024-05-01)\n", stdout)
	})
}
