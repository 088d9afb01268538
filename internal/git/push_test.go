package git_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/stretchr/testify/require"

	"gitsnap.dev/gitsnap/internal/errors"
	"gitsnap.dev/gitsnap/internal/git"
	"gitsnap.dev/gitsnap/testhelpers"
)

func writeTestKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600))
	return keyPath
}

func TestPushBranch(t *testing.T) {
	t.Run("pushes the current branch to a bare remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		bareDir, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)

		repo := openRepo(t, scene)
		commit := stageAndCommit(t, repo, git.CommitOptions{})

		result, err := git.PushBranch(context.Background(), repo, git.PushOptions{})
		require.NoError(t, err)
		require.Equal(t, "origin", result.Remote)
		require.Equal(t, "main", result.Branch)
		require.Equal(t, "refs/heads/main:refs/heads/main", result.RefSpec.String())
		require.False(t, result.UpToDate)

		remoteHead, err := testhelpers.GetRemoteRevision(bareDir, "main")
		require.NoError(t, err)
		require.Equal(t, commit.Hash.String(), remoteHead)
	})

	t.Run("reports an up to date remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		_, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		repo := openRepo(t, scene)

		_, err = git.PushBranch(context.Background(), repo, git.PushOptions{})
		require.NoError(t, err)

		result, err := git.PushBranch(context.Background(), repo, git.PushOptions{})
		require.NoError(t, err)
		require.True(t, result.UpToDate)
	})

	t.Run("pushes an explicit branch to a named remote", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.RunGitCommand("branch", "release"))
		bareDir, err := scene.Repo.CreateBareRemote("backup")
		require.NoError(t, err)

		result, err := git.PushBranch(context.Background(), openRepo(t, scene), git.PushOptions{
			Remote: "backup",
			Branch: "release",
		})
		require.NoError(t, err)
		require.Equal(t, "release", result.Branch)

		_, err = testhelpers.GetRemoteRevision(bareDir, "release")
		require.NoError(t, err)
		_, err = testhelpers.GetRemoteRevision(bareDir, "main")
		require.Error(t, err)
	})

	t.Run("fails without the remote and keeps the commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		repo := openRepo(t, scene)
		commit := stageAndCommit(t, repo, git.CommitOptions{})

		_, err := git.PushBranch(context.Background(), repo, git.PushOptions{})
		require.ErrorIs(t, err, errors.ErrRemoteNotFound)
		require.Contains(t, err.Error(), "error while pushing changes to remote using ssh config")
		require.Equal(t, git.StepPush, errors.StepOf(err))

		head, err := scene.Repo.GetRevision("HEAD")
		require.NoError(t, err)
		require.Equal(t, commit.Hash.String(), head)
	})

	t.Run("fails when the ssh key is missing", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.AddRemote("origin", "git@example.invalid:team/repo.git"))

		_, err := git.PushBranch(context.Background(), openRepo(t, scene), git.PushOptions{
			Auth: git.AuthOptions{KeyPath: filepath.Join(t.TempDir(), "missing_key")},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "error while pushing changes to remote using ssh config")
		require.Contains(t, err.Error(), "missing_key")
	})
}

func TestResolveAuth(t *testing.T) {
	t.Run("no auth for local remotes", func(t *testing.T) {
		auth, err := git.ResolveAuth("/srv/git/repo.git", git.AuthOptions{KeyPath: "/does/not/exist"})
		require.NoError(t, err)
		require.Nil(t, auth)

		auth, err = git.ResolveAuth("file:///srv/git/repo.git", git.AuthOptions{})
		require.NoError(t, err)
		require.Nil(t, auth)
	})

	t.Run("loads the key file with the url user", func(t *testing.T) {
		keyPath := writeTestKey(t)

		auth, err := git.ResolveAuth("ssh://deploy@example.com/team/repo.git", git.AuthOptions{KeyPath: keyPath})
		require.NoError(t, err)

		keys, ok := auth.(*gitssh.PublicKeys)
		require.True(t, ok)
		require.Equal(t, "deploy", keys.User)
	})

	t.Run("defaults the user when the url has none", func(t *testing.T) {
		keyPath := writeTestKey(t)

		auth, err := git.ResolveAuth("ssh://example.com/team/repo.git", git.AuthOptions{KeyPath: keyPath})
		require.NoError(t, err)
		require.Equal(t, git.DefaultSSHUser, auth.(*gitssh.PublicKeys).User)
	})

	t.Run("requires credentials for ssh remotes", func(t *testing.T) {
		_, err := git.ResolveAuth("git@example.com:team/repo.git", git.AuthOptions{})
		require.ErrorIs(t, err, git.ErrNoSSHCredentials)
	})
}
