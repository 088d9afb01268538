package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newRepoRoot(t *testing.T, repoConfig string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0750))
	if repoConfig != "" {
		require.NoError(t, os.WriteFile(RepoConfigPath(root), []byte(repoConfig), 0600))
	}
	return root
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("gitsnap", pflag.ContinueOnError)
	flags.Bool("push", false, "")
	flags.String("remote", "origin", "")
	flags.String("ssh-key", "", "")
	flags.StringP("message", "m", "", "")
	return flags
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when nothing is configured", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		root := newRepoRoot(t, "")

		cfg, err := Load(root, nil)
		require.NoError(t, err)
		require.False(t, cfg.Push)
		require.Equal(t, "origin", cfg.Remote)
		require.Empty(t, cfg.Branch)
		require.Equal(t, filepath.Join(home, ".ssh", "id_rsa"), cfg.SSH.KeyPath)
		require.False(t, cfg.SSH.UseAgent)
		require.Equal(t, "Initial Commit", cfg.Message.Initial)
		require.Equal(t, "New Changes", cfg.Message.FollowUp)
		require.Empty(t, cfg.Log.File)
	})

	t.Run("reads the repo config file", func(t *testing.T) {
		root := newRepoRoot(t, `{
  "push": true,
  "remote": "backup",
  "ssh": {"key_path": "/keys/deploy", "use_agent": true},
  "message": {"followup": "Added new function"}
}`)

		cfg, err := Load(root, nil)
		require.NoError(t, err)
		require.True(t, cfg.Push)
		require.Equal(t, "backup", cfg.Remote)
		require.Equal(t, "/keys/deploy", cfg.SSH.KeyPath)
		require.True(t, cfg.SSH.UseAgent)
		require.Equal(t, "Added new function", cfg.Message.FollowUp)
		require.Equal(t, "Initial Commit", cfg.Message.Initial)
	})

	t.Run("environment overrides the repo config", func(t *testing.T) {
		root := newRepoRoot(t, `{"remote": "backup"}`)
		t.Setenv("GITSNAP_REMOTE", "mirror")
		t.Setenv("GITSNAP_SSH_KEY_PATH", "/env/key")
		t.Setenv("GITSNAP_PUSH", "true")

		cfg, err := Load(root, nil)
		require.NoError(t, err)
		require.Equal(t, "mirror", cfg.Remote)
		require.Equal(t, "/env/key", cfg.SSH.KeyPath)
		require.True(t, cfg.Push)
	})

	t.Run("changed flags override everything", func(t *testing.T) {
		root := newRepoRoot(t, `{"remote": "backup", "message": {"followup": "from file"}}`)
		t.Setenv("GITSNAP_REMOTE", "mirror")

		flags := newFlagSet()
		require.NoError(t, flags.Parse([]string{"--remote", "upstream", "-m", "from flag", "--push"}))

		cfg, err := Load(root, flags)
		require.NoError(t, err)
		require.Equal(t, "upstream", cfg.Remote)
		require.Equal(t, "from flag", cfg.Message.FollowUp)
		require.True(t, cfg.Push)
	})

	t.Run("unchanged flags do not mask lower layers", func(t *testing.T) {
		root := newRepoRoot(t, `{"remote": "backup"}`)

		flags := newFlagSet()
		require.NoError(t, flags.Parse(nil))

		cfg, err := Load(root, flags)
		require.NoError(t, err)
		require.Equal(t, "backup", cfg.Remote)
		require.Equal(t, "New Changes", cfg.Message.FollowUp)
	})

	t.Run("rejects malformed repo config", func(t *testing.T) {
		root := newRepoRoot(t, `{"remote": `)

		_, err := Load(root, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse repo config")
	})

	t.Run("rejects an empty remote", func(t *testing.T) {
		root := newRepoRoot(t, `{"remote": "  "}`)

		_, err := Load(root, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "remote must not be empty")
	})
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{in: "~/.ssh/id_ed25519", want: filepath.Join(home, ".ssh", "id_ed25519")},
		{in: "~", want: home},
		{in: "/abs/key", want: "/abs/key"},
		{in: "relative/key", want: "relative/key"},
		{in: "~other/key", want: "~other/key"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, tt.in)
	}
}
