package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gitsnap.dev/gitsnap/internal/actions"
	"gitsnap.dev/gitsnap/internal/cli/helpers"
	gitsnaperrors "gitsnap.dev/gitsnap/internal/errors"
	"gitsnap.dev/gitsnap/internal/git"
	"gitsnap.dev/gitsnap/internal/runtime"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var (
		dir     string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:   "gitsnap",
		Short: "Snapshot the working directory into a git commit",
		Long: `Snapshot the working directory into a git commit.

Every change in the working tree is staged (honouring .gitignore) and committed
on top of HEAD using user.name and user.email from git config. With --push the
branch is then pushed to the remote over SSH.

Settings are read from .git/.gitsnap_config (JSON), then GITSNAP_* environment
variables, then flags.`,
		Example: `  gitsnap
  gitsnap -m "Added new function" --push
  gitsnap --push --remote backup --ssh-key ~/.ssh/id_ed25519`,
		Args:         cobra.NoArgs,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := runtime.Options{
				Dir:     dir,
				Flags:   cmd.Flags(),
				Verbose: verbose,
				Writer:  cmd.ErrOrStderr(),
			}
			return helpers.Run(cmd, opts, func(ctx *runtime.Context) error {
				return runSnapshot(cmd, ctx)
			})
		},
	}

	flags := rootCmd.Flags()
	flags.Bool("push", false, "Push the branch to the remote after committing")
	flags.String("remote", git.DefaultRemote, "Remote to push to")
	flags.String("branch", "", "Branch to push (defaults to the current branch)")
	flags.String("ssh-key", "", "Private key used for SSH remotes (default ~/.ssh/id_rsa)")
	flags.Bool("ssh-agent", false, "Authenticate SSH remotes through the SSH agent")
	flags.StringP("message", "m", git.DefaultFollowUpMessage, "Message for commits on top of HEAD")
	flags.String("initial-message", git.DefaultInitialMessage, "Message for the first commit of a repository")
	flags.String("log-file", "", "Also write debug logs to this file")
	flags.StringVar(&dir, "dir", ".", "Directory inside the repository to snapshot")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print debug output")

	return rootCmd
}

func runSnapshot(cmd *cobra.Command, ctx *runtime.Context) error {
	splog := ctx.Splog
	result, err := actions.Snapshot(ctx, actions.SnapshotOptionsFromConfig(ctx.Config))

	// The commit survives a failed push, so report it either way
	if result != nil && result.Stage >= actions.StageCommitted {
		if _, printErr := fmt.Fprintln(cmd.OutOrStdout(), result.Commit.String()); printErr != nil {
			return printErr
		}
	}
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gitsnaperrors.ErrIdentityNotConfigured):
		splog.Tip("run `git config --global user.name \"Your Name\"` and `git config --global user.email you@example.com`")
	case errors.Is(err, gitsnaperrors.ErrRemoteNotFound):
		splog.Tip("add a remote with `git remote add %s <url>` or pass --remote", ctx.Config.Remote)
	case errors.Is(err, git.ErrNoSSHCredentials):
		splog.Tip("pass --ssh-key or --ssh-agent")
	}
	if result != nil && result.Stage == actions.StagePushFailed {
		splog.Warn("commit %s was created locally but not pushed", splog.Styles().ShortHash(result.Commit.String()))
	}
	return err
}
