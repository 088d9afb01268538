package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	gitsnaperrors "gitsnap.dev/gitsnap/internal/errors"
)

// DefaultRemote is the remote pushed to when none is given
const DefaultRemote = "origin"

const pushContext = "error while pushing changes to remote using ssh config"

// PushOptions contains options for pushing a branch
type PushOptions struct {
	Remote string
	// Branch defaults to the branch HEAD points at
	Branch string
	Auth   AuthOptions
}

// PushResult describes a completed push
type PushResult struct {
	Remote   string
	URL      string
	Branch   string
	RefSpec  config.RefSpec
	UpToDate bool
}

// PushBranch pushes refs/heads/<branch> to the same ref on the remote.
// A failed push leaves local commits untouched.
func PushBranch(ctx context.Context, repo *Repository, opts PushOptions) (*PushResult, error) {
	remoteName := opts.Remote
	if remoteName == "" {
		remoteName = DefaultRemote
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			err = gitsnaperrors.NewRemoteNotFoundError(remoteName)
		}
		return nil, gitsnaperrors.NewStepError(StepPush, pushContext, err)
	}

	branch := opts.Branch
	if branch == "" {
		branch, err = repo.GetCurrentBranch()
		if err != nil {
			return nil, gitsnaperrors.NewStepError(StepPush, pushContext, err)
		}
	}

	refName := plumbing.NewBranchReferenceName(branch)
	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", refName, refName))
	if err := refSpec.Validate(); err != nil {
		return nil, gitsnaperrors.NewStepError(StepPush, pushContext, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, gitsnaperrors.NewStepError(StepPush, pushContext,
			fmt.Errorf("remote %s has no url", remoteName))
	}

	auth, err := ResolveAuth(urls[0], opts.Auth)
	if err != nil {
		return nil, gitsnaperrors.NewStepError(StepPush, pushContext, err)
	}

	result := &PushResult{
		Remote:  remoteName,
		URL:     urls[0],
		Branch:  branch,
		RefSpec: refSpec,
	}

	err = remote.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       auth,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		result.UpToDate = true
		return result, nil
	}
	if err != nil {
		return nil, gitsnaperrors.NewStepError(StepPush, pushContext,
			fmt.Errorf("failed to push branch %s to %s: %w", branch, remoteName, err))
	}

	return result, nil
}
