package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitsnaperrors "gitsnap.dev/gitsnap/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*gogit.Repository
	path string
}

// OpenRepository opens the git repository containing path
func OpenRepository(path string) (*Repository, error) {
	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	root := absPath
	if worktree, err := repo.Worktree(); err == nil {
		root = worktree.Filesystem.Root()
	}

	return &Repository{
		Repository: repo,
		path:       root,
	}, nil
}

// GetRepoRoot returns the root directory of the repository
func (r *Repository) GetRepoRoot() string {
	return r.path
}

// HeadCommit returns the commit HEAD points to.
// ok is false when the current branch has no commits yet.
func (r *Repository) HeadCommit() (commit *object.Commit, ok bool, err error) {
	head, err := r.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err = r.CommitObject(head.Hash())
	if err != nil {
		return nil, false, fmt.Errorf("failed to peel HEAD to a commit: %w", err)
	}
	return commit, true, nil
}

// GetCurrentBranch returns the current branch name.
// An unborn branch is reported by name too, since HEAD already points at it.
func (r *Repository) GetCurrentBranch() (string, error) {
	head, err := r.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	name := head.Name()
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	if !name.IsBranch() {
		return "", gitsnaperrors.ErrNotOnBranch
	}

	return name.Short(), nil
}

// updateHead moves the branch HEAD points at, or HEAD itself when detached
func (r *Repository) updateHead(commit plumbing.Hash) error {
	head, err := r.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	name := plumbing.HEAD
	if head.Type() != plumbing.HashReference {
		name = head.Target()
	}

	ref := plumbing.NewHashReference(name, commit)
	if err := r.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("failed to update %s: %w", name, err)
	}
	return nil
}
