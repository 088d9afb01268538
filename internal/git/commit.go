package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitsnaperrors "gitsnap.dev/gitsnap/internal/errors"
)

// Default commit messages
const (
	DefaultInitialMessage  = "Initial Commit"
	DefaultFollowUpMessage = "New Changes"
)

// CommitOptions contains options for creating a snapshot commit
type CommitOptions struct {
	// Message is used when HEAD already has a commit
	Message string
	// InitialMessage is used for the first commit of an unborn branch
	InitialMessage string
}

// CommitResult describes a commit created by CommitTree
type CommitResult struct {
	Hash    plumbing.Hash
	Tree    plumbing.Hash
	Parent  plumbing.Hash
	Message string
	Initial bool
}

// CommitTree creates a commit of tree signed by sig and moves HEAD to it.
// The commit's only parent is the current HEAD commit. When the branch has no
// commits yet the commit has no parents. Unchanged trees are committed as is.
func CommitTree(repo *Repository, tree plumbing.Hash, sig *object.Signature, opts CommitOptions) (*CommitResult, error) {
	head, ok, err := repo.HeadCommit()
	if err != nil {
		return nil, gitsnaperrors.NewStepError(StepCommit, "could not resolve HEAD", err)
	}

	result := &CommitResult{Tree: tree}
	var parents []plumbing.Hash
	failContext := "could not commit changes"
	if ok {
		result.Parent = head.Hash
		result.Message = messageOrDefault(opts.Message, DefaultFollowUpMessage)
		parents = []plumbing.Hash{head.Hash}
	} else {
		result.Initial = true
		result.Message = messageOrDefault(opts.InitialMessage, DefaultInitialMessage)
		failContext = "could not commit the changes to the repository"
	}

	commit := &object.Commit{
		Author:       *sig,
		Committer:    *sig,
		Message:      result.Message,
		TreeHash:     tree,
		ParentHashes: parents,
	}

	hash, err := storeCommit(repo, commit)
	if err != nil {
		return nil, gitsnaperrors.NewStepError(StepCommit, failContext, err)
	}
	if err := repo.updateHead(hash); err != nil {
		return nil, gitsnaperrors.NewStepError(StepCommit, failContext, err)
	}

	result.Hash = hash
	return result, nil
}

func storeCommit(repo *Repository, commit *object.Commit) (plumbing.Hash, error) {
	obj := repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode commit: %w", err)
	}

	hash, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store commit: %w", err)
	}
	return hash, nil
}

func messageOrDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
