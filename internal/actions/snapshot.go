package actions

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"gitsnap.dev/gitsnap/internal/config"
	"gitsnap.dev/gitsnap/internal/git"
	"gitsnap.dev/gitsnap/internal/runtime"
)

// Stage is the position of a snapshot in its workflow
type Stage int

// Snapshot stages in the order they are reached
const (
	StageStart Stage = iota
	StageStaged
	StageTreeWritten
	StageCommitted
	StagePushAttempted
	StagePushSucceeded
	StagePushFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageStaged:
		return "staged"
	case StageTreeWritten:
		return "tree written"
	case StageCommitted:
		return "committed"
	case StagePushAttempted:
		return "push attempted"
	case StagePushSucceeded:
		return "push succeeded"
	case StagePushFailed:
		return "push failed"
	}
	return "unknown"
}

// SnapshotOptions contains options for the snapshot action
type SnapshotOptions struct {
	Push           bool
	Remote         string
	Branch         string
	Auth           git.AuthOptions
	Message        string
	InitialMessage string
	// Now stamps the signature; defaults to time.Now
	Now func() time.Time
}

// SnapshotOptionsFromConfig maps resolved settings onto snapshot options
func SnapshotOptionsFromConfig(cfg *config.Config) SnapshotOptions {
	return SnapshotOptions{
		Push:   cfg.Push,
		Remote: cfg.Remote,
		Branch: cfg.Branch,
		Auth: git.AuthOptions{
			KeyPath:    cfg.SSH.KeyPath,
			Passphrase: cfg.SSH.Passphrase,
			UseAgent:   cfg.SSH.UseAgent,
		},
		Message:        cfg.Message.FollowUp,
		InitialMessage: cfg.Message.Initial,
	}
}

// SnapshotResult describes what a snapshot did
type SnapshotResult struct {
	Stage   Stage
	Commit  plumbing.Hash
	Tree    plumbing.Hash
	Parent  plumbing.Hash
	Message string
	Initial bool
	Push    *git.PushResult
}

// Snapshot stages every change, commits it on top of HEAD and optionally pushes.
// A push failure returns the result alongside the error: the local commit stays.
// Failures before the commit return a nil result.
func Snapshot(ctx *runtime.Context, opts SnapshotOptions) (*SnapshotResult, error) {
	repo := ctx.Repo
	splog := ctx.Splog
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	result := &SnapshotResult{Stage: StageStart}
	advance := func(stage Stage) {
		result.Stage = stage
		splog.Debug("snapshot: %s", stage)
	}

	if err := git.StageAll(repo); err != nil {
		return nil, err
	}
	advance(StageStaged)

	tree, err := git.WriteTree(repo)
	if err != nil {
		return nil, err
	}
	result.Tree = tree
	advance(StageTreeWritten)

	identity, err := git.ResolveIdentity(repo)
	if err != nil {
		return nil, err
	}
	sig, err := git.NewSignature(identity, now())
	if err != nil {
		return nil, err
	}
	splog.Debug("committing as %s <%s>", sig.Name, sig.Email)

	commit, err := git.CommitTree(repo, tree, sig, git.CommitOptions{
		Message:        opts.Message,
		InitialMessage: opts.InitialMessage,
	})
	if err != nil {
		return nil, err
	}
	result.Commit = commit.Hash
	result.Parent = commit.Parent
	result.Message = commit.Message
	result.Initial = commit.Initial
	advance(StageCommitted)

	if !opts.Push {
		return result, nil
	}

	advance(StagePushAttempted)
	push, err := git.PushBranch(ctx.Context, repo, git.PushOptions{
		Remote: opts.Remote,
		Branch: opts.Branch,
		Auth:   opts.Auth,
	})
	if err != nil {
		advance(StagePushFailed)
		return result, err
	}
	result.Push = push
	advance(StagePushSucceeded)

	if push.UpToDate {
		splog.Info("%s is already up to date on %s", push.Branch, push.Remote)
	} else {
		splog.Success("Pushed %s to %s (%s)", push.Branch, push.Remote, splog.Styles().ShortHash(commit.Hash.String()))
	}
	return result, nil
}
