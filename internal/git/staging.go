package git

import (
	"fmt"
	"path"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitsnaperrors "gitsnap.dev/gitsnap/internal/errors"
)

// Workflow steps recorded on errors returned by this package
const (
	StepStage    = "stage"
	StepTree     = "tree"
	StepIdentity = "identity"
	StepCommit   = "commit"
	StepPush     = "push"
)

const writeTreeContext = "error while writing the tree to the index"

// StageAll stages all changes including untracked and deleted files.
// Ignored files stay out of the index. The index is written to disk.
// An index with unresolved conflicts is left untouched.
func StageAll(repo *Repository) error {
	idx, err := repo.Storer.Index()
	if err != nil {
		return gitsnaperrors.NewStepError(StepStage, "failed to read the index", err)
	}
	if err := checkResolved(idx); err != nil {
		return gitsnaperrors.NewStepError(StepStage, "failed to stage all changes", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return gitsnaperrors.NewStepError(StepStage, "failed to get worktree", err)
	}

	if err := worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return gitsnaperrors.NewStepError(StepStage, "failed to stage all changes", err)
	}
	return nil
}

// checkResolved fails when any entry sits at a merge stage.
// Resolved entries are stage 0; go-git's index.Merged constant is 1 and names the base stage.
func checkResolved(idx *index.Index) error {
	for _, entry := range idx.Entries {
		if entry.Stage != 0 {
			return fmt.Errorf("%w: %s", gitsnaperrors.ErrUnresolvedConflicts, entry.Name)
		}
	}
	return nil
}

// treeNode is one directory level while building trees from index entries
type treeNode struct {
	dirs  map[string]*treeNode
	files []object.TreeEntry
}

func newTreeNode() *treeNode {
	return &treeNode{dirs: make(map[string]*treeNode)}
}

// WriteTree writes the current index as tree objects and returns the root tree hash
func WriteTree(repo *Repository) (plumbing.Hash, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, gitsnaperrors.NewStepError(StepTree, writeTreeContext, err)
	}

	if err := checkResolved(idx); err != nil {
		return plumbing.ZeroHash, gitsnaperrors.NewStepError(StepTree, writeTreeContext, err)
	}

	root := newTreeNode()
	for _, entry := range idx.Entries {
		root.insert(entry)
	}

	hash, err := root.write(repo)
	if err != nil {
		return plumbing.ZeroHash, gitsnaperrors.NewStepError(StepTree, writeTreeContext, err)
	}
	return hash, nil
}

func (n *treeNode) insert(entry *index.Entry) {
	parts := strings.Split(entry.Name, "/")
	node := n
	for _, dir := range parts[:len(parts)-1] {
		child, ok := node.dirs[dir]
		if !ok {
			child = newTreeNode()
			node.dirs[dir] = child
		}
		node = child
	}
	node.files = append(node.files, object.TreeEntry{
		Name: path.Base(entry.Name),
		Mode: entry.Mode,
		Hash: entry.Hash,
	})
}

func (n *treeNode) write(repo *Repository) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(n.dirs)+len(n.files))
	entries = append(entries, n.files...)

	for name, child := range n.dirs {
		hash, err := child.write(repo)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Dir,
			Hash: hash,
		})
	}

	// Git orders entries bytewise, with directories compared as if suffixed by "/"
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})

	tree := &object.Tree{Entries: entries}
	obj := repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}

	hash, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}
	return hash, nil
}

func treeSortKey(entry object.TreeEntry) string {
	if entry.Mode == filemode.Dir {
		return entry.Name + "/"
	}
	return entry.Name
}
