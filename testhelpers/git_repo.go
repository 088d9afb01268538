// Package testhelpers provides scratch git repositories for tests.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const textFileName = "test.txt"

// GitRepo represents a Git repository for testing purposes.
// All commands run through the git binary so tests observe what a user would.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in the specified directory using 'git init'.
// The repository gets a local identity and a "main" branch.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = gitEnv()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	// Configure Git user (required for commits)
	if err := repo.runGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.runGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

// gitEnv keeps the developer's global and system config out of test repositories
func gitEnv() []string {
	return append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
}

// runGitCommand executes a git command in the repository directory.
func (r *GitRepo) runGitCommand(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w, output: %s", strings.Join(args, " "), err, string(output))
	}
	return nil
}

// RunGitCommand executes a git command and returns an error if it fails.
func (r *GitRepo) RunGitCommand(args ...string) error {
	return r.runGitCommand(args...)
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	return runGitOutput(r.Dir, args...)
}

func runGitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}

// CreateChange writes textValue to a file in the repository.
// The file is staged unless unstaged is true.
func (r *GitRepo) CreateChange(textValue string, prefix string, unstaged bool) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	return r.WriteFile(fileName, textValue, unstaged)
}

// WriteFile writes content to a path relative to the repository root.
func (r *GitRepo) WriteFile(name, content string, unstaged bool) error {
	filePath := filepath.Join(r.Dir, name)

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if !unstaged {
		return r.runGitCommand("add", filePath)
	}
	return nil
}

// RemoveFile deletes a path relative to the repository root without staging it.
func (r *GitRepo) RemoveFile(name string) error {
	return os.Remove(filepath.Join(r.Dir, name))
}

// CreateChangeAndCommit creates a file change and commits it.
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	if err := r.CreateChange(textValue, prefix, false); err != nil {
		return err
	}
	if err := r.runGitCommand("add", "."); err != nil {
		return err
	}
	return r.runGitCommand("commit", "-m", textValue)
}

// CreateMergeConflict leaves an unfinished merge in which prefix_test.txt conflicts.
// The repository must already have a commit on main.
func (r *GitRepo) CreateMergeConflict(prefix string) error {
	if err := r.runGitCommand("checkout", "-b", "conflicting"); err != nil {
		return err
	}
	if err := r.CreateChangeAndCommit("theirs", prefix); err != nil {
		return err
	}
	if err := r.runGitCommand("checkout", "main"); err != nil {
		return err
	}
	if err := r.CreateChangeAndCommit("ours", prefix); err != nil {
		return err
	}
	if err := r.runGitCommand("merge", "conflicting"); err == nil {
		return fmt.Errorf("merge of conflicting into main did not conflict")
	}
	return nil
}

// CreateBareRemote creates a bare repository next to this one and adds it as a remote.
func (r *GitRepo) CreateBareRemote(name string) (string, error) {
	// Sibling directory keeps each test's remote unique
	bareDir := r.Dir + "-" + name + ".git"

	cmd := exec.Command("git", "init", "--bare", bareDir)
	cmd.Env = gitEnv()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %w", err)
	}

	if err := r.runGitCommand("remote", "add", name, bareDir); err != nil {
		return "", fmt.Errorf("failed to add remote: %w", err)
	}

	return bareDir, nil
}

// AddRemote registers a remote with an arbitrary URL.
func (r *GitRepo) AddRemote(name, url string) error {
	return r.runGitCommand("remote", "add", name, url)
}

// UnsetConfig removes a key from the repository's local config.
func (r *GitRepo) UnsetConfig(key string) error {
	return r.runGitCommand("config", "--unset", key)
}

// SetConfig sets a key in the repository's local config.
func (r *GitRepo) SetConfig(key, value string) error {
	return r.runGitCommand("config", key, value)
}

// GetRevision resolves rev to a commit SHA.
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", "--verify", "--quiet", rev)
}

// HasCommits reports whether HEAD resolves to a commit.
func (r *GitRepo) HasCommits() bool {
	_, err := r.GetRevision("HEAD")
	return err == nil
}

// GetParents returns the parent SHAs of rev.
func (r *GitRepo) GetParents(rev string) ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("rev-list", "--parents", "-n", "1", rev)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no commit for %s", rev)
	}
	return fields[1:], nil
}

// GetTree returns the tree SHA of rev.
func (r *GitRepo) GetTree(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", rev+"^{tree}")
}

// GetCommitMessage returns the full message of rev.
func (r *GitRepo) GetCommitMessage(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("log", "-1", "--format=%B", rev)
}

// ListFiles returns the paths recorded in the tree of rev.
func (r *GitRepo) ListFiles(rev string) ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("ls-tree", "-r", "--name-only", rev)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// GetRemoteRevision resolves a branch in a bare remote directory.
func GetRemoteRevision(bareDir, branch string) (string, error) {
	return runGitOutput(bareDir, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
}
