package testhelpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectFiles asserts that the tree of rev holds exactly the expected paths.
func ExpectFiles(t *testing.T, repo *GitRepo, rev string, expected []string) {
	t.Helper()

	files, err := repo.ListFiles(rev)
	require.NoError(t, err, "Failed to list files")

	sort.Strings(files)
	sort.Strings(expected)
	require.Equal(t, expected, files, "Files do not match")
}

// ExpectCommits asserts that the newest commit messages reachable from rev match expected.
func ExpectCommits(t *testing.T, repo *GitRepo, rev string, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("log", "--format=%s", rev)
	require.NoError(t, err, "Failed to list commits")

	filtered := []string{}
	for _, c := range strings.Split(output, "\n") {
		if c = strings.TrimSpace(c); c != "" {
			filtered = append(filtered, c)
		}
	}

	// Compare only the first N commits where N is the length of expected
	if len(filtered) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(filtered))
		return
	}
	require.Equal(t, expected, filtered[:len(expected)], "Commits do not match")
}

// ExpectCommitsString asserts the newest commit messages as a comma-separated string.
func ExpectCommitsString(t *testing.T, repo *GitRepo, rev string, expected string) {
	t.Helper()
	ExpectCommits(t, repo, rev, strings.Split(expected, ", "))
}
