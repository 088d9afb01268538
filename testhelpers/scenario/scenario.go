// Package scenario provides a high-level test scenario that combines a Scene
// with a runtime Context to provide a terse API for integration tests.
package scenario

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gitsnap.dev/gitsnap/internal/config"
	"gitsnap.dev/gitsnap/internal/git"
	"gitsnap.dev/gitsnap/internal/output"
	"gitsnap.dev/gitsnap/internal/runtime"
	"gitsnap.dev/gitsnap/testhelpers"
)

// Scenario represents a high-level test scenario
type Scenario struct {
	T       *testing.T
	Scene   *testhelpers.Scene
	Context *runtime.Context
	// Output captures everything the logger writes
	Output *bytes.Buffer
}

// NewScenario creates a new Scenario with an optional setup function.
// NOTE: This function is NOT safe for parallel tests as it uses t.Setenv and NewScene.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()

	scene := testhelpers.NewScene(t, setup)

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	cfg, err := config.Load(repo.GetRepoRoot(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	splog, err := output.NewSplogWithOptions(output.Options{Writer: &buf, Debug: true})
	require.NoError(t, err)

	return &Scenario{
		T:       t,
		Scene:   scene,
		Context: runtime.NewContext(context.Background(), repo, cfg, splog),
		Output:  &buf,
	}
}

// WithInitialCommit creates an initial commit on the main branch.
func (s *Scenario) WithInitialCommit() *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit("initial", "init"))
	return s
}

// WithUncommittedChange creates an unstaged change in the repository.
func (s *Scenario) WithUncommittedChange(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChange("unstaged content", name, true))
	return s
}

// WithBareRemote adds a bare repository as a remote and returns its directory.
func (s *Scenario) WithBareRemote(name string) string {
	s.T.Helper()
	dir, err := s.Scene.Repo.CreateBareRemote(name)
	require.NoError(s.T, err)
	return dir
}

// Head returns the commit HEAD points at.
func (s *Scenario) Head() string {
	s.T.Helper()
	sha, err := s.Scene.Repo.GetRevision("HEAD")
	require.NoError(s.T, err)
	return sha
}
