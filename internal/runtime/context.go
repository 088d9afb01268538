package runtime

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"gitsnap.dev/gitsnap/internal/config"
	"gitsnap.dev/gitsnap/internal/git"
	"gitsnap.dev/gitsnap/internal/output"
)

// Context provides access to the repository, configuration and output for commands
type Context struct {
	Context  context.Context
	Repo     *git.Repository
	Config   *config.Config
	Splog    *output.Splog
	RepoRoot string
}

// Options controls how GetContext builds a Context
type Options struct {
	// Dir is any directory inside the repository. Defaults to ".".
	Dir string
	// Flags are bound over file and environment config
	Flags *pflag.FlagSet
	// Verbose enables debug output on the console
	Verbose bool
	// Writer receives console output. Defaults to os.Stderr.
	Writer io.Writer
}

// NewContext creates a new context from already opened dependencies.
// A nil splog falls back to console logging on stderr.
func NewContext(ctx context.Context, repo *git.Repository, cfg *config.Config, splog *output.Splog) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if splog == nil {
		splog = output.NewSplog()
	}
	return &Context{
		Context:  ctx,
		Repo:     repo,
		Config:   cfg,
		Splog:    splog,
		RepoRoot: repo.GetRepoRoot(),
	}
}

// GetContext opens the repository, loads configuration and creates the logger
func GetContext(ctx context.Context, opts Options) (*Context, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	repo, err := git.OpenRepository(dir)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	cfg, err := config.Load(repo.GetRepoRoot(), opts.Flags)
	if err != nil {
		return nil, err
	}

	splog, err := output.NewSplogWithOptions(output.Options{
		Writer:  opts.Writer,
		Debug:   opts.Verbose || os.Getenv("DEBUG") != "",
		LogFile: cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}

	return NewContext(ctx, repo, cfg, splog), nil
}

// Close releases resources held by the context
func (c *Context) Close() error {
	if c.Splog != nil {
		return c.Splog.Close()
	}
	return nil
}
