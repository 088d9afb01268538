package git

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitsnaperrors "gitsnap.dev/gitsnap/internal/errors"
)

// Identity is the author and committer identity taken from git config
type Identity struct {
	Name  string
	Email string
}

// ResolveIdentity reads user.name and user.email from the repository config merged
// over the global config. Git refuses to store empty values for these keys, so an
// absent key is the only failure mode.
func ResolveIdentity(repo *Repository) (Identity, error) {
	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return Identity{}, gitsnaperrors.NewStepError(StepIdentity, "could not get the config from the repo", err)
	}

	if cfg.User.Name == "" {
		return Identity{}, gitsnaperrors.NewMissingConfigError("user.name")
	}
	if cfg.User.Email == "" {
		return Identity{}, gitsnaperrors.NewMissingConfigError("user.email")
	}

	return Identity{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
	}, nil
}

// NewSignature builds a signature for id at the given time
func NewSignature(id Identity, when time.Time) (*object.Signature, error) {
	name := strings.TrimSpace(id.Name)
	email := strings.TrimSpace(id.Email)
	if !validSignaturePart(name) || !validSignaturePart(email) {
		return nil, gitsnaperrors.NewSignatureError(id.Name, id.Email)
	}

	return &object.Signature{
		Name:  name,
		Email: email,
		When:  when,
	}, nil
}

func validSignaturePart(s string) bool {
	return s != "" && !strings.ContainsAny(s, "<>\n\r\x00")
}
