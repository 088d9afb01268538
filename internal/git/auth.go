package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// DefaultSSHUser is used when the remote URL carries no user
const DefaultSSHUser = "git"

// ErrNoSSHCredentials indicates an SSH remote with neither a key file nor the agent configured
var ErrNoSSHCredentials = errors.New("no ssh credentials configured")

// AuthOptions selects how SSH remotes are authenticated
type AuthOptions struct {
	KeyPath    string
	Passphrase string
	UseAgent   bool
}

// ResolveAuth returns the auth method for pushing to remoteURL.
// Only SSH endpoints get credentials; file and http remotes return nil.
func ResolveAuth(remoteURL string, opts AuthOptions) (transport.AuthMethod, error) {
	endpoint, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote url %s: %w", remoteURL, err)
	}
	if endpoint.Protocol != "ssh" {
		return nil, nil
	}

	user := endpoint.User
	if user == "" {
		user = DefaultSSHUser
	}

	switch {
	case opts.UseAgent:
		auth, err := gitssh.NewSSHAgentAuth(user)
		if err != nil {
			return nil, fmt.Errorf("failed to use ssh agent: %w", err)
		}
		return auth, nil
	case opts.KeyPath != "":
		auth, err := gitssh.NewPublicKeysFromFile(user, opts.KeyPath, opts.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to load ssh key %s: %w", opts.KeyPath, err)
		}
		return auth, nil
	}
	return nil, fmt.Errorf("%w for %s", ErrNoSSHCredentials, remoteURL)
}
