// Package git provides the low-level Git operations behind a snapshot.
//
// It wraps go-git and exposes a small Go-friendly surface for:
//   - Opening the repository that contains a directory
//   - Staging every working tree change into the index
//   - Writing the index as tree objects
//   - Creating commits on top of HEAD, or the first commit of an unborn branch
//   - Resolving the committer identity from merged git config
//   - Pushing a branch to a remote, with SSH key or agent credentials
//
// This package should be the only place that talks to go-git directly.
package git
