// Package actions provides the high-level workflows behind gitsnap commands.
//
// An action accepts a runtime.Context, which carries the repository, the
// resolved configuration and the logger, and sequences calls into the git
// package. Actions never print command results themselves; the CLI decides
// what goes to stdout.
package actions
