// Package runtime provides the execution context for gitsnap commands.
//
// It encapsulates shared dependencies needed by actions, such as the
// opened repository, resolved configuration, and logger.
package runtime
