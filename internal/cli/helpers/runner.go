// Package helpers provides shared plumbing for cobra commands.
package helpers

import (
	"github.com/spf13/cobra"

	"gitsnap.dev/gitsnap/internal/runtime"
)

// Run is a helper that provides a runtime context to a command's execution function.
// The context is closed once fn returns.
func Run(cmd *cobra.Command, opts runtime.Options, fn func(ctx *runtime.Context) error) (err error) {
	ctx, err := runtime.GetContext(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ctx.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx)
}
