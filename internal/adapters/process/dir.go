// Package process scopes process-wide state (working directory and
// environment) to the duration of a provisioning run.
//
// Both the working directory and the environment are global to the
// process, so nothing in this package is safe for concurrent use.
package process

import (
	"fmt"
	"os"
)

// WithinDir changes the working directory to dir, runs fn and restores the
// previous working directory on every exit path, including a panic.
func WithinDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("enter %s: %w", dir, err)
	}
	defer func() {
		if restoreErr := os.Chdir(prev); restoreErr != nil && err == nil {
			err = fmt.Errorf("restore working directory %s: %w", prev, restoreErr)
		}
	}()

	return fn()
}
